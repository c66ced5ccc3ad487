package main

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Abraxas-365/skycast/pkg/logx"
	"github.com/Abraxas-365/skycast/pkg/streamx"
)

// chatRequest is the body of both chat endpoints
type chatRequest struct {
	Message string `json:"message"`
}

// healthHandler reports service liveness
func healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "skycast",
	})
}

// infoHandler returns basic API information
func infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "Skycast API",
		"description": "Streaming weather assistant",
		"endpoints": fiber.Map{
			"chat":        "POST /api/chat",
			"chat_stream": "POST /api/chat/stream",
			"health":      "GET /health",
		},
	})
}

// chatHandler runs the non-streaming structured tool-call path
func chatHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		answer, err := container.Agent.Run(c.Context(), req.Message)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"response": answer,
		})
	}
}

// chatStreamHandler runs the sentinel streaming path over server-sent events.
// Each event is one SSE data line; the turn always ends with a done or error
// event unless the client disconnected first.
func chatStreamHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		ctx := c.Context()
		orchestrator := container.Orchestrator
		message := req.Message

		ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			sink := &sseSink{w: w}
			if err := orchestrator.StreamTurn(ctx, message, sink); err != nil {
				// Terminal event handling already happened; this is just for
				// the server log.
				logx.WithError(err).Debug("stream turn ended with error")
			}
		}))

		return nil
	}
}

// sseSink writes events as SSE data frames. A failed flush means the client
// is gone; the error propagates up and stops the turn.
type sseSink struct {
	w *bufio.Writer
}

func (s *sseSink) Send(event streamx.Event) error {
	data, err := json.Marshal(wireEvent(event))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.w.Flush()
}

// wireEvent maps internal events to the client-facing JSON shapes
func wireEvent(event streamx.Event) fiber.Map {
	switch event.Type {
	case streamx.EventText:
		return fiber.Map{"text": event.Text}
	case streamx.EventToolCall:
		return fiber.Map{"toolCall": event.ToolName, "toolArgs": event.ToolArgs}
	case streamx.EventToolResult:
		return fiber.Map{"toolResponse": event.ToolResult}
	case streamx.EventError:
		return fiber.Map{"error": event.Err}
	case streamx.EventDone:
		return fiber.Map{"done": true}
	default:
		return fiber.Map{}
	}
}
