// Package agentx drives weather conversations against an LLM. The streaming
// path uses the sentinel protocol: the model embeds a lookup request between
// literal markers, the orchestrator intercepts it mid-stream, runs the lookup,
// and streams a second model pass that phrases the answer. The structured path
// runs a conventional tool-call loop against the provider's tool API.
package agentx

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/logx"
	"github.com/Abraxas-365/skycast/pkg/sentinelx"
	"github.com/Abraxas-365/skycast/pkg/streamx"
	"github.com/Abraxas-365/skycast/pkg/toolx"
)

// Orchestrator runs one streaming weather turn at a time. It holds only
// immutable configuration, so a single instance serves concurrent turns; each
// turn gets its own buffer, sink and streams.
type Orchestrator struct {
	client      llm.Client
	weather     toolx.WeatherService
	scanner     *sentinelx.Scanner
	options     []llm.Option
	defaultUnit string
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithLLMOptions adds chat options applied to every model request
func WithLLMOptions(options ...llm.Option) OrchestratorOption {
	return func(o *Orchestrator) {
		o.options = append(o.options, options...)
	}
}

// WithDefaultUnit sets the temperature unit used when the model omits one
func WithDefaultUnit(unit string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.defaultUnit = unit
	}
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(client llm.Client, weather toolx.WeatherService, scanner *sentinelx.Scanner, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		weather:     weather,
		scanner:     scanner,
		defaultUnit: toolx.UnitCelsius,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StreamTurn runs one full turn: stream the model, intercept at most one
// lookup request, run it, stream the follow-up pass, and close the turn with
// exactly one terminal event — done on success, error on failure. When the
// sink itself is gone no terminal event is attempted; there is nobody left to
// read it.
func (o *Orchestrator) StreamTurn(ctx context.Context, userInput string, sink streamx.Sink) error {
	if strings.TrimSpace(userInput) == "" {
		err := errorRegistry.New(ErrEmptyInput)
		sink.Send(streamx.ErrorEvent(err.Message))
		return err
	}

	turnID := uuid.NewString()
	log := logx.WithField("turn_id", turnID)

	err := o.runTurn(ctx, log, userInput, sink)
	if err != nil {
		log.WithError(err).Error("streaming turn failed")
		if !streamx.IsSinkClosed(err) {
			sink.Send(streamx.ErrorEvent(err.Error()))
		}
		return err
	}

	if sendErr := sink.Send(streamx.DoneEvent()); sendErr != nil {
		return streamx.SinkClosed(sendErr)
	}
	log.Debug("streaming turn completed")
	return nil
}

// runTurn holds the turn body so StreamTurn owns the terminal-event decision
// in exactly one place.
func (o *Orchestrator) runTurn(ctx context.Context, log *logx.Entry, userInput string, sink streamx.Sink) error {
	markers := o.scanner.Markers()

	// Pass 1: stream with the lookup instructions, stopping as soon as the
	// model emits a usable lookup request.
	stage1 := []llm.Message{
		llm.NewSystemMessage(stage1Instructions(markers)),
		llm.NewUserMessage(userInput),
	}

	stream, err := o.client.ChatStream(ctx, stage1, o.options...)
	if err != nil {
		return errorRegistry.NewWithCause(ErrModelRequest, err)
	}

	call, err := streamx.Consume(ctx, stream, o.scanner, sink, func(c *sentinelx.Call) bool {
		// Malformed or incomplete payloads are dropped and the stream keeps
		// going; only a request with a location stops the pass.
		return c.Valid()
	})
	stream.Close()
	if err != nil {
		return err
	}

	// No lookup request in the whole reply: the model answered directly.
	if call == nil {
		return nil
	}

	// Run the lookup. Failures come back as an error-shaped reading and flow
	// to the model like any other result; the turn never dies here.
	unit := call.Unit()
	if unit == "" {
		unit = o.defaultUnit
	}

	if sendErr := sink.Send(streamx.ToolCallEvent(toolx.WeatherToolName, call.Raw)); sendErr != nil {
		return streamx.SinkClosed(sendErr)
	}

	reading := o.weather.Current(ctx, call.Location(), unit)
	if reading.Failed() {
		log.WithField("location", call.Location()).
			WithField("reason", reading.Error).
			Warn("weather lookup failed; passing error to model")
	}

	if sendErr := sink.Send(streamx.ToolResultEvent(toolx.WeatherToolName, reading.JSON())); sendErr != nil {
		return streamx.SinkClosed(sendErr)
	}

	// Pass 2: hand the result back bracketed and stream the phrased answer.
	// The scanner still filters this pass, but further lookup requests are
	// never honored; one lookup per turn.
	stage2 := []llm.Message{
		llm.NewSystemMessage(stage2Instructions(markers)),
		llm.NewUserMessage(stage2UserMessage(markers, userInput, string(reading.JSON()))),
	}

	stream, err = o.client.ChatStream(ctx, stage2, o.options...)
	if err != nil {
		return errorRegistry.NewWithCause(ErrModelRequest, err)
	}
	defer stream.Close()

	_, err = streamx.Consume(ctx, stream, o.scanner, sink, func(*sentinelx.Call) bool {
		return false
	})
	return err
}
