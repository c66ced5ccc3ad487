// Package toolx exposes callable tools to the LLM layer. Tools are registered
// once and invoked either through the provider's structured tool-call API or
// through the sentinel streaming protocol.
package toolx

import (
	"context"

	"github.com/Abraxas-365/skycast/pkg/llm"
)

// Tool is a callable capability exposed to a model
type Tool interface {
	// Name is the tool identifier the model uses to call it
	Name() string

	// Description tells the model what the tool does
	Description() string

	// Parameters is the JSON Schema of the tool's arguments
	Parameters() any

	// Call executes the tool with raw JSON arguments and returns the
	// serialized result
	Call(ctx context.Context, arguments string) (string, error)
}

// Client holds the registered tools for one deployment
type Client struct {
	tools map[string]Tool
	order []string
}

// NewClient creates a tool client with the given tools
func NewClient(tools ...Tool) *Client {
	c := &Client{tools: make(map[string]Tool)}
	for _, t := range tools {
		c.tools[t.Name()] = t
		c.order = append(c.order, t.Name())
	}
	return c
}

// GetTools returns the registered tools in LLM-compatible format
func (c *Client) GetTools() []llm.Tool {
	result := make([]llm.Tool, 0, len(c.order))
	for _, name := range c.order {
		t := c.tools[name]
		result = append(result, llm.Tool{
			Type: "function",
			Function: llm.Function{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return result
}

// Call executes a model-issued tool call and wraps the output as a tool-role
// message ready to feed back to the model
func (c *Client) Call(ctx context.Context, tc llm.ToolCall) (llm.Message, error) {
	tool, ok := c.tools[tc.Function.Name]
	if !ok {
		return llm.Message{}, errorRegistry.New(ErrUnknownTool).
			WithDetail("tool", tc.Function.Name)
	}

	output, err := tool.Call(ctx, tc.Function.Arguments)
	if err != nil {
		return llm.Message{}, errorRegistry.NewWithCause(ErrToolExecution, err).
			WithDetail("tool", tc.Function.Name)
	}

	return llm.NewToolMessage(tc.ID, output), nil
}
