// Package streamx relays a model token stream to a client while the sentinel
// scanner filters it. It multiplexes heterogeneous events (text, tool
// activity, errors, completion) over a single one-way push channel.
package streamx

import "encoding/json"

// EventType identifies what kind of event is being emitted
type EventType string

const (
	// EventText is a chunk of certified marker-free response text
	EventText EventType = "text"

	// EventToolCall fires when a call payload is detected (before execution)
	EventToolCall EventType = "tool_call"

	// EventToolResult fires after the tool has executed and returned a result
	EventToolResult EventType = "tool_result"

	// EventError is terminal for the turn; something went wrong mid-stream
	EventError EventType = "error"

	// EventDone is terminal for the turn; the response completed normally
	EventDone EventType = "done"
)

// Event is the structured payload pushed to the sink on every stream tick
type Event struct {
	Type EventType

	// EventText: the incremental text chunk
	Text string

	// EventToolCall: tool name and raw JSON arguments
	ToolName string
	ToolArgs string

	// EventToolResult: serialized result returned by the tool (success or
	// error shape; tool failures travel as data, not as EventError)
	ToolResult json.RawMessage

	// EventError: human-readable description of the failure
	Err string
}

// TextEvent builds a text event
func TextEvent(text string) Event {
	return Event{Type: EventText, Text: text}
}

// ToolCallEvent builds a tool_call event
func ToolCallEvent(name, args string) Event {
	return Event{Type: EventToolCall, ToolName: name, ToolArgs: args}
}

// ToolResultEvent builds a tool_result event
func ToolResultEvent(name string, result json.RawMessage) Event {
	return Event{Type: EventToolResult, ToolName: name, ToolResult: result}
}

// ErrorEvent builds a terminal error event
func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Err: msg}
}

// DoneEvent builds a terminal done event
func DoneEvent() Event {
	return Event{Type: EventDone}
}

// Sink receives events in production order. Send returning an error means the
// client is unreachable; the sender must stop producing immediately and must
// not attempt further writes.
type Sink interface {
	Send(Event) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(Event) error

// Send implements Sink
func (f SinkFunc) Send(event Event) error {
	return f(event)
}
