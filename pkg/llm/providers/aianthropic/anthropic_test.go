package aianthropic

import (
	"errors"
	"io"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Abraxas-365/skycast/pkg/llm"
)

// fakeEventStream replays canned SDK events
type fakeEventStream struct {
	events []anthropic.MessageStreamEventUnion
	pos    int
}

func (f *fakeEventStream) Next() bool {
	if f.pos < len(f.events) {
		f.pos++
		return true
	}
	return false
}

func (f *fakeEventStream) Current() anthropic.MessageStreamEventUnion {
	return f.events[f.pos-1]
}

func (f *fakeEventStream) Err() error   { return nil }
func (f *fakeEventStream) Close() error { return nil }

func textDeltaEvent(text string) anthropic.MessageStreamEventUnion {
	var ev anthropic.MessageStreamEventUnion
	ev.Type = "content_block_delta"
	ev.Delta.Type = "text_delta"
	ev.Delta.Text = text
	return ev
}

func toolUseStartEvent(id, name string) anthropic.MessageStreamEventUnion {
	var ev anthropic.MessageStreamEventUnion
	ev.Type = "content_block_start"
	ev.ContentBlock.Type = "tool_use"
	ev.ContentBlock.ID = id
	ev.ContentBlock.Name = name
	return ev
}

func inputJSONDeltaEvent(partial string) anthropic.MessageStreamEventUnion {
	var ev anthropic.MessageStreamEventUnion
	ev.Type = "content_block_delta"
	ev.Delta.Type = "input_json_delta"
	ev.Delta.PartialJSON = partial
	return ev
}

func messageStopEvent() anthropic.MessageStreamEventUnion {
	var ev anthropic.MessageStreamEventUnion
	ev.Type = "message_stop"
	return ev
}

func drain(t *testing.T, s llm.Stream) []llm.Message {
	t.Helper()
	var messages []llm.Message
	for {
		msg, err := s.Next()
		if errors.Is(err, io.EOF) {
			return messages
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		messages = append(messages, msg)
	}
}

func TestStream_TextDeltasPassThrough(t *testing.T) {
	s := &anthropicStream{stream: &fakeEventStream{events: []anthropic.MessageStreamEventUnion{
		textDeltaEvent("Hello "),
		textDeltaEvent("there."),
		messageStopEvent(),
	}}}

	messages := drain(t, s)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "Hello " || messages[1].Content != "there." {
		t.Fatalf("unexpected contents: %+v", messages)
	}
}

func TestStream_TrailingToolCallSurfacedBeforeEOF(t *testing.T) {
	// The tool call's arguments complete after the last text delta; they must
	// still come out before the stream ends.
	s := &anthropicStream{stream: &fakeEventStream{events: []anthropic.MessageStreamEventUnion{
		textDeltaEvent("Checking."),
		toolUseStartEvent("toolu_1", "get_weather"),
		inputJSONDeltaEvent(`{"location":`),
		inputJSONDeltaEvent(`"Lima"}`),
		messageStopEvent(),
	}}}

	messages := drain(t, s)
	if len(messages) == 0 {
		t.Fatal("expected messages before EOF")
	}

	last := messages[len(messages)-1]
	if len(last.ToolCalls) != 1 {
		t.Fatalf("final message must carry the completed tool call, got %+v", last)
	}
	tc := last.ToolCalls[0]
	if tc.ID != "toolu_1" || tc.Function.Name != "get_weather" {
		t.Fatalf("unexpected tool call: %+v", tc)
	}
	if tc.Function.Arguments != `{"location":"Lima"}` {
		t.Fatalf("arguments not fully accumulated: %q", tc.Function.Arguments)
	}

	// EOF must stick once delivered.
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after completion, got %v", err)
	}
}

func TestStream_NoTrailingMessageWithoutToolCalls(t *testing.T) {
	s := &anthropicStream{stream: &fakeEventStream{events: []anthropic.MessageStreamEventUnion{
		textDeltaEvent("done"),
		messageStopEvent(),
	}}}

	messages := drain(t, s)
	if len(messages) != 1 {
		t.Fatalf("plain text streams must not grow a trailing message, got %d", len(messages))
	}
}
