package streamx_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/sentinelx"
	"github.com/Abraxas-365/skycast/pkg/streamx"
)

// fakeStream replays scripted text increments, then io.EOF (or a scripted
// failure).
type fakeStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

func (s *fakeStream) Next() (llm.Message, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return llm.Message{}, s.err
		}
		return llm.Message{}, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return llm.Message{Role: llm.RoleAssistant, Content: chunk}, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// recordingSink captures events; it can be armed to fail after N sends.
type recordingSink struct {
	events    []streamx.Event
	failAfter int // -1 = never fail
}

func (s *recordingSink) Send(event streamx.Event) error {
	if s.failAfter >= 0 && len(s.events) >= s.failAfter {
		return errors.New("client disconnected")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) text() string {
	var b strings.Builder
	for _, e := range s.events {
		if e.Type == streamx.EventText {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

func newScanner(t *testing.T) *sentinelx.Scanner {
	t.Helper()
	s, err := sentinelx.NewScanner(sentinelx.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func never(*sentinelx.Call) bool { return false }

func TestConsume_PlainTextPassThrough(t *testing.T) {
	stream := &fakeStream{chunks: []string{"Hello ", "world, no call here."}}
	sink := &recordingSink{failAfter: -1}

	call, err := streamx.Consume(context.Background(), stream, newScanner(t), sink, never)
	if err != nil {
		t.Fatal(err)
	}
	if call != nil {
		t.Fatal("no call expected")
	}
	if got := sink.text(); got != "Hello world, no call here." {
		t.Fatalf("sink text = %q", got)
	}
}

func TestConsume_StopsOnPayload(t *testing.T) {
	stream := &fakeStream{chunks: []string{
		`<CALL_WEATHER>{"location":"Austin, TX"}`,
		`</CALL_WEATHER>`,
		"this text is after the stop and must never be pulled",
	}}
	sink := &recordingSink{failAfter: -1}

	call, err := streamx.Consume(context.Background(), stream, newScanner(t), sink,
		func(c *sentinelx.Call) bool { return c.Valid() })
	if err != nil {
		t.Fatal(err)
	}
	if call == nil || call.Location() != "Austin, TX" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if sink.text() != "" {
		t.Fatalf("no text should precede the call, got %q", sink.text())
	}
	if stream.pos != 2 {
		t.Fatalf("consumption should stop before draining the source, pos=%d", stream.pos)
	}
}

func TestConsume_MalformedPayloadContinues(t *testing.T) {
	stream := &fakeStream{chunks: []string{
		`<CALL_WEATHER>oops</CALL_WEATHER>`,
		`still here. <CALL_WEATHER>{"location":"Lima"}</CALL_WEATHER>`,
	}}
	sink := &recordingSink{failAfter: -1}

	var seen []*sentinelx.Call
	call, err := streamx.Consume(context.Background(), stream, newScanner(t), sink,
		func(c *sentinelx.Call) bool {
			seen = append(seen, c)
			return c.Valid()
		})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Fatalf("handler should see malformed and valid calls, saw %d", len(seen))
	}
	if seen[0].Payload != nil {
		t.Fatal("first call should be malformed")
	}
	if call == nil || call.Location() != "Lima" {
		t.Fatalf("expected the valid call to stop the pass: %+v", call)
	}
}

func TestConsume_DanglingSpanDiscarded(t *testing.T) {
	stream := &fakeStream{chunks: []string{`<CALL_WEATHER>{"locat`}}
	sink := &recordingSink{failAfter: -1}

	call, err := streamx.Consume(context.Background(), stream, newScanner(t), sink, never)
	if err != nil {
		t.Fatal(err)
	}
	if call != nil {
		t.Fatal("no call expected")
	}
	for _, e := range sink.events {
		if e.Type == streamx.EventText {
			t.Fatalf("dangling span must not leak text, got %q", e.Text)
		}
	}
}

func TestConsume_ResidueFlushedAtEOF(t *testing.T) {
	stream := &fakeStream{chunks: []string{"short"}}
	sink := &recordingSink{failAfter: -1}

	if _, err := streamx.Consume(context.Background(), stream, newScanner(t), sink, never); err != nil {
		t.Fatal(err)
	}
	if got := sink.text(); got != "short" {
		t.Fatalf("residue not flushed, got %q", got)
	}
}

func TestConsume_SinkFailureAborts(t *testing.T) {
	stream := &fakeStream{chunks: []string{
		strings.Repeat("a", 100),
		strings.Repeat("b", 100),
	}}
	sink := &recordingSink{failAfter: 1}

	_, err := streamx.Consume(context.Background(), stream, newScanner(t), sink, never)
	if err == nil {
		t.Fatal("expected sink failure to abort consumption")
	}
	if len(sink.events) != 1 {
		t.Fatalf("no writes may follow a sink failure, got %d events", len(sink.events))
	}
}

func TestConsume_SourceFailureSurfaces(t *testing.T) {
	stream := &fakeStream{chunks: []string{"partial "}, err: errors.New("connection reset")}
	sink := &recordingSink{failAfter: -1}

	_, err := streamx.Consume(context.Background(), stream, newScanner(t), sink, never)
	if err == nil {
		t.Fatal("expected source failure to surface")
	}
}

func TestConsume_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &fakeStream{chunks: []string{"never read"}}
	sink := &recordingSink{failAfter: -1}

	if _, err := streamx.Consume(ctx, stream, newScanner(t), sink, never); err == nil {
		t.Fatal("expected cancellation error")
	}
	if stream.pos != 0 {
		t.Fatal("cancelled consumption must not read the source")
	}
}

func TestConsume_PendingSpanOverflowFailsPass(t *testing.T) {
	scanner, err := sentinelx.NewScanner(sentinelx.DefaultMarkers(), sentinelx.WithMaxPendingSpan(32))
	if err != nil {
		t.Fatal(err)
	}

	stream := &fakeStream{chunks: []string{"<CALL_WEATHER>" + strings.Repeat("x", 64)}}
	sink := &recordingSink{failAfter: -1}

	if _, err := streamx.Consume(context.Background(), stream, scanner, sink, never); err == nil {
		t.Fatal("expected protocol error for oversized pending span")
	}
}
