package agentx_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Abraxas-365/skycast/pkg/agentx"
	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/sentinelx"
	"github.com/Abraxas-365/skycast/pkg/streamx"
	"github.com/Abraxas-365/skycast/pkg/toolx"
)

// scriptedStream replays canned content chunks and then EOF (or a failure)
type scriptedStream struct {
	chunks []string
	err    error
	pos    int
}

func (s *scriptedStream) Next() (llm.Message, error) {
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return llm.Message{Role: llm.RoleAssistant, Content: chunk}, nil
	}
	if s.err != nil {
		return llm.Message{}, s.err
	}
	return llm.Message{}, io.EOF
}

func (s *scriptedStream) Close() error { return nil }

// mockLLM hands out one scripted stream per ChatStream call and records the
// messages of every request
type mockLLM struct {
	streams   []*scriptedStream
	requests  [][]llm.Message
	chatResps []llm.Response
	chatErr   error
}

func (m *mockLLM) Chat(_ context.Context, messages []llm.Message, _ ...llm.Option) (llm.Response, error) {
	m.requests = append(m.requests, messages)
	if m.chatErr != nil {
		return llm.Response{}, m.chatErr
	}
	resp := m.chatResps[0]
	m.chatResps = m.chatResps[1:]
	return resp, nil
}

func (m *mockLLM) ChatStream(_ context.Context, messages []llm.Message, _ ...llm.Option) (llm.Stream, error) {
	m.requests = append(m.requests, messages)
	if len(m.streams) == 0 {
		return nil, errors.New("no more scripted streams")
	}
	stream := m.streams[0]
	m.streams = m.streams[1:]
	return stream, nil
}

// stubWeather returns a canned reading and records the lookup
type stubWeather struct {
	reading toolx.Reading
	calls   int
	gotLoc  string
	gotUnit string
}

func (s *stubWeather) Current(_ context.Context, location, unit string) toolx.Reading {
	s.calls++
	s.gotLoc = location
	s.gotUnit = unit
	return s.reading
}

// recordingSink collects events; failAfter > 0 makes Send fail once that many
// events have been accepted
type recordingSink struct {
	events    []streamx.Event
	failAfter int
}

func (s *recordingSink) Send(event streamx.Event) error {
	if s.failAfter > 0 && len(s.events) >= s.failAfter {
		return errors.New("client disconnected")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) ofType(t streamx.EventType) []streamx.Event {
	var out []streamx.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) text() string {
	var b strings.Builder
	for _, e := range s.ofType(streamx.EventText) {
		b.WriteString(e.Text)
	}
	return b.String()
}

func newScanner(t *testing.T) *sentinelx.Scanner {
	t.Helper()
	scanner, err := sentinelx.NewScanner(sentinelx.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}
	return scanner
}

func assertSingleTerminal(t *testing.T, sink *recordingSink, want streamx.EventType) {
	t.Helper()
	terminals := 0
	for _, e := range sink.events {
		if e.Type == streamx.EventDone || e.Type == streamx.EventError {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("expected exactly 1 terminal event, got %d", terminals)
	}
	last := sink.events[len(sink.events)-1]
	if last.Type != want {
		t.Fatalf("expected final event %q, got %q", want, last.Type)
	}
}

func TestStreamTurn_DirectAnswerNoLookup(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{"Hello! ", "I can help with weather questions."}},
	}}
	weather := &stubWeather{}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t))
	if err := o.StreamTurn(context.Background(), "hi there", sink); err != nil {
		t.Fatal(err)
	}

	if weather.calls != 0 {
		t.Fatalf("weather should not be called, got %d calls", weather.calls)
	}
	if got := sink.ofType(streamx.EventToolCall); len(got) != 0 {
		t.Fatalf("unexpected tool_call events: %d", len(got))
	}
	if sink.text() != "Hello! I can help with weather questions." {
		t.Fatalf("unexpected text %q", sink.text())
	}
	assertSingleTerminal(t, sink, streamx.EventDone)
}

func TestStreamTurn_FullLookupFlow(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		// The lookup request arrives split across chunks, marker included.
		{chunks: []string{
			"Let me check. ",
			"<CALL_WEA",
			`THER>{"location": "Austin, TX", "unit": "fahrenheit"}</CALL_`,
			"WEATHER> trailing text that is never shown",
		}},
		{chunks: []string{"It's ", "95°F and sunny in Austin."}},
	}}
	weather := &stubWeather{reading: toolx.Reading{
		Temperature: 95, Condition: "sunny", Location: "Austin", Unit: toolx.UnitFahrenheit,
	}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather in Austin?", sink); err != nil {
		t.Fatal(err)
	}

	if weather.calls != 1 {
		t.Fatalf("expected 1 lookup, got %d", weather.calls)
	}
	if weather.gotLoc != "Austin, TX" || weather.gotUnit != toolx.UnitFahrenheit {
		t.Fatalf("lookup got (%q, %q)", weather.gotLoc, weather.gotUnit)
	}

	calls := sink.ofType(streamx.EventToolCall)
	if len(calls) != 1 || calls[0].ToolName != toolx.WeatherToolName {
		t.Fatalf("unexpected tool_call events: %+v", calls)
	}
	results := sink.ofType(streamx.EventToolResult)
	if len(results) != 1 {
		t.Fatalf("expected 1 tool_result, got %d", len(results))
	}
	if !strings.Contains(string(results[0].ToolResult), `"temperature":95`) {
		t.Fatalf("tool_result missing reading: %s", results[0].ToolResult)
	}

	if strings.Contains(sink.text(), "CALL_WEATHER") {
		t.Fatalf("marker leaked into text: %q", sink.text())
	}
	if !strings.Contains(sink.text(), "95°F and sunny") {
		t.Fatalf("second pass text missing: %q", sink.text())
	}
	assertSingleTerminal(t, sink, streamx.EventDone)

	// The second request must carry the bracketed result alongside the
	// original question.
	if len(client.requests) != 2 {
		t.Fatalf("expected 2 model requests, got %d", len(client.requests))
	}
	stage2 := client.requests[1]
	user := stage2[len(stage2)-1]
	if user.Role != llm.RoleUser {
		t.Fatalf("last stage-2 message should be user role, got %q", user.Role)
	}
	if !strings.Contains(user.Content, "weather in Austin?") {
		t.Fatal("stage-2 user message missing original question")
	}
	if !strings.Contains(user.Content, "<WEATHER_RESULT>") ||
		!strings.Contains(user.Content, "</WEATHER_RESULT>") {
		t.Fatal("stage-2 user message missing bracketed result")
	}
}

func TestStreamTurn_LookupFailureIsData(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{`<CALL_WEATHER>{"location": "Atlantis"}</CALL_WEATHER>`}},
		{chunks: []string{"I couldn't find weather data for Atlantis."}},
	}}
	weather := &stubWeather{reading: toolx.Reading{Error: "city not found"}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather in Atlantis?", sink); err != nil {
		t.Fatal(err)
	}

	results := sink.ofType(streamx.EventToolResult)
	if len(results) != 1 {
		t.Fatalf("expected 1 tool_result, got %d", len(results))
	}
	if !strings.Contains(string(results[0].ToolResult), "city not found") {
		t.Fatalf("tool_result should carry the failure: %s", results[0].ToolResult)
	}
	// A failed lookup is not a failed turn.
	assertSingleTerminal(t, sink, streamx.EventDone)
}

func TestStreamTurn_MalformedPayloadDoesNotStopPass(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{
			"<CALL_WEATHER>not json</CALL_WEATHER>",
			`<CALL_WEATHER>{"location": "Lima"}</CALL_WEATHER>`,
		}},
		{chunks: []string{"Sunny in Lima."}},
	}}
	weather := &stubWeather{reading: toolx.Reading{Condition: "sunny", Location: "Lima"}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather in Lima?", sink); err != nil {
		t.Fatal(err)
	}

	if weather.calls != 1 || weather.gotLoc != "Lima" {
		t.Fatalf("expected one lookup for Lima, got %d calls for %q", weather.calls, weather.gotLoc)
	}
	assertSingleTerminal(t, sink, streamx.EventDone)
}

func TestStreamTurn_SecondPassLookupNotHonored(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{`<CALL_WEATHER>{"location": "Oslo"}</CALL_WEATHER>`}},
		// The model misbehaves and asks again in the second pass; the span is
		// stripped but no second lookup runs.
		{chunks: []string{`Cold. <CALL_WEATHER>{"location": "Bergen"}</CALL_WEATHER> Very cold.`}},
	}}
	weather := &stubWeather{reading: toolx.Reading{Temperature: -3, Location: "Oslo"}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather in Oslo?", sink); err != nil {
		t.Fatal(err)
	}

	if weather.calls != 1 {
		t.Fatalf("expected exactly 1 lookup, got %d", weather.calls)
	}
	if strings.Contains(sink.text(), "CALL_WEATHER") {
		t.Fatalf("marker leaked into text: %q", sink.text())
	}
	assertSingleTerminal(t, sink, streamx.EventDone)
}

func TestStreamTurn_SourceFailureEmitsSingleError(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{"partial "}, err: errors.New("upstream reset")},
	}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, &stubWeather{}, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather?", sink); err == nil {
		t.Fatal("expected error")
	}

	assertSingleTerminal(t, sink, streamx.EventError)
}

func TestStreamTurn_SinkGoneSuppressesTerminalEvent(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{"a long opening sentence that clears the safety tail ", "and more ", "and more"}},
	}}
	sink := &recordingSink{failAfter: 1}

	o := agentx.NewOrchestrator(client, &stubWeather{}, newScanner(t))
	if err := o.StreamTurn(context.Background(), "weather?", sink); err == nil {
		t.Fatal("expected error")
	}

	for _, e := range sink.events {
		if e.Type == streamx.EventDone || e.Type == streamx.EventError {
			t.Fatalf("no terminal event should reach a dead sink, got %q", e.Type)
		}
	}
}

func TestStreamTurn_EmptyInput(t *testing.T) {
	client := &mockLLM{}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, &stubWeather{}, newScanner(t))
	if err := o.StreamTurn(context.Background(), "   ", sink); err == nil {
		t.Fatal("expected error")
	}

	if len(client.requests) != 0 {
		t.Fatal("no model request should be made for empty input")
	}
	assertSingleTerminal(t, sink, streamx.EventError)
}

func TestStreamTurn_DefaultUnitApplied(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{`<CALL_WEATHER>{"location": "Lima"}</CALL_WEATHER>`}},
		{chunks: []string{"done"}},
	}}
	weather := &stubWeather{}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, weather, newScanner(t),
		agentx.WithDefaultUnit(toolx.UnitFahrenheit))
	if err := o.StreamTurn(context.Background(), "weather in Lima?", sink); err != nil {
		t.Fatal(err)
	}

	if weather.gotUnit != toolx.UnitFahrenheit {
		t.Fatalf("default unit not applied, got %q", weather.gotUnit)
	}
}

func TestStreamTurn_InstructionsCarryMarkers(t *testing.T) {
	client := &mockLLM{streams: []*scriptedStream{
		{chunks: []string{"hello"}},
	}}
	sink := &recordingSink{}

	o := agentx.NewOrchestrator(client, &stubWeather{}, newScanner(t))
	if err := o.StreamTurn(context.Background(), "hi", sink); err != nil {
		t.Fatal(err)
	}

	system := client.requests[0][0]
	if system.Role != llm.RoleSystem {
		t.Fatalf("first message should be system role, got %q", system.Role)
	}
	if !strings.Contains(system.Content, "<CALL_WEATHER>") ||
		!strings.Contains(system.Content, "</CALL_WEATHER>") {
		t.Fatal("instructions must state the marker literals verbatim")
	}
	if !strings.Contains(system.Content, `"location"`) {
		t.Fatal("instructions must describe the payload shape")
	}
}
