package agentx_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/skycast/pkg/agentx"
	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/toolx"
)

func weatherTools(weather toolx.WeatherService) *toolx.Client {
	return toolx.NewClient(toolx.NewWeatherTool(weather, toolx.UnitCelsius))
}

func TestAgentRun_DirectAnswer(t *testing.T) {
	client := &mockLLM{chatResps: []llm.Response{
		{Message: llm.NewAssistantMessage("I'm a weather assistant.")},
	}}

	agent := agentx.NewAgent(client, weatherTools(&stubWeather{}))
	got, err := agent.Run(context.Background(), "who are you?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "I'm a weather assistant." {
		t.Fatalf("unexpected answer %q", got)
	}
}

func TestAgentRun_ToolCallRoundTrip(t *testing.T) {
	client := &mockLLM{chatResps: []llm.Response{
		{Message: llm.Message{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.ToolCall{{
				ID:   "call_1",
				Type: "function",
				Function: llm.FunctionCall{
					Name:      toolx.WeatherToolName,
					Arguments: `{"location":"Lima","unit":"celsius"}`,
				},
			}},
		}},
		{Message: llm.NewAssistantMessage("It's 22°C and cloudy in Lima.")},
	}}
	weather := &stubWeather{reading: toolx.Reading{Temperature: 22, Condition: "cloudy", Location: "Lima"}}

	agent := agentx.NewAgent(client, weatherTools(weather))
	got, err := agent.Run(context.Background(), "weather in Lima?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "It's 22°C and cloudy in Lima." {
		t.Fatalf("unexpected answer %q", got)
	}
	if weather.calls != 1 || weather.gotLoc != "Lima" {
		t.Fatalf("expected one Lima lookup, got %d for %q", weather.calls, weather.gotLoc)
	}

	// The second request must include the tool result as a tool-role message.
	second := client.requests[1]
	var sawToolMsg bool
	for _, m := range second {
		if m.Role == llm.RoleTool && m.ToolCallID == "call_1" &&
			strings.Contains(m.Content, `"temperature":22`) {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Fatal("tool result was not fed back to the model")
	}
}

func TestAgentRun_MaxIterationsExceeded(t *testing.T) {
	toolCallResp := llm.Response{Message: llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{
			ID:       "loop",
			Function: llm.FunctionCall{Name: toolx.WeatherToolName, Arguments: `{"location":"Lima"}`},
		}},
	}}
	client := &mockLLM{chatResps: []llm.Response{
		toolCallResp, toolCallResp, toolCallResp,
	}}

	agent := agentx.NewAgent(client, weatherTools(&stubWeather{}),
		agentx.WithMaxTotalIterations(3))
	if _, err := agent.Run(context.Background(), "weather?"); err == nil {
		t.Fatal("expected iteration limit error")
	}
}

func TestAgentRun_ModelError(t *testing.T) {
	client := &mockLLM{chatErr: errors.New("provider down")}

	agent := agentx.NewAgent(client, weatherTools(&stubWeather{}))
	if _, err := agent.Run(context.Background(), "weather?"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAgentRun_EmptyInput(t *testing.T) {
	client := &mockLLM{}

	agent := agentx.NewAgent(client, weatherTools(&stubWeather{}))
	if _, err := agent.Run(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
	if len(client.requests) != 0 {
		t.Fatal("no model request should be made for empty input")
	}
}
