package agentx

import (
	"context"
	"strings"

	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/logx"
	"github.com/Abraxas-365/skycast/pkg/toolx"
)

const systemPrompt = `You are Skycast, a friendly weather assistant. Answer
questions about current weather conditions using the get_weather tool. For
questions that need no weather data, answer directly.`

// Agent answers a single request through the provider's structured tool-call
// API. Each Run starts from a fresh message list; nothing is remembered
// between requests.
type Agent struct {
	client             llm.Client
	tools              *toolx.Client
	options            []llm.Option
	maxAutoIterations  int
	maxTotalIterations int
}

// AgentOption configures an Agent
type AgentOption func(*Agent)

// WithOptions adds LLM options to the agent
func WithOptions(options ...llm.Option) AgentOption {
	return func(a *Agent) {
		a.options = append(a.options, options...)
	}
}

// WithMaxAutoIterations sets how many rounds may request further tool calls
func WithMaxAutoIterations(max int) AgentOption {
	return func(a *Agent) {
		a.maxAutoIterations = max
	}
}

// WithMaxTotalIterations sets the hard iteration limit
func WithMaxTotalIterations(max int) AgentOption {
	return func(a *Agent) {
		a.maxTotalIterations = max
	}
}

// NewAgent creates an agent backed by the given tool registry
func NewAgent(client llm.Client, tools *toolx.Client, opts ...AgentOption) *Agent {
	agent := &Agent{
		client:             client,
		tools:              tools,
		maxAutoIterations:  3,
		maxTotalIterations: 10,
	}
	for _, opt := range opts {
		opt(agent)
	}
	return agent
}

// Run processes a user message and returns the final response text
func (a *Agent) Run(ctx context.Context, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", errorRegistry.New(ErrEmptyInput)
	}

	messages := []llm.Message{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(userInput),
	}

	for iteration := 0; iteration < a.maxTotalIterations; iteration++ {
		response, err := a.client.Chat(ctx, messages, a.buildOptions(iteration)...)
		if err != nil {
			return "", errorRegistry.NewWithCause(ErrModelRequest, err)
		}
		messages = append(messages, response.Message)

		if len(response.Message.ToolCalls) == 0 {
			return response.Message.Content, nil
		}

		for _, tc := range response.Message.ToolCalls {
			logx.WithField("tool", tc.Function.Name).Debug("executing tool call")
			toolMsg, err := a.tools.Call(ctx, tc)
			if err != nil {
				return "", err
			}
			messages = append(messages, toolMsg)
		}
	}

	return "", errorRegistry.New(ErrMaxIterations).
		WithDetail("limit", a.maxTotalIterations)
}

// buildOptions constructs the option slice for one round. After
// maxAutoIterations it forces tool_choice=none so the model must answer.
func (a *Agent) buildOptions(iteration int) []llm.Option {
	options := append([]llm.Option(nil), a.options...)

	toolList := a.tools.GetTools()
	if len(toolList) == 0 {
		return options
	}

	options = append(options, llm.WithTools(toolList))
	if iteration >= a.maxAutoIterations {
		options = append(options, llm.WithToolChoice("none"))
	} else {
		options = append(options, llm.WithToolChoice("auto"))
	}
	return options
}
