package llm

// ChatOptions holds per-call parameters for chat requests
type ChatOptions struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
	Tools       []Tool
	ToolChoice  any // "auto", "none", "required"
}

// Option configures a chat request
type Option func(*ChatOptions)

// DefaultOptions returns the default chat options
func DefaultOptions() *ChatOptions {
	return &ChatOptions{
		Temperature: 0.7,
	}
}

// WithModel sets the model to use
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float64) Option {
	return func(o *ChatOptions) {
		o.Temperature = temperature
	}
}

// WithTopP sets nucleus sampling
func WithTopP(topP float64) Option {
	return func(o *ChatOptions) {
		o.TopP = topP
	}
}

// WithMaxTokens sets the completion token limit
func WithMaxTokens(maxTokens int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithStop sets stop sequences
func WithStop(stop ...string) Option {
	return func(o *ChatOptions) {
		o.Stop = stop
	}
}

// WithTools makes tools available to the model
func WithTools(tools []Tool) Option {
	return func(o *ChatOptions) {
		o.Tools = tools
	}
}

// WithToolChoice controls whether the model may call tools
func WithToolChoice(choice any) Option {
	return func(o *ChatOptions) {
		o.ToolChoice = choice
	}
}
