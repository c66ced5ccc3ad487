// cmd/container.go
//
// Composition root. Builds the LLM provider, the weather client and the two
// conversation engines from configuration. This is the only place that knows
// about every module.
package main

import (
	"context"

	"github.com/Abraxas-365/skycast/pkg/agentx"
	"github.com/Abraxas-365/skycast/pkg/config"
	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/llm/providers/aianthropic"
	"github.com/Abraxas-365/skycast/pkg/llm/providers/aigemini"
	"github.com/Abraxas-365/skycast/pkg/llm/providers/aiopenai"
	"github.com/Abraxas-365/skycast/pkg/logx"
	"github.com/Abraxas-365/skycast/pkg/sentinelx"
	"github.com/Abraxas-365/skycast/pkg/toolx"
)

// Container holds the composed application services
type Container struct {
	Config       *config.Config
	LLM          llm.Client
	Weather      *toolx.WeatherClient
	Orchestrator *agentx.Orchestrator
	Agent        *agentx.Agent
}

// NewContainer wires the application from configuration
func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}

	c.LLM = buildProvider(cfg)
	logx.WithField("provider", cfg.LLM.Provider).
		WithField("model", cfg.LLM.Model).
		Info("LLM provider configured")

	c.Weather = toolx.NewWeatherClient(cfg.Weather.APIKey,
		toolx.WithBaseURL(cfg.Weather.BaseURL),
		toolx.WithTimeout(cfg.Weather.Timeout),
	)
	if cfg.Weather.APIKey == "" {
		logx.Warn("WEATHER_API_KEY not set; lookups will return an error result")
	}

	scanner, err := sentinelx.NewScanner(sentinelx.DefaultMarkers(),
		sentinelx.WithMaxPendingSpan(cfg.Stream.MaxPendingSpan))
	if err != nil {
		logx.Fatalf("Failed to build sentinel scanner: %v", err)
	}

	llmOptions := []llm.Option{
		llm.WithModel(cfg.LLM.Model),
		llm.WithTemperature(cfg.LLM.Temperature),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	}

	c.Orchestrator = agentx.NewOrchestrator(c.LLM, c.Weather, scanner,
		agentx.WithLLMOptions(llmOptions...),
		agentx.WithDefaultUnit(cfg.Weather.DefaultUnit),
	)

	tools := toolx.NewClient(toolx.NewWeatherTool(c.Weather, cfg.Weather.DefaultUnit))
	c.Agent = agentx.NewAgent(c.LLM, tools, agentx.WithOptions(llmOptions...))

	logx.Info("Application container initialized")
	return c
}

// buildProvider selects the configured LLM backend
func buildProvider(cfg *config.Config) llm.Client {
	switch cfg.LLM.Provider {
	case "openai":
		return aiopenai.NewOpenAIProvider(cfg.LLM.APIKey)
	case "anthropic":
		return aianthropic.NewAnthropicProvider(cfg.LLM.APIKey)
	case "gemini":
		provider, err := aigemini.NewGeminiProvider(context.Background(), cfg.LLM.APIKey)
		if err != nil {
			logx.Fatalf("Failed to initialize Gemini provider: %v", err)
		}
		return provider
	default:
		logx.Fatalf("Unsupported LLM provider: %s", cfg.LLM.Provider)
		return nil
	}
}
