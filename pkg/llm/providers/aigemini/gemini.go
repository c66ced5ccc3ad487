// Package aigemini adapts the Google Gemini API to the llm.Client interface.
package aigemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"google.golang.org/genai"

	"github.com/Abraxas-365/skycast/pkg/llm"
)

// ProviderOption configures the Gemini provider
type ProviderOption func(*GeminiProvider)

// WithVertexAI configures the provider to use the Vertex AI backend
func WithVertexAI(project, location string) ProviderOption {
	return func(p *GeminiProvider) {
		p.project = project
		p.location = location
		p.useVertexAI = true
	}
}

// GeminiProvider implements llm.Client for Google Gemini
type GeminiProvider struct {
	client      *genai.Client
	apiKey      string
	project     string
	location    string
	useVertexAI bool
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...ProviderOption) (*GeminiProvider, error) {
	p := &GeminiProvider{apiKey: apiKey}

	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("GEMINI_API_KEY")
	}

	config := &genai.ClientConfig{}
	if p.useVertexAI {
		config.Backend = genai.BackendVertexAI
		config.Project = p.project
		config.Location = p.location
	} else {
		config.APIKey = p.apiKey
		config.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrMissingAPIKey, err)
	}

	p.client = client
	return p, nil
}

func defaultChatOptions() *llm.ChatOptions {
	options := llm.DefaultOptions()
	options.Model = "gemini-2.0-flash"
	return options
}

// ============================================================================
// Chat Implementation
// ============================================================================

// Chat implements llm.Client
func (p *GeminiProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	if len(messages) == 0 {
		return llm.Response{}, errorRegistry.New(ErrEmptyMessages)
	}

	options := defaultChatOptions()
	for _, opt := range opts {
		opt(options)
	}

	systemContent, contents := convertMessages(messages)
	config := buildGenerateConfig(options, systemContent)

	result, err := p.client.Models.GenerateContent(ctx, options.Model, contents, config)
	if err != nil {
		return llm.Response{}, ParseGeminiError(err).
			WithDetail("model", options.Model).
			WithDetail("num_messages", len(messages))
	}

	return convertFromGeminiResponse(result)
}

// ============================================================================
// Chat Stream Implementation
// ============================================================================

// ChatStream implements llm.Client
func (p *GeminiProvider) ChatStream(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	if len(messages) == 0 {
		return nil, errorRegistry.New(ErrEmptyMessages)
	}

	options := defaultChatOptions()
	for _, opt := range opts {
		opt(options)
	}

	systemContent, contents := convertMessages(messages)
	config := buildGenerateConfig(options, systemContent)

	iter := p.client.Models.GenerateContentStream(ctx, options.Model, contents, config)

	// The SDK exposes a push-based iterator; bridge it to the pull-based
	// Stream interface through a channel.
	ch := make(chan streamResult, 1)
	done := make(chan struct{})

	go func() {
		defer close(ch)
		iter(func(resp *genai.GenerateContentResponse, err error) bool {
			select {
			case ch <- streamResult{resp: resp, err: err}:
				return true
			case <-done:
				return false
			}
		})
	}()

	return &geminiStream{
		ch:   ch,
		done: done,
	}, nil
}

type streamResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

// ============================================================================
// Stream Implementation
// ============================================================================

type geminiStream struct {
	ch        chan streamResult
	done      chan struct{}
	toolCalls []llm.ToolCall
	lastError error
}

func (s *geminiStream) Next() (llm.Message, error) {
	if s.lastError != nil {
		return llm.Message{}, s.lastError
	}

	result, ok := <-s.ch
	if !ok {
		s.lastError = io.EOF
		return llm.Message{}, io.EOF
	}

	if result.err != nil {
		s.lastError = ParseGeminiError(result.err)
		return llm.Message{}, s.lastError
	}

	if result.resp == nil || len(result.resp.Candidates) == 0 {
		return llm.Message{Role: llm.RoleAssistant}, nil
	}

	candidate := result.resp.Candidates[0]
	if candidate.Content == nil {
		return llm.Message{Role: llm.RoleAssistant}, nil
	}

	var textContent string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			textContent += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%s_%d", part.FunctionCall.Name, len(s.toolCalls))
			}
			s.toolCalls = append(s.toolCalls, llm.ToolCall{
				ID:   id,
				Type: "function",
				Function: llm.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		}
	}

	return llm.Message{
		Role:      llm.RoleAssistant,
		Content:   textContent,
		ToolCalls: s.toolCalls,
	}, nil
}

func (s *geminiStream) Close() error {
	close(s.done)
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func convertMessages(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var systemContent *genai.Content
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			if systemContent == nil {
				systemContent = &genai.Content{
					Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
				}
			} else {
				systemContent.Parts = append(systemContent.Parts,
					genai.NewPartFromText(msg.Content))
			}

		case llm.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})

		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: convertAssistantParts(msg),
			})

		case llm.RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{
					genai.NewPartFromFunctionResponse(msg.ToolCallID, map[string]any{
						"output": msg.Content,
					}),
				},
			})
		}
	}

	return systemContent, contents
}

func convertAssistantParts(msg llm.Message) []*genai.Part {
	var parts []*genai.Part

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		if args == nil {
			args = map[string]any{}
		}
		parts = append(parts, genai.NewPartFromFunctionCall(tc.Function.Name, args))
	}

	return parts
}

func buildGenerateConfig(options *llm.ChatOptions, systemContent *genai.Content) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if systemContent != nil {
		config.SystemInstruction = systemContent
	}
	if options.Temperature != 0 {
		config.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.TopP != 0 {
		config.TopP = genai.Ptr(float32(options.TopP))
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if len(options.Stop) > 0 {
		config.StopSequences = options.Stop
	}

	if len(options.Tools) > 0 {
		tools := convertToGeminiTools(options.Tools)
		if len(tools) > 0 {
			config.Tools = tools
		}
		if options.ToolChoice != nil {
			config.ToolConfig = convertGeminiToolConfig(options.ToolChoice)
		}
	}

	return config
}

func convertToGeminiTools(tools []llm.Tool) []*genai.Tool {
	var declarations []*genai.FunctionDeclaration

	for _, tool := range tools {
		if tool.Type != "function" {
			continue
		}
		decl := &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
		}
		if tool.Function.Parameters != nil {
			decl.Parameters = convertToGeminiSchema(tool.Function.Parameters)
		}
		declarations = append(declarations, decl)
	}

	if len(declarations) == 0 {
		return nil
	}

	return []*genai.Tool{{
		FunctionDeclarations: declarations,
	}}
}

func convertToGeminiSchema(params any) *genai.Schema {
	var m map[string]any
	switch v := params.(type) {
	case map[string]any:
		m = v
	default:
		data, err := json.Marshal(params)
		if err != nil {
			return nil
		}
		_ = json.Unmarshal(data, &m)
	}

	return mapToGeminiSchema(m)
}

func mapToGeminiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := m["type"].(string); ok {
		switch t {
		case "object":
			schema.Type = genai.TypeObject
		case "array":
			schema.Type = genai.TypeArray
		case "string":
			schema.Type = genai.TypeString
		case "number":
			schema.Type = genai.TypeNumber
		case "integer":
			schema.Type = genai.TypeInteger
		case "boolean":
			schema.Type = genai.TypeBoolean
		}
	}

	if desc, ok := m["description"].(string); ok {
		schema.Description = desc
	}

	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if enum, ok := m["enum"].([]string); ok {
		schema.Enum = append(schema.Enum, enum...)
	}

	if props, ok := m["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for key, val := range props {
			if propMap, ok := val.(map[string]any); ok {
				schema.Properties[key] = mapToGeminiSchema(propMap)
			}
		}
	}

	if items, ok := m["items"].(map[string]any); ok {
		schema.Items = mapToGeminiSchema(items)
	}

	if required, ok := m["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if required, ok := m["required"].([]string); ok {
		schema.Required = append(schema.Required, required...)
	}

	return schema
}

func convertGeminiToolConfig(toolChoice any) *genai.ToolConfig {
	if strChoice, ok := toolChoice.(string); ok {
		switch strChoice {
		case "auto":
			return &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAuto,
				},
			}
		case "none":
			return &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeNone,
				},
			}
		case "required":
			return &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAny,
				},
			}
		}
	}

	return nil
}

func convertFromGeminiResponse(result *genai.GenerateContentResponse) (llm.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return llm.Response{}, errorRegistry.New(ErrAPIResponse)
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return llm.Response{
			Message: llm.Message{Role: llm.RoleAssistant},
		}, nil
	}

	var content string
	var toolCalls []llm.ToolCall

	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%s_%d", part.FunctionCall.Name, len(toolCalls))
			}
			toolCalls = append(toolCalls, llm.ToolCall{
				ID:   id,
				Type: "function",
				Function: llm.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		}
	}

	usage := llm.Usage{}
	if result.UsageMetadata != nil {
		usage.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}

	return llm.Response{
		Message: llm.Message{
			Role:      llm.RoleAssistant,
			Content:   content,
			ToolCalls: toolCalls,
		},
		Usage: usage,
	}, nil
}
