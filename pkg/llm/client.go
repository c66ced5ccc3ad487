package llm

import "context"

// Client is the provider-agnostic chat interface
type Client interface {
	// Chat sends messages and returns the complete response
	Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error)

	// ChatStream sends messages and returns an incremental response stream
	ChatStream(ctx context.Context, messages []Message, opts ...Option) (Stream, error)
}

// Stream is a pull-based token stream from one model invocation.
// Next returns io.EOF when the source is exhausted; that is the normal
// completion signal, not an error condition.
type Stream interface {
	Next() (Message, error)
	Close() error
}
