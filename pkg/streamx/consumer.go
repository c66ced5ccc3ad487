package streamx

import (
	"context"
	"errors"
	"io"

	"github.com/Abraxas-365/skycast/pkg/llm"
	"github.com/Abraxas-365/skycast/pkg/logx"
	"github.com/Abraxas-365/skycast/pkg/sentinelx"
)

// PayloadHandler is called synchronously with every extracted call span,
// including malformed ones. Returning true stops consumption immediately; the
// remainder of the source is not drained. Termination is signalled through
// this return value rather than by aborting the iteration from inside the
// handler, so the orchestrator's stop condition stays plain data.
type PayloadHandler func(*sentinelx.Call) bool

// Consume drives one model stream to completion (or early stop), feeding
// every increment through the scanner, forwarding certified text to the sink
// and handing extracted call spans to onPayload.
//
// The buffer lives for exactly one pass and is never shared. On normal
// end-of-stream a marker-free residue is flushed as a final text event; a
// residue still holding an open call marker is a dangling span and is
// discarded wholesale so partial markers can never leak.
//
// It returns the call that stopped consumption, or nil if the source ended
// without one. Source errors, scan protocol errors, sink write failures and
// context cancellation all abort the pass with an error and no further sink
// writes.
func Consume(ctx context.Context, stream llm.Stream, scanner *sentinelx.Scanner, sink Sink, onPayload PayloadHandler) (*sentinelx.Call, error) {
	var buffer string

	for {
		if err := ctx.Err(); err != nil {
			return nil, errorRegistry.NewWithCause(ErrCancelled, err)
		}

		chunk, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, flushResidue(scanner, sink, buffer)
			}
			return nil, errorRegistry.NewWithCause(ErrSourceFailed, err)
		}

		if chunk.Content == "" {
			continue
		}
		buffer += chunk.Content

		// A single increment can complete more than one span; keep scanning
		// until the buffer is span-free so nothing marker-shaped survives
		// into a later flush.
		for {
			res, scanErr := scanner.Scan(buffer)
			if scanErr != nil {
				return nil, scanErr
			}

			if res.Emit != "" {
				if sendErr := sink.Send(TextEvent(res.Emit)); sendErr != nil {
					return nil, errorRegistry.NewWithCause(ErrSinkClosed, sendErr)
				}
			}
			buffer = res.Retained

			if res.Call == nil {
				break
			}
			if onPayload(res.Call) {
				return res.Call, nil
			}
		}
	}
}

// flushResidue handles the end-of-stream buffer: emit it if it is provably
// marker-free, drop it if an open call marker never closed.
func flushResidue(scanner *sentinelx.Scanner, sink Sink, buffer string) error {
	if buffer == "" {
		return nil
	}

	if scanner.HasOpenMarker(buffer) {
		logx.WithField("pending_bytes", len(buffer)).
			Debug("discarding unterminated call span at end of stream")
		return nil
	}

	if err := sink.Send(TextEvent(buffer)); err != nil {
		return errorRegistry.NewWithCause(ErrSinkClosed, err)
	}
	return nil
}
