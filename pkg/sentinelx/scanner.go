package sentinelx

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// DefaultMaxPendingSpan caps how much text may accumulate between a call-open
// marker and its close marker. The model controls that distance, so an
// unbounded wait would let a runaway completion pin memory for the whole turn.
const DefaultMaxPendingSpan = 16 * 1024

// Call is a complete call span extracted from the stream
type Call struct {
	// Raw is the text strictly between the open and close markers
	Raw string

	// Payload is the decoded call body, nil when Raw is not a valid JSON
	// object. The span is consumed either way so the model cannot wedge a
	// pass by re-emitting an unparsable call.
	Payload map[string]any
}

// Location returns the payload's location field, or "" when absent/malformed
func (c *Call) Location() string {
	if c == nil || c.Payload == nil {
		return ""
	}
	loc, _ := c.Payload["location"].(string)
	return loc
}

// Unit returns the payload's unit field, or "" when absent
func (c *Call) Unit() string {
	if c == nil || c.Payload == nil {
		return ""
	}
	unit, _ := c.Payload["unit"].(string)
	return unit
}

// Valid reports whether the call carries a usable payload
func (c *Call) Valid() bool {
	return c.Location() != ""
}

// ScanResult is the outcome of one scan over the accumulated buffer.
// When Call is nil, Emit+Retained reconstructs the input buffer exactly; when
// Call is non-nil the consumed span has been removed and Emit is empty.
type ScanResult struct {
	// Emit is the prefix certified to contain no part of a call marker
	Emit string

	// Retained is the residue to carry into the next scan
	Retained string

	// Call is the extracted span, if a complete one was observed
	Call *Call
}

// Scanner extracts call spans from an append-only text buffer. It holds only
// immutable configuration; buffer ownership stays with the caller, so one
// Scanner may serve any number of concurrent passes.
type Scanner struct {
	markers        MarkerSet
	maxPendingSpan int
}

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithMaxPendingSpan overrides the pending span limit
func WithMaxPendingSpan(limit int) ScannerOption {
	return func(s *Scanner) {
		if limit > 0 {
			s.maxPendingSpan = limit
		}
	}
}

// NewScanner creates a Scanner for the given marker set
func NewScanner(markers MarkerSet, opts ...ScannerOption) (*Scanner, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		markers:        markers,
		maxPendingSpan: DefaultMaxPendingSpan,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Markers returns the scanner's marker set
func (s *Scanner) Markers() MarkerSet {
	return s.markers
}

// Scan inspects the accumulated buffer and splits it into text that is safe
// to emit, text to retain, and at most one extracted call span.
//
// Cases:
//   - no open marker: everything but a trailing safety tail of at least
//     MaxMarkerLen bytes is emitted; the tail could be the head of a marker
//     still in flight, so it is retained. The tail grows by a few bytes when
//     the cut would otherwise split a rune.
//   - open marker without close: nothing is emitted. Text preceding the
//     marker is held back too; once the model has started a call, none of the
//     surrounding text in the buffer is shown.
//   - open and close markers: the span is removed, the body is decoded, and
//     the text before and after the span becomes the new retained buffer.
//
// An open marker whose span exceeds the pending limit fails the scan; the
// caller should surface that as a protocol error for the turn.
func (s *Scanner) Scan(buffer string) (ScanResult, error) {
	open := s.markers.CallOpen
	closing := s.markers.CallClose

	start := strings.Index(buffer, open)
	if start < 0 {
		cut := len(buffer) - s.markers.MaxMarkerLen()
		// Emitted chunks are framed independently downstream, so the cut must
		// not land inside a multi-byte rune; back off to the rune start. The
		// extra bytes stay retained, which only widens the safety tail.
		for cut > 0 && !utf8.RuneStart(buffer[cut]) {
			cut--
		}
		if cut > 0 {
			return ScanResult{
				Emit:     buffer[:cut],
				Retained: buffer[cut:],
			}, nil
		}
		return ScanResult{Retained: buffer}, nil
	}

	bodyStart := start + len(open)
	rel := strings.Index(buffer[bodyStart:], closing)
	if rel < 0 {
		if len(buffer)-start > s.maxPendingSpan {
			return ScanResult{}, errorRegistry.New(ErrPendingSpanTooLarge).
				WithDetail("pending_bytes", len(buffer)-start).
				WithDetail("limit", s.maxPendingSpan)
		}
		return ScanResult{Retained: buffer}, nil
	}

	bodyEnd := bodyStart + rel
	spanEnd := bodyEnd + len(closing)

	call := &Call{Raw: buffer[bodyStart:bodyEnd]}
	var payload map[string]any
	if err := json.Unmarshal([]byte(call.Raw), &payload); err == nil {
		call.Payload = payload
	}

	return ScanResult{
		Retained: buffer[:start] + buffer[spanEnd:],
		Call:     call,
	}, nil
}

// HasOpenMarker reports whether the buffer contains an unconsumed call-open
// marker. Used at end-of-stream to decide whether the residue is a dangling
// span that must be discarded rather than flushed.
func (s *Scanner) HasOpenMarker(buffer string) bool {
	return strings.Contains(buffer, s.markers.CallOpen)
}
