// Package sentinelx detects machine-emitted tool calls embedded in an
// incrementally-arriving model output stream. The model brackets a JSON
// payload between literal marker strings; the scanner certifies which prefix
// of the accumulated text is provably marker-free and safe to show, and
// extracts complete call spans without ever leaking the markers downstream.
package sentinelx

import "strings"

// Default marker literals. These must match the instruction prompt verbatim;
// changing one side without the other breaks detection silently.
const (
	DefaultCallOpen    = "<CALL_WEATHER>"
	DefaultCallClose   = "</CALL_WEATHER>"
	DefaultResultOpen  = "<WEATHER_RESULT>"
	DefaultResultClose = "</WEATHER_RESULT>"
)

// MarkerSet holds the four literal marker strings for one tool protocol.
// Call markers bracket a payload the model emits; result markers bracket the
// tool output the orchestrator feeds back in the second pass. Only the call
// markers are scanned for in model output.
type MarkerSet struct {
	CallOpen    string
	CallClose   string
	ResultOpen  string
	ResultClose string
}

// DefaultMarkers returns the weather tool marker set
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		CallOpen:    DefaultCallOpen,
		CallClose:   DefaultCallClose,
		ResultOpen:  DefaultResultOpen,
		ResultClose: DefaultResultClose,
	}
}

// MaxMarkerLen returns the length of the longest call marker. The scanner can
// never certify the trailing MaxMarkerLen-1 characters of a buffer as
// marker-free, so this bounds the safety tail.
func (m MarkerSet) MaxMarkerLen() int {
	n := len(m.CallOpen)
	if len(m.CallClose) > n {
		n = len(m.CallClose)
	}
	return n
}

// WrapResult brackets a serialized tool result with the result markers
func (m MarkerSet) WrapResult(serialized string) string {
	return m.ResultOpen + serialized + m.ResultClose
}

// Validate checks the marker set invariants: all four markers non-empty,
// pairwise distinct, and none a substring of another.
func (m MarkerSet) Validate() error {
	markers := []string{m.CallOpen, m.CallClose, m.ResultOpen, m.ResultClose}

	for _, s := range markers {
		if s == "" {
			return errorRegistry.New(ErrEmptyMarker)
		}
	}

	for i, a := range markers {
		for j, b := range markers {
			if i == j {
				continue
			}
			if a == b {
				return errorRegistry.New(ErrDuplicateMarker).
					WithDetail("marker", a)
			}
			if strings.Contains(a, b) {
				return errorRegistry.New(ErrOverlappingMarkers).
					WithDetail("marker", a).
					WithDetail("contains", b)
			}
		}
	}

	return nil
}
