package streamx

import (
	"net/http"

	"github.com/Abraxas-365/skycast/pkg/errx"
)

var (
	// Error registry for stream consumption
	errorRegistry = errx.NewRegistry("STREAM")

	ErrSourceFailed = errorRegistry.Register(
		"SOURCE_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Token source failed mid-stream",
	)

	ErrSinkClosed = errorRegistry.Register(
		"SINK_CLOSED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Event sink is no longer reachable",
	)

	ErrCancelled = errorRegistry.Register(
		"CANCELLED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Stream consumption cancelled",
	)
)

// SinkClosed wraps a sink write failure in the sink-closed error
func SinkClosed(cause error) error {
	return errorRegistry.NewWithCause(ErrSinkClosed, cause)
}

// IsSinkClosed reports whether err means the event sink went away. Callers use
// it to avoid writing a terminal event to a dead sink.
func IsSinkClosed(err error) bool {
	var e *errx.Error
	return errx.As(err, &e) && e.Code == ErrSinkClosed.Code
}
