package sentinelx

import (
	"net/http"

	"github.com/Abraxas-365/skycast/pkg/errx"
)

var (
	// Error registry for the sentinel scanner
	errorRegistry = errx.NewRegistry("SENTINEL")

	ErrEmptyMarker = errorRegistry.Register(
		"EMPTY_MARKER",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Marker strings must be non-empty",
	)

	ErrDuplicateMarker = errorRegistry.Register(
		"DUPLICATE_MARKER",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Marker strings must be pairwise distinct",
	)

	ErrOverlappingMarkers = errorRegistry.Register(
		"OVERLAPPING_MARKERS",
		errx.TypeValidation,
		http.StatusBadRequest,
		"No marker may be a substring of another",
	)

	ErrPendingSpanTooLarge = errorRegistry.Register(
		"PENDING_SPAN_TOO_LARGE",
		errx.TypeProtocol,
		http.StatusUnprocessableEntity,
		"Open call marker exceeded the pending span limit without closing",
	)
)
