package agentx

import (
	"net/http"

	"github.com/Abraxas-365/skycast/pkg/errx"
)

var (
	// Error registry for agent orchestration
	errorRegistry = errx.NewRegistry("AGENTX")

	ErrModelRequest = errorRegistry.Register(
		"MODEL_REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Model request failed",
	)

	ErrMaxIterations = errorRegistry.Register(
		"MAX_ITERATIONS_EXCEEDED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Maximum tool iterations exceeded",
	)

	ErrEmptyInput = errorRegistry.Register(
		"EMPTY_INPUT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"User input must not be empty",
	)
)
