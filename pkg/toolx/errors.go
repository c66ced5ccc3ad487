package toolx

import (
	"net/http"

	"github.com/Abraxas-365/skycast/pkg/errx"
)

var (
	// Error registry for tool execution
	errorRegistry = errx.NewRegistry("TOOLX")

	ErrUnknownTool = errorRegistry.Register(
		"UNKNOWN_TOOL",
		errx.TypeNotFound,
		http.StatusNotFound,
		"Requested tool is not registered",
	)

	ErrToolExecution = errorRegistry.Register(
		"TOOL_EXECUTION_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Tool execution failed",
	)

	ErrInvalidArguments = errorRegistry.Register(
		"INVALID_ARGUMENTS",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Tool arguments could not be parsed",
	)
)
