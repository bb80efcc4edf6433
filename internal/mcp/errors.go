package mcp

import (
	"errors"
	"fmt"
	"io/fs"

	"reforestai-mcp-server/internal/geoquery"
	"reforestai-mcp-server/internal/layer"
	"reforestai-mcp-server/internal/render"
)

// Error kinds reported to the calling agent.
const (
	KindInvalidArgument = "invalid_argument"
	KindNotFound        = "not_found"
	KindConfiguration   = "configuration_error"
	KindIO              = "io_error"
)

// errInvalidArgument marks argument validation failures.
var errInvalidArgument = errors.New("invalid argument")

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInvalidArgument, fmt.Sprintf(format, args...))
}

// classifyError maps tool errors onto the error kinds the agent understands.
// Anything unclassified is treated as an IO failure (dataset or artifact).
func classifyError(err error) string {
	switch {
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, geoquery.ErrBadOperator),
		errors.Is(err, geoquery.ErrBadPredicate):
		return KindInvalidArgument
	case errors.Is(err, layer.ErrUnknownLayer):
		return KindNotFound
	case errors.Is(err, render.ErrAttributionRequired),
		errors.Is(err, render.ErrUnknownTiles):
		return KindConfiguration
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return KindIO
	default:
		return KindIO
	}
}
