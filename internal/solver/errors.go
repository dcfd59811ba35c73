package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTopology is returned when the solver has no analysed room.
	ErrNoTopology = errors.New("no topology")
	// ErrNoShapeProvider is returned for shape-based placements when no
	// ShapeProvider was set.
	ErrNoShapeProvider = errors.New("no shape provider")
	// ErrUnknownPositionType is returned for an unhandled PositionType.
	ErrUnknownPositionType = errors.New("unknown position type")
	// ErrIndexOutOfRange is returned for a solved object index that does not
	// exist.
	ErrIndexOutOfRange = errors.New("solved object index out of range")
	// ErrPossiblePosUnsupported is returned when OnlyComputePossiblePos is
	// set for a placement that creates linked objects.
	ErrPossiblePosUnsupported = errors.New("possible positions not supported for this placement")
)

// ConfigurationError reports solver misuse: a missing collaborator, a bad
// index or an unsupported request. It is never returned for a request that
// simply has no solution.
type ConfigurationError struct {
	Err    error
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("solver: %v", e.Err)
	}
	return fmt.Sprintf("solver: %v: %s", e.Err, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func misuse(err error, format string, args ...interface{}) error {
	return &ConfigurationError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
