package surfel

import (
	"errors"
	"fmt"
)

var (
	// ErrZoneLimit is returned when zoning needs more zone ids than allowed.
	ErrZoneLimit = errors.New("zone limit exceeded")
	// ErrZoneSurfelLimit is returned when a single zone flood fill exceeds
	// its stack capacity.
	ErrZoneSurfelLimit = errors.New("zone surfel limit exceeded")
	// ErrOutOfBoard is returned for cell coordinates outside the board.
	ErrOutOfBoard = errors.New("position out of board")
)

// ConfigurationError reports a violated precondition or exhausted capacity.
// It indicates misuse or mis-tuning rather than an environmental failure.
type ConfigurationError struct {
	Err    error
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("surfel: %v: %s", e.Err, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
