package topology

import "errors"

var (
	// ErrNoBoard is returned when Analyze is called without a surfel board.
	ErrNoBoard = errors.New("topology: no surfel board")
	// ErrNotAnalyzed is returned by Job.Result before any analysis completed.
	ErrNotAnalyzed = errors.New("topology: not analyzed")
	// ErrBusy is returned by Job.Start while an analysis is in flight.
	ErrBusy = errors.New("topology: analysis in flight")
)
