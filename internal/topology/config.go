package topology

import "github.com/banshee-data/roomscan/internal/config"

// Config holds the analysis thresholds.
type Config struct {
	// SurfaceMinCells drops surfaces whose bounding box covers at most this
	// many cells.
	SurfaceMinCells int
	// WallEigenThreshold is the secondary eigenvalue below which a wall's
	// point set is treated as planar and its normal refined.
	WallEigenThreshold float64
	// VisibilitySamples is the number of steps tested between a position
	// and the room center.
	VisibilitySamples int
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig; unset fields
// take their defaults.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		SurfaceMinCells:    cfg.GetSurfaceMinCells(),
		WallEigenThreshold: cfg.GetWallEigenThreshold(),
		VisibilitySamples:  cfg.GetVisibilitySamples(),
	}
}

func (c Config) withDefaults() Config {
	d := ConfigFromTuning(config.EmptyTuningConfig())
	if c.SurfaceMinCells <= 0 {
		c.SurfaceMinCells = d.SurfaceMinCells
	}
	if c.WallEigenThreshold <= 0 {
		c.WallEigenThreshold = d.WallEigenThreshold
	}
	if c.VisibilitySamples <= 0 {
		c.VisibilitySamples = d.VisibilitySamples
	}
	return c
}
