package solver

import "github.com/banshee-data/roomscan/internal/config"

// Config holds the solver tuning.
type Config struct {
	// RotationStepDeg is the yaw step tried on floor, ceiling and shape
	// surfaces.
	RotationStepDeg float64
	// Seed seeds the tie-break random source when New is given none.
	Seed int64
	// WallHeightMinAway is the minimum height of walls considered by the
	// AwayFromWall score.
	WallHeightMinAway float64
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		RotationStepDeg:   cfg.GetSolverRotationStepDeg(),
		Seed:              cfg.GetSolverSeed(),
		WallHeightMinAway: cfg.GetWallHeightMinAway(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RotationStepDeg <= 0 || c.RotationStepDeg > 360 {
		c.RotationStepDeg = d.RotationStepDeg
	}
	if c.WallHeightMinAway <= 0 {
		c.WallHeightMinAway = d.WallHeightMinAway
	}
	return c
}
