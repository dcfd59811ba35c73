package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the analysis and solver thresholds. Every field is
// optional; the Get* accessors supply the default for fields left unset,
// so partial files are safe.
type TuningConfig struct {
	// Surfel board
	VoxelSize           *float64 `json:"voxel_size,omitempty"`
	ZoneLimit           *int     `json:"zone_limit,omitempty"`
	ZoneSurfelLimit     *int     `json:"zone_surfel_limit,omitempty"`
	FilterEyeHeight     *float64 `json:"filter_eye_height,omitempty"` // absolute Y; 1000 disables the eye test
	FilterProximityDist *float64 `json:"filter_proximity_dist,omitempty"`

	// Topology
	SurfaceMinCells    *int     `json:"surface_min_cells,omitempty"`
	WallEigenThreshold *float64 `json:"wall_eigen_threshold,omitempty"`
	VisibilitySamples  *int     `json:"visibility_samples,omitempty"`

	// Solver
	SolverRotationStepDeg *float64 `json:"solver_rotation_step_deg,omitempty"`
	SolverSeed            *int64   `json:"solver_seed,omitempty"` // 0 seeds from the clock
	WallHeightMinAway     *float64 `json:"wall_height_min_away,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every field populated from the
// built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		VoxelSize:             ptrFloat64(e.GetVoxelSize()),
		ZoneLimit:             ptrInt(e.GetZoneLimit()),
		ZoneSurfelLimit:       ptrInt(e.GetZoneSurfelLimit()),
		FilterEyeHeight:       ptrFloat64(e.GetFilterEyeHeight()),
		FilterProximityDist:   ptrFloat64(e.GetFilterProximityDist()),
		SurfaceMinCells:       ptrInt(e.GetSurfaceMinCells()),
		WallEigenThreshold:    ptrFloat64(e.GetWallEigenThreshold()),
		VisibilitySamples:     ptrInt(e.GetVisibilitySamples()),
		SolverRotationStepDeg: ptrFloat64(e.GetSolverRotationStepDeg()),
		SolverSeed:            ptrInt64(e.GetSolverSeed()),
		WallHeightMinAway:     ptrFloat64(e.GetWallHeightMinAway()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and parent directories up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.VoxelSize != nil && (*c.VoxelSize <= 0 || *c.VoxelSize > 1) {
		return fmt.Errorf("voxel_size must be in (0, 1], got %f", *c.VoxelSize)
	}
	if c.ZoneLimit != nil && *c.ZoneLimit < 1 {
		return fmt.Errorf("zone_limit must be positive, got %d", *c.ZoneLimit)
	}
	if c.ZoneSurfelLimit != nil && *c.ZoneSurfelLimit < 1 {
		return fmt.Errorf("zone_surfel_limit must be positive, got %d", *c.ZoneSurfelLimit)
	}
	if c.FilterProximityDist != nil && *c.FilterProximityDist < 0 {
		return fmt.Errorf("filter_proximity_dist must be non-negative, got %f", *c.FilterProximityDist)
	}
	if c.SurfaceMinCells != nil && *c.SurfaceMinCells < 0 {
		return fmt.Errorf("surface_min_cells must be non-negative, got %d", *c.SurfaceMinCells)
	}
	if c.WallEigenThreshold != nil && *c.WallEigenThreshold < 0 {
		return fmt.Errorf("wall_eigen_threshold must be non-negative, got %f", *c.WallEigenThreshold)
	}
	if c.VisibilitySamples != nil && *c.VisibilitySamples < 1 {
		return fmt.Errorf("visibility_samples must be positive, got %d", *c.VisibilitySamples)
	}
	if c.SolverRotationStepDeg != nil {
		if s := *c.SolverRotationStepDeg; s <= 0 || s > 360 {
			return fmt.Errorf("solver_rotation_step_deg must be in (0, 360], got %f", s)
		}
	}
	if c.WallHeightMinAway != nil && *c.WallHeightMinAway < 0 {
		return fmt.Errorf("wall_height_min_away must be non-negative, got %f", *c.WallHeightMinAway)
	}
	return nil
}

// GetVoxelSize returns the voxel edge length in metres.
func (c *TuningConfig) GetVoxelSize() float64 {
	if c.VoxelSize == nil {
		return 0.08
	}
	return *c.VoxelSize
}

// GetZoneLimit returns the maximum number of zones ComputeConexity may create.
func (c *TuningConfig) GetZoneLimit() int {
	if c.ZoneLimit == nil {
		return 2048
	}
	return *c.ZoneLimit
}

// GetZoneSurfelLimit returns the flood-fill stack capacity.
func (c *TuningConfig) GetZoneSurfelLimit() int {
	if c.ZoneSurfelLimit == nil {
		return 1 << 18
	}
	return *c.ZoneSurfelLimit
}

func (c *TuningConfig) GetFilterEyeHeight() float64 {
	if c.FilterEyeHeight == nil {
		return 1000
	}
	return *c.FilterEyeHeight
}

func (c *TuningConfig) GetFilterProximityDist() float64 {
	if c.FilterProximityDist == nil {
		return 0.4
	}
	return *c.FilterProximityDist
}

// GetSurfaceMinCells returns the footprint size at or below which a surface
// is discarded.
func (c *TuningConfig) GetSurfaceMinCells() int {
	if c.SurfaceMinCells == nil {
		return 16
	}
	return *c.SurfaceMinCells
}

func (c *TuningConfig) GetWallEigenThreshold() float64 {
	if c.WallEigenThreshold == nil {
		return 0.2
	}
	return *c.WallEigenThreshold
}

func (c *TuningConfig) GetVisibilitySamples() int {
	if c.VisibilitySamples == nil {
		return 100
	}
	return *c.VisibilitySamples
}

func (c *TuningConfig) GetSolverRotationStepDeg() float64 {
	if c.SolverRotationStepDeg == nil {
		return 15
	}
	return *c.SolverRotationStepDeg
}

func (c *TuningConfig) GetSolverSeed() int64 {
	if c.SolverSeed == nil {
		return 0
	}
	return *c.SolverSeed
}

// GetWallHeightMinAway returns the minimum wall height considered by the
// away-from-wall score.
func (c *TuningConfig) GetWallHeightMinAway() float64 {
	if c.WallHeightMinAway == nil {
		return 1.0
	}
	return *c.WallHeightMinAway
}
