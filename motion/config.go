package motion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpeedMode selects how fast a token travels toward a path goal.
type SpeedMode int

const (
	SpeedWalk SpeedMode = iota
	SpeedRun
	SpeedSprint
)

func (m SpeedMode) String() string {
	switch m {
	case SpeedWalk:
		return "walk"
	case SpeedRun:
		return "run"
	case SpeedSprint:
		return "sprint"
	}
	return "unknown"
}

// ParseSpeedMode maps a name to a speed mode, defaulting to walk.
func ParseSpeedMode(s string) SpeedMode {
	switch s {
	case "run":
		return SpeedRun
	case "sprint":
		return SpeedSprint
	}
	return SpeedWalk
}

// Config carries the movement tuning. The landing thresholds are calibration
// data, not derived values, so they ship as configuration and are validated
// for monotonicity instead of being hard-coded at use sites.
type Config struct {
	// Landing classification bounds, in world units of height drop.
	// drop <= FallThreshold            -> ordinary step down, no fall
	// drop <= HardLandingThreshold     -> "fall" (soft landing)
	// drop <= RollThreshold            -> "hardLanding"
	// drop >  RollThreshold            -> "fallToRoll"
	FallThreshold        float64 `yaml:"fall_threshold"`
	HardLandingThreshold float64 `yaml:"hard_landing_threshold"`
	RollThreshold        float64 `yaml:"roll_threshold"`

	// Stopping precision per speed mode; faster modes stop tighter.
	WalkTolerance   float64 `yaml:"walk_tolerance"`
	RunTolerance    float64 `yaml:"run_tolerance"`
	SprintTolerance float64 `yaml:"sprint_tolerance"`

	// Horizontal standoff before starting a climb; faster modes need more
	// room to bleed momentum.
	WalkWallClearance   float64 `yaml:"walk_wall_clearance"`
	RunWallClearance    float64 `yaml:"run_wall_clearance"`
	SprintWallClearance float64 `yaml:"sprint_wall_clearance"`

	// Travel-distance bands (in cells, Chebyshev) for deriving a speed mode
	// when the caller states no preference.
	WalkMaxCells int `yaml:"walk_max_cells"`
	RunMaxCells  int `yaml:"run_max_cells"`

	// StepUpMax is the largest world-unit rise walkable without a climb.
	StepUpMax float64 `yaml:"step_up_max"`

	// Root-motion sanitization allowances, as fractions of the step's
	// horizontal travel and height drop.
	FallHorizontalAllowance     float64 `yaml:"fall_horizontal_allowance"`
	HardLandHorizontalAllowance float64 `yaml:"hard_land_horizontal_allowance"`
	VerticalAllowance           float64 `yaml:"vertical_allowance"`

	// TurnRate is how fast facing converges on the travel direction, rad/s.
	TurnRate float64 `yaml:"turn_rate"`

	// FallAcceleration drives the scripted landing curve, world units/s^2.
	FallAcceleration float64 `yaml:"fall_acceleration"`

	// ClimbRecoverDuration is the settle time at the top of a climb.
	ClimbRecoverDuration float64 `yaml:"climb_recover_duration"`
}

// DefaultConfig returns the tuning observed to feel right at the default
// tile scale.
func DefaultConfig() Config {
	return Config{
		FallThreshold:        3.0,
		HardLandingThreshold: 5.0,
		RollThreshold:        8.0,

		WalkTolerance:   0.45,
		RunTolerance:    0.30,
		SprintTolerance: 0.15,

		WalkWallClearance:   0.25,
		RunWallClearance:    0.50,
		SprintWallClearance: 0.80,

		WalkMaxCells: 4,
		RunMaxCells:  12,

		StepUpMax: 0.55,

		FallHorizontalAllowance:     0.5,
		HardLandHorizontalAllowance: 0.9,
		VerticalAllowance:           0.25,

		TurnRate:             10,
		FallAcceleration:     14,
		ClimbRecoverDuration: 0.3,
	}
}

// Validate rejects tunings that break the movement invariants.
func (c Config) Validate() error {
	if !(c.FallThreshold > 0 && c.FallThreshold < c.HardLandingThreshold && c.HardLandingThreshold < c.RollThreshold) {
		return fmt.Errorf("motion: landing thresholds must be monotonic: %v < %v < %v",
			c.FallThreshold, c.HardLandingThreshold, c.RollThreshold)
	}
	if !(c.SprintTolerance > 0 && c.SprintTolerance < c.RunTolerance && c.RunTolerance < c.WalkTolerance) {
		return fmt.Errorf("motion: tolerances must strictly decrease with speed: walk=%v run=%v sprint=%v",
			c.WalkTolerance, c.RunTolerance, c.SprintTolerance)
	}
	if !(c.WalkWallClearance > 0 && c.WalkWallClearance < c.RunWallClearance && c.RunWallClearance < c.SprintWallClearance) {
		return fmt.Errorf("motion: wall clearance must strictly increase with speed: walk=%v run=%v sprint=%v",
			c.WalkWallClearance, c.RunWallClearance, c.SprintWallClearance)
	}
	if c.WalkMaxCells <= 0 || c.RunMaxCells <= c.WalkMaxCells {
		return fmt.Errorf("motion: distance bands must be ordered: walk<=%d run<=%d", c.WalkMaxCells, c.RunMaxCells)
	}
	if c.StepUpMax <= 0 || c.StepUpMax >= c.FallThreshold {
		return fmt.Errorf("motion: step_up_max %v must sit below the fall threshold %v", c.StepUpMax, c.FallThreshold)
	}
	if c.TurnRate <= 0 || c.FallAcceleration <= 0 || c.ClimbRecoverDuration <= 0 {
		return fmt.Errorf("motion: rates must be positive")
	}
	return nil
}

// LoadConfig reads a YAML tuning file layered over the defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("motion: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("motion: unmarshal %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Tolerance returns the stopping precision for a speed mode.
func (c Config) Tolerance(m SpeedMode) float64 {
	switch m {
	case SpeedSprint:
		return c.SprintTolerance
	case SpeedRun:
		return c.RunTolerance
	}
	return c.WalkTolerance
}

// WallClearance returns the climb standoff for a speed mode.
func (c Config) WallClearance(m SpeedMode) float64 {
	switch m {
	case SpeedSprint:
		return c.SprintWallClearance
	case SpeedRun:
		return c.RunWallClearance
	}
	return c.WalkWallClearance
}

// speedForDistance derives a mode from travel distance in cells.
func (c Config) speedForDistance(cells int) SpeedMode {
	switch {
	case cells <= c.WalkMaxCells:
		return SpeedWalk
	case cells <= c.RunMaxCells:
		return SpeedRun
	}
	return SpeedSprint
}
