// Package simulation advances the player pose on a fixed tick from the held
// keys and the floor plan. The tuning constants are loaded from data files so
// a deployment can adjust them without rebuilding.
package simulation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds all simulation tuning
type Config struct {
	// Movement rules
	Movement MovementConfig `json:"movement"`

	// Where the player starts
	Spawn SpawnConfig `json:"spawn"`

	// Camera and view parameters
	View ViewConfig `json:"view"`

	// Tick length in milliseconds
	TickMillis int `json:"tick_ms"`
}

// MovementConfig defines per-tick distances and angles
type MovementConfig struct {
	MoveSpeed              float64 `json:"move_speed"`               // World units per tick
	FastMoveSpeed          float64 `json:"fast_move_speed"`          // World units per tick with the fast modifier
	RotationSpeed          float64 `json:"rotation_speed"`           // Radians per tick
	FastRotationMultiplier float64 `json:"fast_rotation_multiplier"` // Applied to RotationSpeed with the fast modifier
}

// SpawnConfig is the initial pose
type SpawnConfig struct {
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"` // Radians
}

// ViewConfig defines how projectors and renderers present the pose
type ViewConfig struct {
	EyeHeight     float64 `json:"eye_height"`      // Constant camera height
	PixelsPerTile float64 `json:"pixels_per_tile"` // Minimap scale
	FieldOfView   float64 `json:"field_of_view"`   // Horizontal, degrees
	WallHeight    float64 `json:"wall_height"`     // Rack height in world units
}

// DefaultConfig returns the stock warehouse tuning
func DefaultConfig() *Config {
	return &Config{
		Movement: MovementConfig{
			MoveSpeed:              0.2,
			FastMoveSpeed:          0.4,
			RotationSpeed:          0.03,
			FastRotationMultiplier: 2.5,
		},
		Spawn: SpawnConfig{
			// Center of the aisle tile (4,6) in the default layout
			X:       2,
			Z:       4,
			Heading: 0,
		},
		View: ViewConfig{
			EyeHeight:     1.7,
			PixelsPerTile: 12,
			FieldOfView:   75,
			WallHeight:    6,
		},
		TickMillis: 16,
	}
}

// LoadConfig loads simulation config from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}

	return config, nil
}

// Validate checks the config for values the integrator cannot run with
func (c *Config) Validate() error {
	if c.TickMillis <= 0 {
		return fmt.Errorf("invalid tick length: %dms", c.TickMillis)
	}
	if c.Movement.MoveSpeed < 0 || c.Movement.FastMoveSpeed < 0 {
		return fmt.Errorf("invalid move speeds: %v/%v", c.Movement.MoveSpeed, c.Movement.FastMoveSpeed)
	}
	if c.Movement.RotationSpeed < 0 || c.Movement.FastRotationMultiplier < 0 {
		return fmt.Errorf("invalid rotation: %v x%v", c.Movement.RotationSpeed, c.Movement.FastRotationMultiplier)
	}
	if c.View.PixelsPerTile <= 0 {
		return fmt.Errorf("invalid minimap scale: %v", c.View.PixelsPerTile)
	}
	if c.View.FieldOfView <= 0 || c.View.FieldOfView >= 180 {
		return fmt.Errorf("invalid field of view: %v", c.View.FieldOfView)
	}
	return nil
}

// TickInterval returns the fixed tick length
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}
