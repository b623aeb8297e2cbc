package track

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/endless-runner/parameter"
)

// ErrInvalidConfig wraps every Config validation failure
var ErrInvalidConfig = errors.New("invalid track config")

// Config holds generator tuning
type Config struct {
	// Stride is the forward length of a segment and the cursor advance per spawn
	Stride float64 `toml:"stride"`

	// InitialCursor is the first spawn position of an empty track
	InitialCursor float64 `toml:"initial_cursor"`

	// DestroyDistance is how far behind the player a segment is kept
	DestroyDistance float64 `toml:"destroy_distance"`

	// BaseDelay and FastDelay pace spawns at or below / above SpeedThreshold
	BaseDelay      time.Duration `toml:"base_delay"`
	FastDelay      time.Duration `toml:"fast_delay"`
	SpeedThreshold float64       `toml:"speed_threshold"`
}

// DefaultConfig returns the shipped tuning
func DefaultConfig() Config {
	return Config{
		Stride:          parameter.SegmentStride,
		InitialCursor:   parameter.InitialCursor,
		DestroyDistance: parameter.DestroyDistance,
		BaseDelay:       parameter.BaseSpawnDelay,
		FastDelay:       parameter.FastSpawnDelay,
		SpeedThreshold:  parameter.SpeedThreshold,
	}
}

// Validate reports the first unusable field
func (c Config) Validate() error {
	switch {
	case !isFinite(c.Stride) || c.Stride <= 0:
		return fmt.Errorf("%w: stride must be positive, got %v", ErrInvalidConfig, c.Stride)
	case !isFinite(c.InitialCursor):
		return fmt.Errorf("%w: initial cursor must be finite", ErrInvalidConfig)
	case !isFinite(c.DestroyDistance) || c.DestroyDistance < 0:
		return fmt.Errorf("%w: destroy distance must be non-negative, got %v", ErrInvalidConfig, c.DestroyDistance)
	case c.BaseDelay < 0 || c.FastDelay < 0:
		return fmt.Errorf("%w: spawn delays must be non-negative", ErrInvalidConfig)
	case !isFinite(c.SpeedThreshold):
		return fmt.Errorf("%w: speed threshold must be finite", ErrInvalidConfig)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clampInput maps NaN, infinities and negatives to zero
func clampInput(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

// secondsToDuration converts a clamped tick delta, saturating instead of overflowing
func secondsToDuration(sec float64) time.Duration {
	ns := math.Round(sec * float64(time.Second))
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
