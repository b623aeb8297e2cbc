package pickup

import (
	"math"

	"github.com/lixenwraith/endless-runner/parameter"
)

// SpeedConfig holds the speed curve
type SpeedConfig struct {
	BaseSpeed  float64 `toml:"base_speed"`
	Multiplier float64 `toml:"pickup_multiplier"`
	MaxSpeed   float64 `toml:"max_speed"`
}

// DefaultSpeedConfig returns the shipped curve
func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{
		BaseSpeed:  parameter.BaseSpeed,
		Multiplier: parameter.PickupSpeedMultiplier,
		MaxSpeed:   parameter.MaxSpeed,
	}
}

// Speed derives player speed from a pickup counter: BaseSpeed * Multiplier^count
type Speed struct {
	cfg     SpeedConfig
	counter *Counter
}

// NewSpeed binds a speed curve to counter
func NewSpeed(cfg SpeedConfig, counter *Counter) *Speed {
	return &Speed{cfg: cfg, counter: counter}
}

// Current returns the speed for the counter's present value
// NaN and negative results read as 0. MaxSpeed > 0 caps the result; without a cap an
// overflow saturates at math.MaxFloat64
func (s *Speed) Current() float64 {
	v := s.cfg.BaseSpeed * math.Pow(s.cfg.Multiplier, float64(s.counter.Count()))
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if s.cfg.MaxSpeed > 0 && v > s.cfg.MaxSpeed {
		return s.cfg.MaxSpeed
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

// Counter returns the bound counter
func (s *Speed) Counter() *Counter {
	return s.counter
}
