// Package game binds the track generator, pickups, player position and persistence into one session
package game

import (
	"math"

	"github.com/lixenwraith/endless-runner/save"
)

// Runner is a stand-in character controller that moves forward at the current speed
// Hosts with a real controller implement save.Player themselves
type Runner struct {
	pos save.Vec3
}

// NewRunner creates a runner at the origin
func NewRunner() *Runner {
	return &Runner{}
}

// Position implements save.Player
func (r *Runner) Position() save.Vec3 {
	return r.pos
}

// SetPosition implements save.Player
func (r *Runner) SetPosition(v save.Vec3) {
	r.pos = v
}

// Forward returns the position along the track axis
func (r *Runner) Forward() float64 {
	return r.pos.Z
}

// Advance moves the runner speed*dt forward; non-finite or negative steps are ignored
func (r *Runner) Advance(dt, speed float64) {
	step := dt * speed
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return
	}
	r.pos.Z += step
}
