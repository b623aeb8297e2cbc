// Package pickup owns the collected-pickup count and the player speed derived from it
package pickup

import "sync/atomic"

// Counter is the single authority for collected pickups
// The speed provider and the save controller share one *Counter by handle
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a counter starting at zero
func NewCounter() *Counter {
	return &Counter{}
}

// Collect records one pickup and returns the new count
func (c *Counter) Collect() int {
	return int(c.n.Add(1))
}

// Count returns the current count
func (c *Counter) Count() int {
	return int(c.n.Load())
}

// Set restores a count from a save; negative values clamp to zero
func (c *Counter) Set(n int) {
	if n < 0 {
		n = 0
	}
	c.n.Store(int64(n))
}

// Reset zeroes the count
func (c *Counter) Reset() {
	c.n.Store(0)
}
