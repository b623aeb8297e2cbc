// Package track extends an endless runner track ahead of the player and culls it behind
package track

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/endless-runner/catalog"
	"github.com/lixenwraith/endless-runner/status"
)

// ErrEmptyCatalog is reported by Tick when there is no template to spawn
var ErrEmptyCatalog = errors.New("segment catalog is empty")

// Metric keys published to the status registry
const (
	StatSpawned       = "track.spawned"
	StatCulled        = "track.culled"
	StatDropped       = "track.dropped"
	StatUnordered     = "track.unordered"
	StatSpawnFailures = "track.spawn_failures"
	StatLive          = "track.live"
	StatCursor        = "track.cursor"
	StatDelay         = "track.delay"
	StatInFlight      = "track.in_flight"
)

// TickResult describes what one Tick changed
type TickResult struct {
	// Spawned is set when Segment was appended this tick
	Spawned bool
	Segment Segment

	// Culled is the number of segments removed from the head
	Culled int

	// Err is ErrEmptyCatalog when a spawn was due but impossible; the spawn is retried next tick
	Err error
}

// Generator owns the live segment list, the spawn countdown and culling
// It is not safe for concurrent use: one goroutine ticks it, others read Export snapshots
// taken under the host's lock
type Generator struct {
	cfg     Config
	catalog *catalog.Catalog
	rng     Source

	segments []Segment
	cursor   float64

	// Spawn countdown; inFlight is the only suspension marker
	timer    time.Duration
	inFlight bool

	// Cached metric pointers
	statSpawned  *atomic.Int64
	statCulled   *atomic.Int64
	statDropped   *atomic.Int64
	statUnordered *atomic.Int64
	statFailures *atomic.Int64
	statLive     *atomic.Int64
	statCursor   *status.AtomicFloat
	statDelay    *status.AtomicFloat
	statInFlight *atomic.Bool
}

// New creates a generator with an empty track
// A nil rng seeds from the clock, a nil reg keeps metrics private
func New(cfg Config, cat *catalog.Catalog, rng Source, reg *status.Registry) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewSource(0)
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	g := &Generator{
		cfg:     cfg,
		catalog: cat,
		rng:     rng,

		statSpawned:  reg.Ints.Get(StatSpawned),
		statCulled:   reg.Ints.Get(StatCulled),
		statDropped:   reg.Ints.Get(StatDropped),
		statUnordered: reg.Ints.Get(StatUnordered),
		statFailures: reg.Ints.Get(StatSpawnFailures),
		statLive:     reg.Ints.Get(StatLive),
		statCursor:   reg.Floats.Get(StatCursor),
		statDelay:    reg.Floats.Get(StatDelay),
		statInFlight: reg.Bools.Get(StatInFlight),
	}
	g.Reset(nil)
	return g, nil
}

// Tick advances the generator by dt seconds
// The countdown and the spawn are exclusive within one tick: a countdown that reaches zero
// only clears the in-flight flag, so the next spawn happens on a later tick
// Culling runs every tick regardless of spawn state
func (g *Generator) Tick(dt, playerPosition, playerSpeed float64) TickResult {
	dt = clampInput(dt)
	playerPosition = clampInput(playerPosition)
	playerSpeed = clampInput(playerSpeed)

	var res TickResult
	if g.inFlight {
		g.timer -= secondsToDuration(dt)
		if g.timer <= 0 {
			g.timer = 0
			g.inFlight = false
		}
	} else {
		res.Segment, res.Err = g.spawn(playerSpeed)
		res.Spawned = res.Err == nil
	}

	res.Culled = g.cull(playerPosition)
	g.publish()
	return res
}

// Reset discards the whole track and cancels any pending countdown, then rebuilds from saved
// Entries whose template is not in the catalog or whose position is not finite are dropped
// and their number returned. Entries that would break strictly ascending order are skipped
// without counting as dropped; they only feed the StatUnordered metric
// With nothing kept the cursor returns to its initial value
func (g *Generator) Reset(saved []Segment) (dropped int) {
	unordered := 0
	clear(g.segments)
	g.segments = g.segments[:0]
	g.timer = 0
	g.inFlight = false
	g.cursor = g.cfg.InitialCursor

	for _, s := range saved {
		if !g.catalog.Contains(s.TemplateIndex) || !isFinite(s.Position) {
			dropped++
			continue
		}
		if n := len(g.segments); n > 0 && s.Position <= g.segments[n-1].Position {
			unordered++
			continue
		}
		g.segments = append(g.segments, s)
	}

	if n := len(g.segments); n > 0 {
		g.cursor = g.segments[n-1].Position + g.cfg.Stride
	}

	g.statDropped.Add(int64(dropped))
	g.statUnordered.Add(int64(unordered))
	g.statDelay.Set(0)
	g.publish()
	return dropped
}

// Export returns a copy of the live track in spawn order
func (g *Generator) Export() []Segment {
	return slices.Clone(g.segments)
}

// Cursor returns the position the next segment will be placed at
func (g *Generator) Cursor() float64 {
	return g.cursor
}

// InFlight reports whether a spawn countdown is running
func (g *Generator) InFlight() bool {
	return g.inFlight
}

// Remaining returns the countdown left before the next spawn is allowed
func (g *Generator) Remaining() time.Duration {
	return g.timer
}

// Len returns the number of live segments
func (g *Generator) Len() int {
	return len(g.segments)
}

// Config returns the generator's tuning
func (g *Generator) Config() Config {
	return g.cfg
}

// Catalog returns the template set indices are validated against
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}

// String summarizes state for logs
func (g *Generator) String() string {
	return fmt.Sprintf("track{live=%d cursor=%.1f inFlight=%v remaining=%v}",
		len(g.segments), g.cursor, g.inFlight, g.timer)
}

// spawn appends one random template at the cursor and arms the countdown
func (g *Generator) spawn(speed float64) (Segment, error) {
	n := g.catalog.Len()
	if n == 0 {
		g.statFailures.Add(1)
		return Segment{}, ErrEmptyCatalog
	}

	seg := Segment{
		TemplateIndex: g.rng.IntN(n),
		Position:      g.cursor,
	}
	g.segments = append(g.segments, seg)
	g.cursor += g.cfg.Stride

	delay := g.cfg.BaseDelay
	if speed > g.cfg.SpeedThreshold {
		delay = g.cfg.FastDelay
	}
	g.timer = delay
	g.inFlight = true

	g.statSpawned.Add(1)
	g.statDelay.Set(delay.Seconds())
	return seg, nil
}

// cull removes every head segment the player is strictly more than DestroyDistance past
// An emptied track puts the cursor back at its initial value
func (g *Generator) cull(playerPosition float64) int {
	n := 0
	for n < len(g.segments) && playerPosition > g.segments[n].Position+g.cfg.DestroyDistance {
		n++
	}
	if n > 0 {
		g.segments = slices.Delete(g.segments, 0, n)
		g.statCulled.Add(int64(n))
		if len(g.segments) == 0 {
			g.cursor = g.cfg.InitialCursor
		}
	}
	return n
}

func (g *Generator) publish() {
	g.statLive.Store(int64(len(g.segments)))
	g.statCursor.Set(g.cursor)
	g.statInFlight.Store(g.inFlight)
}
