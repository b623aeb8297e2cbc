package game

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/endless-runner/catalog"
	"github.com/lixenwraith/endless-runner/engine"
	"github.com/lixenwraith/endless-runner/parameter"
	"github.com/lixenwraith/endless-runner/pickup"
	"github.com/lixenwraith/endless-runner/save"
	"github.com/lixenwraith/endless-runner/status"
	"github.com/lixenwraith/endless-runner/track"
)

// Options configures a Session; zero fields take defaults
type Options struct {
	Track   track.Config
	Speed   pickup.SpeedConfig
	Catalog *catalog.Catalog
	Source  track.Source

	Store save.Store
	Slot  string

	Clock    *engine.PausableClock
	Registry *status.Registry
	Logger   *log.Logger

	// OnMenu runs under the session lock after ResetAndGoToMenu; it must not call back into the session
	OnMenu func()
}

// View is a copy of session state for renderers and the network feed
type View struct {
	Segments  []track.Segment `json:"segments"`
	Cursor    float64         `json:"cursor"`
	InFlight  bool            `json:"inFlight"`
	Remaining float64         `json:"remaining"`
	Player    save.Vec3       `json:"player"`
	Speed     float64         `json:"speed"`
	Pickups   int             `json:"pickups"`
	Paused    bool            `json:"paused"`
	InMenu    bool            `json:"inMenu"`
	Ticks     uint64          `json:"ticks"`
	LastError string          `json:"lastError,omitempty"`
	Metrics   status.Snapshot `json:"metrics"`
}

// Session is the single writer of the generator and its collaborators
// Every method takes the session lock, so hosts may call from any goroutine
type Session struct {
	mu sync.Mutex

	gen     *track.Generator
	counter *pickup.Counter
	speed   *pickup.Speed
	runner  *Runner
	ctrl    *save.Controller

	clock  *engine.PausableClock
	reg    *status.Registry
	logger *log.Logger
	onMenu func()

	inMenu  bool
	ticks   uint64
	lastErr error

	statPickups *atomic.Int64
	statSaves   *atomic.Int64
	statPlayer  *status.AtomicFloat
	statSpeed   *status.AtomicFloat
	statPaused  *atomic.Bool
}

// NewSession builds a session over an empty track; call Load to restore or start a game
func NewSession(opts Options) (*Session, error) {
	if opts.Track == (track.Config{}) {
		opts.Track = track.DefaultConfig()
	}
	if opts.Speed == (pickup.SpeedConfig{}) {
		opts.Speed = pickup.DefaultSpeedConfig()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Store == nil {
		opts.Store = save.NewMemoryStore()
	}
	if opts.Slot == "" {
		opts.Slot = parameter.SaveSlot
	}
	if opts.Clock == nil {
		opts.Clock = engine.NewPausableClock(nil)
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	gen, err := track.New(opts.Track, opts.Catalog, opts.Source, opts.Registry)
	if err != nil {
		return nil, err
	}

	counter := pickup.NewCounter()
	runner := NewRunner()
	s := &Session{
		gen:     gen,
		counter: counter,
		speed:   pickup.NewSpeed(opts.Speed, counter),
		runner:  runner,
		ctrl:    save.NewController(opts.Store, opts.Slot, gen, runner, counter, opts.Logger),
		clock:   opts.Clock,
		reg:     opts.Registry,
		logger:  opts.Logger,
		onMenu:  opts.OnMenu,

		statPickups: opts.Registry.Ints.Get("session.pickups"),
		statSaves:   opts.Registry.Ints.Get("session.saves"),
		statPlayer:  opts.Registry.Floats.Get("session.player"),
		statSpeed:   opts.Registry.Floats.Get("session.speed"),
		statPaused:  opts.Registry.Bools.Get("session.paused"),
	}
	s.ctrl.OnMenu = s.enterMenu
	s.publish()
	return s, nil
}

// Step implements engine.Stepper
func (s *Session) Step(dt float64) {
	s.Tick(dt)
}

// Tick moves the runner and advances the generator by dt seconds
// Paused sessions and sessions parked in the menu do nothing
func (s *Session) Tick(dt float64) track.TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inMenu || s.clock.IsPaused() {
		return track.TickResult{}
	}

	speed := s.speed.Current()
	s.runner.Advance(dt, speed)
	res := s.gen.Tick(dt, s.runner.Forward(), speed)
	s.ticks++

	if res.Err != nil && !errors.Is(s.lastErr, res.Err) {
		s.logger.Printf("Spawn skipped: %v", res.Err)
	}
	s.lastErr = res.Err
	s.publish()
	return res
}

// Collect records one pickup and returns the new count
func (s *Session) Collect() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.counter.Collect()
	s.publish()
	return n
}

// Save writes the session to its slot
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctrl.Save(); err != nil {
		return err
	}
	s.statSaves.Add(1)
	return nil
}

// SaveBlocked reports whether Save is refusing writes after a failed Load
func (s *Session) SaveBlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.SaveBlocked()
}

// Load restores the slot or starts a new game, leaving the menu
func (s *Session) Load() (save.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.ctrl.Load()
	s.inMenu = false
	s.lastErr = nil
	s.publish()
	return res, err
}

// Restart wipes the slot and starts a new game with time running
func (s *Session) Restart() (save.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.ctrl.Restart()
	s.inMenu = false
	s.lastErr = nil
	s.clock.Resume()
	s.publish()
	return res, err
}

// ResetAndGoToMenu wipes the slot, clears the session and parks it in the menu with time running
// Load leaves the menu
func (s *Session) ResetAndGoToMenu() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ctrl.ResetAndGoToMenu()
	s.clock.Resume()
	s.publish()
	return err
}

// Pause freezes game time
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Pause()
	s.publish()
}

// Resume restarts game time
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Resume()
	s.publish()
}

// TogglePause flips pause state and reports whether the session is now paused
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.IsPaused() {
		s.clock.Resume()
	} else {
		s.clock.Pause()
	}
	s.publish()
	return s.clock.IsPaused()
}

// Snapshot copies the current state
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Segments:  s.gen.Export(),
		Cursor:    s.gen.Cursor(),
		InFlight:  s.gen.InFlight(),
		Remaining: s.gen.Remaining().Seconds(),
		Player:    s.runner.Position(),
		Speed:     s.speed.Current(),
		Pickups:   s.counter.Count(),
		Paused:    s.clock.IsPaused(),
		InMenu:    s.inMenu,
		Ticks:     s.ticks,
		Metrics:   s.reg.Snapshot(),
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v
}

// Catalog returns the template set the track draws from
func (s *Session) Catalog() *catalog.Catalog {
	return s.gen.Catalog()
}

// GameTime returns the session clock's game time
func (s *Session) GameTime() time.Time {
	return s.clock.Now()
}

func (s *Session) enterMenu() {
	s.inMenu = true
	s.lastErr = nil
	if s.onMenu != nil {
		s.onMenu()
	}
}

func (s *Session) publish() {
	s.statPickups.Store(int64(s.counter.Count()))
	s.statPlayer.Set(s.runner.Forward())
	s.statSpeed.Set(s.speed.Current())
	s.statPaused.Store(s.clock.IsPaused())
}
