package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/endless-runner/status"
)

// Stepper is advanced once per scheduler tick with the elapsed game time in seconds
type Stepper interface {
	Step(dt float64)
}

// StepperFunc adapts a function to Stepper
type StepperFunc func(dt float64)

// Step implements Stepper
func (f StepperFunc) Step(dt float64) { f(dt) }

// ClockScheduler drives a Stepper on a fixed interval measured in game time
// Paused time never reaches the stepper; a long stall is clamped to maxDelta
type ClockScheduler struct {
	clock    *PausableClock
	stepper  Stepper
	interval time.Duration
	maxDelta time.Duration

	mu       sync.Mutex
	lastTick time.Time

	tickCount atomic.Uint64
	statTicks *atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewClockScheduler creates a stopped scheduler
func NewClockScheduler(clock *PausableClock, stepper Stepper, interval, maxDelta time.Duration, reg *status.Registry) *ClockScheduler {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &ClockScheduler{
		clock:     clock,
		stepper:   stepper,
		interval:  interval,
		maxDelta:  maxDelta,
		lastTick:  clock.Now(),
		statTicks: reg.Ints.Get("engine.ticks"),
		stopChan:  make(chan struct{}),
	}
}

// Start begins ticking on a background goroutine
func (cs *ClockScheduler) Start() {
	if cs.running.CompareAndSwap(false, true) {
		cs.mu.Lock()
		cs.lastTick = cs.clock.Now()
		cs.mu.Unlock()

		cs.wg.Add(1)
		go cs.schedulerLoop()
	}
}

// Stop halts ticking and waits for the loop to exit; safe to call more than once
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		if cs.running.CompareAndSwap(true, false) {
			cs.wg.Wait()
		}
	})
}

// Tick measures game time since the previous tick and steps once
// Returns the delta handed to the stepper; paused clocks step nothing
func (cs *ClockScheduler) Tick() float64 {
	if cs.clock.IsPaused() {
		return 0
	}

	now := cs.clock.Now()
	cs.mu.Lock()
	delta := now.Sub(cs.lastTick)
	cs.lastTick = now
	cs.mu.Unlock()

	if delta < 0 {
		delta = 0
	}
	if cs.maxDelta > 0 && delta > cs.maxDelta {
		delta = cs.maxDelta
	}

	dt := delta.Seconds()
	cs.stepper.Step(dt)
	cs.statTicks.Store(int64(cs.tickCount.Add(1)))
	return dt
}

// TickCount returns the number of steps taken
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

func (cs *ClockScheduler) schedulerLoop() {
	defer cs.wg.Done()

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-ticker.C:
			cs.Tick()
		}
	}
}
