package save

import (
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/endless-runner/pickup"
	"github.com/lixenwraith/endless-runner/track"
)

// Track is the generator surface the controller drives
type Track interface {
	Reset(saved []track.Segment) (dropped int)
	Export() []track.Segment
}

// Player is the externally owned player position
type Player interface {
	Position() Vec3
	SetPosition(Vec3)
}

// LoadResult describes how Load rebuilt the session
type LoadResult struct {
	// NewGame is set when no usable record existed and a baseline was written
	NewGame bool

	// Dropped counts stored segments Reset skipped, e.g. after the catalog shrank
	Dropped int

	// Recovered holds the load failure a new game replaced, nil otherwise
	Recovered error
}

// Controller moves session state between the live objects and a Store slot
type Controller struct {
	store   Store
	slot    string
	track   Track
	player  Player
	counter *pickup.Counter
	logger  *log.Logger

	// loadErr holds the store failure of the last Load while Save is blocked
	loadErr error

	// OnMenu is called by ResetAndGoToMenu after state is cleared
	OnMenu func()
}

// NewController wires a controller; a nil logger uses log.Default()
func NewController(store Store, slot string, tr Track, player Player, counter *pickup.Counter, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store:   store,
		slot:    slot,
		track:   tr,
		player:  player,
		counter: counter,
		logger:  logger,
	}
}

// Slot returns the slot name records are kept under
func (c *Controller) Slot() string {
	return c.slot
}

// SaveBlocked reports whether Save is refusing writes after a failed Load
func (c *Controller) SaveBlocked() bool {
	return c.loadErr != nil
}

// Save writes the current track, player position and pickup count
// It returns ErrSaveBlocked while the last Load failed with a store error
func (c *Controller) Save() error {
	if c.loadErr != nil {
		return fmt.Errorf("save slot %q: %w: %w", c.slot, ErrSaveBlocked, c.loadErr)
	}
	rec := Record{
		PlayerPosition: c.player.Position(),
		PickupCount:    c.counter.Count(),
		Segments:       SegmentsFromTrack(c.track.Export()),
	}
	if err := c.store.Save(c.slot, rec); err != nil {
		return fmt.Errorf("save slot %q: %w", c.slot, err)
	}
	c.logger.Printf("Game saved to slot %q (%d segments)", c.slot, len(rec.Segments))
	return nil
}

// Load restores the slot, or starts and saves a new game when there is nothing usable
// A corrupt record is replaced by a new game and reported in LoadResult.Recovered
// Any other store failure resets to a fresh game, blocks Save and is returned
func (c *Controller) Load() (LoadResult, error) {
	rec, err := c.store.Load(c.slot)
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
		c.loadErr = nil
	}
	switch {
	case err == nil:
		c.player.SetPosition(rec.PlayerPosition)
		c.counter.Set(rec.PickupCount)
		dropped := c.track.Reset(rec.TrackSegments())
		if dropped > 0 {
			c.logger.Printf("Skipped %d stored segments no longer in the catalog", dropped)
		}
		c.logger.Printf("Game loaded from slot %q", c.slot)
		return LoadResult{Dropped: dropped}, nil

	case errors.Is(err, ErrNotFound):
		c.logger.Printf("No save data found in slot %q. Creating a new game.", c.slot)
		return c.newGame(nil)

	case errors.Is(err, ErrCorrupt):
		c.logger.Printf("Save data in slot %q unreadable, starting a new game: %v", c.slot, err)
		return c.newGame(err)

	default:
		c.resetState()
		c.loadErr = err
		c.logger.Printf("Load of slot %q failed, saving disabled until a load succeeds: %v", c.slot, err)
		return LoadResult{NewGame: true, Recovered: err}, fmt.Errorf("load slot %q: %w", c.slot, err)
	}
}

// Restart deletes the slot, zeroes pickups and takes the new-game path
func (c *Controller) Restart() (LoadResult, error) {
	if err := c.store.Delete(c.slot); err != nil {
		return LoadResult{}, fmt.Errorf("delete slot %q: %w", c.slot, err)
	}
	c.logger.Printf("Save data deleted for restart.")
	c.counter.Reset()
	return c.Load()
}

// ResetAndGoToMenu deletes the slot, clears the session and hands off to OnMenu
// No baseline is written; the next Load starts a new game
func (c *Controller) ResetAndGoToMenu() error {
	if err := c.store.Delete(c.slot); err != nil {
		return fmt.Errorf("delete slot %q: %w", c.slot, err)
	}
	c.logger.Printf("Save data deleted.")
	c.loadErr = nil
	c.resetState()
	if c.OnMenu != nil {
		c.OnMenu()
	}
	return nil
}

func (c *Controller) newGame(recovered error) (LoadResult, error) {
	c.resetState()
	res := LoadResult{NewGame: true, Recovered: recovered}
	if err := c.Save(); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Controller) resetState() {
	c.track.Reset(nil)
	c.player.SetPosition(Vec3{})
	c.counter.Reset()
}
