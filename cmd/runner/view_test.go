package main

import (
	"io"
	"log"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/endless-runner/game"
	"github.com/lixenwraith/endless-runner/save"
	"github.com/lixenwraith/endless-runner/track"
)

func newTestHost(t *testing.T) (*host, *save.MemoryStore) {
	t.Helper()
	log.SetOutput(io.Discard)

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	store := save.NewMemoryStore()
	session, err := game.NewSession(game.Options{
		Store:  store,
		Source: track.NewSource(1),
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if _, err := session.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return newHost(screen, session, 50), store
}

func TestHandleKey_Commands(t *testing.T) {
	h, store := newTestHost(t)

	h.handleKey(tcell.KeyRune, ' ')
	h.handleKey(tcell.KeyRune, ' ')
	if got := h.session.Snapshot().Pickups; got != 2 {
		t.Fatalf("Expected 2 pickups, got %d", got)
	}

	h.handleKey(tcell.KeyRune, 's')
	rec, err := store.Load("saveData")
	if err != nil || rec.PickupCount != 2 {
		t.Fatalf("Expected saved pickups, got %+v, %v", rec, err)
	}

	h.handleKey(tcell.KeyRune, 'p')
	if !h.session.Snapshot().Paused {
		t.Errorf("Expected p to pause")
	}
	h.handleKey(tcell.KeyEscape, 0)
	if h.session.Snapshot().Paused {
		t.Errorf("Expected esc to resume")
	}

	h.handleKey(tcell.KeyRune, 'r')
	if got := h.session.Snapshot().Pickups; got != 0 {
		t.Errorf("Expected restart to clear pickups, got %d", got)
	}
}

func TestHandleKey_MenuFlow(t *testing.T) {
	h, store := newTestHost(t)

	h.handleKey(tcell.KeyRune, 'm')
	if !h.session.Snapshot().InMenu {
		t.Fatalf("Expected m to open the menu")
	}
	if ok, _ := store.Exists("saveData"); ok {
		t.Errorf("Expected slot deleted on menu reset")
	}

	h.handleKey(tcell.KeyRune, ' ')
	if h.session.Snapshot().InMenu || h.session.Snapshot().Pickups != 0 {
		t.Errorf("Expected space in the menu to start a game, not collect")
	}
	if ok, _ := store.Exists("saveData"); !ok {
		t.Errorf("Expected new game baseline saved")
	}
}

func TestHandleKey_Quit(t *testing.T) {
	h, _ := newTestHost(t)

	if h.handleKey(tcell.KeyRune, 'x') != true {
		t.Errorf("Expected unbound key to keep running")
	}
	if h.handleKey(tcell.KeyRune, 'q') {
		t.Errorf("Expected q to quit")
	}
	if h.handleKey(tcell.KeyCtrlC, 0) {
		t.Errorf("Expected ctrl-c to quit")
	}
}

func TestDraw_TrackAndPlayer(t *testing.T) {
	h, _ := newTestHost(t)
	h.session.Tick(0.1)
	h.draw()

	lane := h.height / 2
	if r, _, _, _ := h.screen.GetContent(playerColumn, lane-1); r != '@' {
		t.Errorf("Expected player glyph above the lane, got %q", r)
	}

	// First segment sits at 50 with the runner at 1
	col := playerColumn + int((50-1)/unitsPerCell)
	if r, _, _, _ := h.screen.GetContent(col, lane); r == ' ' || r == 0 {
		t.Errorf("Expected segment glyph at column %d", col)
	}
}
