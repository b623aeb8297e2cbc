package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/endless-runner/game"
)

const (
	playerColumn  = 6
	unitsPerCell  = 5.0
	statusTimeout = 2 * time.Second
)

var templateColors = []tcell.Color{
	tcell.ColorGreen,
	tcell.ColorBlue,
	tcell.ColorYellow,
	tcell.ColorPurple,
	tcell.ColorTeal,
	tcell.ColorOlive,
}

// host draws a session on a terminal and maps keys to session commands
type host struct {
	screen        tcell.Screen
	session       *game.Session
	stride        float64
	width, height int

	status     string
	statusTime time.Time
}

func newHost(screen tcell.Screen, session *game.Session, stride float64) *host {
	h := &host{
		screen:  screen,
		session: session,
		stride:  stride,
	}
	h.width, h.height = screen.Size()
	return h
}

func (h *host) setStatus(format string, args ...any) {
	h.status = fmt.Sprintf(format, args...)
	h.statusTime = time.Now()
	log.Print(h.status)
}

// handleEvent returns false when the host should exit
func (h *host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		h.width, h.height = h.screen.Size()
		h.screen.Sync()
	}
	return true
}

// handleKey returns false when the host should exit
func (h *host) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		h.togglePause()
		return true
	case tcell.KeyEnter:
		if h.session.Snapshot().InMenu {
			h.start()
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case 'q':
		return false
	case 'p':
		h.togglePause()
	case ' ':
		if h.session.Snapshot().InMenu {
			h.start()
			return true
		}
		h.setStatus("pickup %d", h.session.Collect())
	case 's':
		if err := h.session.Save(); err != nil {
			h.setStatus("save failed: %v", err)
		} else {
			h.setStatus("saved")
		}
	case 'r':
		if _, err := h.session.Restart(); err != nil {
			h.setStatus("restart failed: %v", err)
		} else {
			h.setStatus("restarted")
		}
	case 'm':
		if err := h.session.ResetAndGoToMenu(); err != nil {
			h.setStatus("reset failed: %v", err)
		}
	}
	return true
}

func (h *host) togglePause() {
	if h.session.TogglePause() {
		h.setStatus("paused")
	} else {
		h.setStatus("resumed")
	}
}

func (h *host) start() {
	res, err := h.session.Load()
	switch {
	case err != nil:
		h.setStatus("load failed, playing unsaved: %v", err)
	case res.NewGame:
		h.setStatus("new game")
	default:
		h.setStatus("game restored")
	}
}

func (h *host) draw() {
	h.screen.Clear()
	v := h.session.Snapshot()

	if v.InMenu {
		h.drawText(2, h.height/2-1, tcell.StyleDefault.Bold(true), "ENDLESS RUNNER")
		h.drawText(2, h.height/2+1, tcell.StyleDefault, "enter: play   q: quit")
	} else {
		h.drawTrack(v)
		h.drawHUD(v)
	}

	if h.status != "" && time.Since(h.statusTime) < statusTimeout {
		h.drawText(0, h.height-1, tcell.StyleDefault.Reverse(true), h.status)
	}
	h.screen.Show()
}

func (h *host) drawTrack(v game.View) {
	lane := h.height / 2
	cat := h.session.Catalog()
	cells := int(h.stride / unitsPerCell)
	if cells < 1 {
		cells = 1
	}

	for _, seg := range v.Segments {
		start := playerColumn + int((seg.Position-v.Player.Z)/unitsPerCell)
		glyph := '#'
		if tpl, ok := cat.Template(seg.TemplateIndex); ok && tpl.Name != "" {
			glyph = []rune(tpl.Name)[0]
		}
		style := tcell.StyleDefault.Foreground(templateColors[seg.TemplateIndex%len(templateColors)])
		for x := start; x < start+cells; x++ {
			if x >= 0 && x < h.width {
				h.screen.SetContent(x, lane, glyph, nil, style)
				h.screen.SetContent(x, lane+1, '─', nil, style)
			}
		}
	}

	h.screen.SetContent(playerColumn, lane-1, '@', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
}

func (h *host) drawHUD(v game.View) {
	hud := fmt.Sprintf("dist %.0f  speed %.1f  pickups %d  live %d  next %.0f",
		v.Player.Z, v.Speed, v.Pickups, len(v.Segments), v.Cursor)
	if v.InFlight {
		hud += fmt.Sprintf("  spawn in %.1fs", v.Remaining)
	}
	h.drawText(0, 0, tcell.StyleDefault, hud)

	if v.Paused {
		h.drawText(0, 1, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true), "PAUSED  p/esc: resume  s: save  r: restart  m: menu")
	} else if v.LastError != "" {
		h.drawText(0, 1, tcell.StyleDefault.Foreground(tcell.ColorRed), v.LastError)
	}
}

func (h *host) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= h.width {
			return
		}
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// run polls input and redraws every frame until quit
func (h *host) run(frameInterval time.Duration) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !h.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			h.draw()
		}
	}
}
