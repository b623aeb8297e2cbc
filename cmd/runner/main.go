// Command runner plays the endless track in a terminal
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/endless-runner/config"
	"github.com/lixenwraith/endless-runner/engine"
	"github.com/lixenwraith/endless-runner/game"
	"github.com/lixenwraith/endless-runner/parameter"
	"github.com/lixenwraith/endless-runner/status"
	"github.com/lixenwraith/endless-runner/track"
)

var (
	configFlag = flag.String("config", "", "Path to a TOML config file")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/runner.log")
	seedFlag   = flag.Uint64("seed", 0, "Template seed, overrides the config file (0 = keep)")
	slotFlag   = flag.String("slot", "", "Save slot, overrides the config file")
)

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}
	if *slotFlag != "" {
		cfg.Save.Slot = *slotFlag
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "runner: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return err
	}
	store, closeStore, err := cfg.Save.OpenStore(log.Default())
	if err != nil {
		return err
	}
	defer closeStore()

	clock := engine.NewPausableClock(nil)
	session, err := game.NewSession(game.Options{
		Track:    cfg.Track,
		Speed:    cfg.Player,
		Catalog:  cat,
		Source:   track.NewSource(cfg.Seed),
		Store:    store,
		Slot:     cfg.Save.Slot,
		Clock:    clock,
		Registry: status.NewRegistry(),
		Logger:   log.Default(),
	})
	if err != nil {
		return err
	}
	if _, err := session.Load(); err != nil {
		log.Printf("Load failed, playing without saves: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	// Restore the terminal before the crash report reaches stderr
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mRUNNER CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	scheduler := engine.NewClockScheduler(clock, session, cfg.Engine.TickInterval, cfg.Engine.MaxDelta, nil)
	scheduler.Start()
	defer scheduler.Stop()

	newHost(screen, session, cfg.Track.Stride).run(parameter.FrameUpdateInterval)

	if session.Snapshot().InMenu || session.SaveBlocked() {
		return nil
	}
	return session.Save()
}
