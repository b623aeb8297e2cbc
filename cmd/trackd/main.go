// Command trackd runs a headless track session and streams it over websocket
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/endless-runner/config"
	"github.com/lixenwraith/endless-runner/engine"
	"github.com/lixenwraith/endless-runner/game"
	"github.com/lixenwraith/endless-runner/network"
	"github.com/lixenwraith/endless-runner/parameter"
	"github.com/lixenwraith/endless-runner/save"
	"github.com/lixenwraith/endless-runner/service"
	"github.com/lixenwraith/endless-runner/status"
	"github.com/lixenwraith/endless-runner/track"
)

var (
	configFlag   = flag.String("config", "", "Path to a TOML config file")
	addrFlag     = flag.String("addr", "", "Listen address, overrides the config file")
	dbFlag       = flag.String("db", "", "Sqlite save database, overrides the config file")
	seedFlag     = flag.Uint64("seed", 0, "Template seed, overrides the config file (0 = keep)")
	autosaveFlag = flag.Duration("autosave", 30*time.Second, "Autosave interval, 0 disables")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.Save.Backend = config.BackendSQLite
	cfg.Save.Path = parameter.SaveDatabase
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *addrFlag != "" {
		cfg.Network.Address = *addrFlag
	}
	if *dbFlag != "" {
		cfg.Save.Backend = config.BackendSQLite
		cfg.Save.Path = *dbFlag
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Default()); err != nil {
		log.Fatalf("trackd: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	store, closeStore, err := cfg.Save.OpenStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()
	return serve(ctx, cfg, store, logger)
}

// serve runs the session against store until ctx ends, then saves unless the initial load failed
func serve(ctx context.Context, cfg config.Config, store save.Store, logger *log.Logger) error {
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return err
	}

	reg := status.NewRegistry()
	clock := engine.NewPausableClock(nil)
	session, err := game.NewSession(game.Options{
		Track:    cfg.Track,
		Speed:    cfg.Player,
		Catalog:  cat,
		Source:   track.NewSource(cfg.Seed),
		Store:    store,
		Slot:     cfg.Save.Slot,
		Clock:    clock,
		Registry: reg,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	res, err := session.Load()
	switch {
	case err != nil:
		logger.Printf("Load failed, running without saves: %v", err)
	case res.NewGame:
		logger.Printf("Started new game in slot %q", cfg.Save.Slot)
	default:
		logger.Printf("Restored slot %q (%d stale segments skipped)", cfg.Save.Slot, res.Dropped)
	}

	scheduler := engine.NewClockScheduler(clock, session, cfg.Engine.TickInterval, cfg.Engine.MaxDelta, reg)

	netCfg := network.DefaultConfig()
	netCfg.Address = cfg.Network.Address
	netCfg.BroadcastInterval = cfg.Network.BroadcastInterval
	netCfg.MaxSubscribers = cfg.Network.MaxSubscribers

	hub := network.NewHub(netCfg, logger, reg)
	handler := network.NewHandler(hub, session, network.HandlerConfig{Logger: logger})
	feed := network.NewFeed(hub, session, netCfg.BroadcastInterval, logger)
	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()

	srv := &http.Server{
		Handler:           network.NewMux(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)

	services := service.NewHub(logger)
	for _, svc := range []service.Service{
		&service.Func{
			ID:      "scheduler",
			OnStart: func() error { scheduler.Start(); return nil },
			OnStop:  func() error { scheduler.Stop(); return nil },
		},
		&service.Func{
			ID:       "feed",
			Requires: []string{"scheduler"},
			OnStart:  func() error { go feed.Run(feedCtx); return nil },
			OnStop:   func() error { stopFeed(); hub.Close(); return nil },
		},
		&service.Func{
			ID:       "http",
			Requires: []string{"feed"},
			OnStart: func() error {
				ln, err := net.Listen("tcp", netCfg.Address)
				if err != nil {
					return err
				}
				logger.Printf("Serving feed on %s", ln.Addr())
				go func() { serveErr <- srv.Serve(ln) }()
				return nil
			},
			OnStop: func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			},
		},
	} {
		if err := services.Register(svc); err != nil {
			return err
		}
	}
	if err := services.StartAll(); err != nil {
		return err
	}
	defer services.StopAll()

	var autosave <-chan time.Time
	if *autosaveFlag > 0 {
		ticker := time.NewTicker(*autosaveFlag)
		defer ticker.Stop()
		autosave = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Printf("Shutting down")
			if err := services.StopAll(); err != nil {
				logger.Printf("Shutdown incomplete: %v", err)
			}
			if session.SaveBlocked() {
				logger.Printf("Skipping exit save, slot %q was never loaded", cfg.Save.Slot)
				return nil
			}
			return session.Save()

		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-autosave:
			if session.SaveBlocked() {
				continue
			}
			if err := session.Save(); err != nil {
				logger.Printf("Autosave failed: %v", err)
			}
		}
	}
}
