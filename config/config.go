// Package config loads host configuration from TOML over built-in defaults
package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/endless-runner/catalog"
	"github.com/lixenwraith/endless-runner/parameter"
	"github.com/lixenwraith/endless-runner/pickup"
	"github.com/lixenwraith/endless-runner/save"
	"github.com/lixenwraith/endless-runner/track"
)

// ErrInvalid wraps every configuration error
var ErrInvalid = errors.New("invalid configuration")

// Save backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var backends = []string{BackendMemory, BackendFile, BackendSQLite}

// Config is the root of a host configuration file
type Config struct {
	// Seed for template selection, 0 seeds from the clock
	Seed uint64 `toml:"seed"`

	Track  track.Config       `toml:"track"`
	Player pickup.SpeedConfig `toml:"player"`

	// Catalog replaces the built-in templates when non-empty
	Catalog []catalog.Template `toml:"catalog"`

	Save    SaveConfig    `toml:"save"`
	Network NetworkConfig `toml:"network"`
	Engine  EngineConfig  `toml:"engine"`
}

// SaveConfig selects and locates the save store
type SaveConfig struct {
	Backend string `toml:"backend"`
	// Path is a directory for the file backend and a database file for sqlite
	Path string `toml:"path"`
	Slot string `toml:"slot"`
}

// NetworkConfig configures the snapshot feed
type NetworkConfig struct {
	Address           string        `toml:"address"`
	BroadcastInterval time.Duration `toml:"broadcast_interval"`
	MaxSubscribers    int           `toml:"max_subscribers"`
}

// EngineConfig configures the host loop
type EngineConfig struct {
	TickInterval time.Duration `toml:"tick_interval"`
	MaxDelta     time.Duration `toml:"max_delta"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Track:  track.DefaultConfig(),
		Player: pickup.DefaultSpeedConfig(),
		Save: SaveConfig{
			Backend: BackendFile,
			Path:    parameter.SaveDir,
			Slot:    parameter.SaveSlot,
		},
		Network: NetworkConfig{
			Address:           parameter.ListenAddress,
			BroadcastInterval: parameter.BroadcastInterval,
			MaxSubscribers:    parameter.MaxSubscribers,
		},
		Engine: EngineConfig{
			TickInterval: parameter.GameUpdateInterval,
			MaxDelta:     parameter.MaxDeltaTime,
		},
	}
}

// Load reads a TOML file over Default and validates the result
// Keys the file sets that no field takes are an error
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(filepath.Clean(path), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting
func (c Config) Validate() error {
	if err := c.Track.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Player.BaseSpeed < 0 || c.Player.Multiplier <= 0 || c.Player.MaxSpeed < 0 {
		return fmt.Errorf("%w: player speed curve must be non-negative with a positive multiplier", ErrInvalid)
	}
	if _, err := catalog.New(c.Catalog...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !slices.Contains(backends, c.Save.Backend) {
		return fmt.Errorf("%w: save backend %q not one of %v", ErrInvalid, c.Save.Backend, backends)
	}
	if c.Save.Backend != BackendMemory && c.Save.Path == "" {
		return fmt.Errorf("%w: save path required for %s backend", ErrInvalid, c.Save.Backend)
	}
	if c.Save.Slot == "" {
		return fmt.Errorf("%w: save slot required", ErrInvalid)
	}
	if c.Engine.TickInterval <= 0 || c.Engine.MaxDelta <= 0 {
		return fmt.Errorf("%w: engine intervals must be positive", ErrInvalid)
	}
	if c.Network.BroadcastInterval <= 0 || c.Network.MaxSubscribers <= 0 {
		return fmt.Errorf("%w: network broadcast interval and subscriber limit must be positive", ErrInvalid)
	}
	return nil
}

// BuildCatalog returns the configured catalog, or the built-in one when none is configured
func (c Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.Catalog...)
}

// OpenStore opens the configured save backend
// The returned close function is never nil
func (c SaveConfig) OpenStore(logger *log.Logger) (save.Store, func() error, error) {
	noop := func() error { return nil }
	switch c.Backend {
	case BackendMemory:
		return save.NewMemoryStore(), noop, nil
	case BackendFile:
		return save.NewFileStore(c.Path), noop, nil
	case BackendSQLite:
		st, err := save.OpenSQLite(c.Path, logger)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: save backend %q", ErrInvalid, c.Backend)
	}
}
