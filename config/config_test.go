package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/endless-runner/save"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runner.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 50.0, cfg.Track.Stride)
	assert.Equal(t, 2300*time.Millisecond, cfg.Track.BaseDelay)
	assert.Equal(t, BackendFile, cfg.Save.Backend)
	assert.Equal(t, "saveData", cfg.Save.Slot)

	cat, err := cfg.BuildCatalog()
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
seed = 7

[track]
stride = 25.0
base_delay = "1.5s"

[player]
pickup_multiplier = 1.1

[save]
backend = "sqlite"
path = "runner.db"

[engine]
tick_interval = "10ms"

[[catalog]]
name = "ramp"
tags = ["air"]

[[catalog]]
name = "tunnel"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 25.0, cfg.Track.Stride)
	assert.Equal(t, 1500*time.Millisecond, cfg.Track.BaseDelay)
	assert.Equal(t, time.Second, cfg.Track.FastDelay, "unset keys keep defaults")
	assert.Equal(t, 1.1, cfg.Player.Multiplier)
	assert.Equal(t, 10.0, cfg.Player.BaseSpeed)
	assert.Equal(t, BackendSQLite, cfg.Save.Backend)
	assert.Equal(t, "saveData", cfg.Save.Slot)
	assert.Equal(t, 10*time.Millisecond, cfg.Engine.TickInterval)

	cat, err := cfg.BuildCatalog()
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())
	idx, ok := cat.Index("tunnel")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown key", "bogus = 1\n"},
		{"unknown backend", "[save]\nbackend = \"redis\"\n"},
		{"zero stride", "[track]\nstride = 0.0\n"},
		{"negative delay", "[track]\nfast_delay = \"-1s\"\n"},
		{"duplicate template", "[[catalog]]\nname = \"a\"\n[[catalog]]\nname = \"a\"\n"},
		{"zero multiplier", "[player]\npickup_multiplier = 0.0\n"},
		{"missing sqlite path", "[save]\nbackend = \"sqlite\"\npath = \"\"\n"},
		{"zero tick", "[engine]\ntick_interval = \"0s\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "[track\nstride = "))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	rec := save.Record{PickupCount: 4}

	for _, sc := range []SaveConfig{
		{Backend: BackendMemory, Slot: "s"},
		{Backend: BackendFile, Path: filepath.Join(dir, "saves"), Slot: "s"},
		{Backend: BackendSQLite, Path: filepath.Join(dir, "runner.db"), Slot: "s"},
	} {
		t.Run(sc.Backend, func(t *testing.T) {
			store, closeFn, err := sc.OpenStore(nil)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			require.NoError(t, store.Save(sc.Slot, rec))
			got, err := store.Load(sc.Slot)
			require.NoError(t, err)
			assert.Equal(t, 4, got.PickupCount)
		})
	}

	_, closeFn, err := SaveConfig{Backend: "tape"}.OpenStore(nil)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NotNil(t, closeFn)
}
