package save

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "runner.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, openTestSQLite(t))
}

func TestSQLiteStore_MigrationsApplied(t *testing.T) {
	s := openTestSQLite(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Running again is a no-op
	require.NoError(t, s.MigrateUp())
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.db")
	logger := log.New(io.Discard, "", 0)

	s, err := OpenSQLite(path, logger)
	require.NoError(t, err)
	require.NoError(t, s.Save("saveData", sampleRecord()))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, logger)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load("saveData")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), got)
}

func TestSQLiteStore_MissingSegmentRowsIsCorrupt(t *testing.T) {
	s := openTestSQLite(t)
	require.NoError(t, s.Save("saveData", sampleRecord()))

	_, err := s.db.Exec(`DELETE FROM save_segments WHERE slot = ? AND seq = 2`, "saveData")
	require.NoError(t, err)

	_, err = s.Load("saveData")
	assert.True(t, errors.Is(err, ErrCorrupt), "expected ErrCorrupt, got %v", err)
}

func TestSQLiteStore_MemoryDatabase(t *testing.T) {
	s, err := OpenSQLite(":memory:", log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("saveData", sampleRecord()))
	ok, err := s.Exists("saveData")
	require.NoError(t, err)
	assert.True(t, ok)
}
