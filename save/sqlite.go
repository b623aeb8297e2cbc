package save

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps slots in a sqlite database: one save_slots row per slot plus its
// save_segments rows in spawn order
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens (or creates) the database at path and applies pending migrations
// A nil logger uses log.Default()
func OpenSQLite(path string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations; being at the latest version is not an error
func (s *SQLiteStore) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it closes the shared *sql.DB

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied schema version, 0 when none
func (s *SQLiteStore) MigrateVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *SQLiteStore) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{logger: s.logger}
	return m, nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the slot's record in one transaction
func (s *SQLiteStore) Save(slot string, rec Record) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM save_segments WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	p := rec.PlayerPosition
	_, err = tx.Exec(`
		INSERT INTO save_slots (slot, player_x, player_y, player_z, pickup_count, segment_count, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			player_x = excluded.player_x,
			player_y = excluded.player_y,
			player_z = excluded.player_z,
			pickup_count = excluded.pickup_count,
			segment_count = excluded.segment_count,
			saved_at = excluded.saved_at
	`, slot, p.X, p.Y, p.Z, rec.PickupCount, len(rec.Segments), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}

	if len(rec.Segments) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO save_segments (slot, seq, template_index, pos_x, pos_y, pos_z)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, seg := range rec.Segments {
			if !finiteVec(seg.Position) {
				return fmt.Errorf("%w: segment %d position not finite", ErrCorrupt, i)
			}
			if _, err := stmt.Exec(slot, i, seg.TemplateIndex, seg.Position.X, seg.Position.Y, seg.Position.Z); err != nil {
				return fmt.Errorf("write segment %d: %w", i, err)
			}
		}
	}

	return tx.Commit()
}

// Load implements Store
// A slot whose stored segment count disagrees with its rows is reported as ErrCorrupt
func (s *SQLiteStore) Load(slot string) (Record, error) {
	var rec Record
	if err := validSlot(slot); err != nil {
		return rec, err
	}

	var count int
	err := s.db.QueryRow(`
		SELECT player_x, player_y, player_z, pickup_count, segment_count
		FROM save_slots WHERE slot = ?
	`, slot).Scan(&rec.PlayerPosition.X, &rec.PlayerPosition.Y, &rec.PlayerPosition.Z, &rec.PickupCount, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: slot %q: %v", ErrCorrupt, slot, err)
	}

	rows, err := s.db.Query(`
		SELECT template_index, pos_x, pos_y, pos_z
		FROM save_segments WHERE slot = ? ORDER BY seq
	`, slot)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var seg SegmentRecord
		if err := rows.Scan(&seg.TemplateIndex, &seg.Position.X, &seg.Position.Y, &seg.Position.Z); err != nil {
			return Record{}, fmt.Errorf("%w: slot %q: %v", ErrCorrupt, slot, err)
		}
		rec.Segments = append(rec.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}

	if len(rec.Segments) != count {
		return Record{}, fmt.Errorf("%w: slot %q: expected %d segments, found %d", ErrCorrupt, slot, count, len(rec.Segments))
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete implements Store
func (s *SQLiteStore) Delete(slot string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM save_segments WHERE slot = ?`, slot); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
		return err
	}
	return tx.Commit()
}

// Exists implements Store
func (s *SQLiteStore) Exists(slot string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM save_slots WHERE slot = ?`, slot).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// migrateLogger adapts log.Logger to migrate.Logger
type migrateLogger struct {
	logger *log.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
