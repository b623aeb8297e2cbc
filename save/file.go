package save

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileStore keeps one TOML file per slot under a base directory
type FileStore struct {
	basePath string
}

// NewFileStore creates a store rooted at basePath; the directory is created on first Save
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// FilePath returns the file backing slot
func (s *FileStore) FilePath(slot string) string {
	return filepath.Join(s.basePath, slot+".toml")
}

// Exists implements Store
func (s *FileStore) Exists(slot string) (bool, error) {
	if err := validSlot(slot); err != nil {
		return false, err
	}
	_, err := os.Stat(s.FilePath(slot))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Save writes the record through a temp file and rename so a crash never leaves half a save
func (s *FileStore) Save(slot string, rec Record) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode slot %q: %w", slot, err)
	}

	tmp, err := os.CreateTemp(s.basePath, slot+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.FilePath(slot))
}

// Load implements Store
func (s *FileStore) Load(slot string) (Record, error) {
	var rec Record
	if err := validSlot(slot); err != nil {
		return rec, err
	}

	data, err := os.ReadFile(s.FilePath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}

	md, err := toml.Decode(string(data), &rec)
	if err != nil {
		return Record{}, fmt.Errorf("%w: slot %q: %v", ErrCorrupt, slot, err)
	}
	// A truncated file can still parse; the scalar header must be present
	if !md.IsDefined("pickup_count") || !md.IsDefined("player_position") {
		return Record{}, fmt.Errorf("%w: slot %q: missing header fields", ErrCorrupt, slot)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete implements Store
func (s *FileStore) Delete(slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	err := os.Remove(s.FilePath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
