package save

import (
	"fmt"
	"strings"
	"sync"
)

// Store keeps records by slot name
type Store interface {
	// Load returns ErrNotFound for an empty slot and wraps ErrCorrupt for undecodable data
	Load(slot string) (Record, error)
	Save(slot string, rec Record) error
	// Delete of an empty slot is not an error
	Delete(slot string) error
	Exists(slot string) (bool, error)
}

// validSlot keeps slot names usable as file names and keys
func validSlot(slot string) error {
	if slot == "" || strings.ContainsAny(slot, `/\:`) || slot == "." || slot == ".." {
		return fmt.Errorf("invalid save slot %q", slot)
	}
	return nil
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]Record
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]Record)}
}

// Load implements Store
func (m *MemoryStore) Load(slot string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.slots[slot]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

// Save implements Store
func (m *MemoryStore) Save(slot string, rec Record) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = rec.clone()
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}

// Exists implements Store
func (m *MemoryStore) Exists(slot string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.slots[slot]
	return ok, nil
}
