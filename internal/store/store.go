// Package store persists the last paired peer address across power
// cycles. The node holds at most one remembered peer; Save overwrites.
package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/radio-control/indicator/internal/link"
)

// PeerStore is the persistence port consumed by the node core.
type PeerStore interface {
	// Load returns the remembered peer address, if any.
	Load() (link.Addr, bool)

	// Save remembers addr, replacing any previous one.
	Save(addr link.Addr) error
}

// FileStore keeps the address as a single text line in a state file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path. The file
// is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements PeerStore. A missing or unparseable file reads as "no
// remembered peer".
func (s *FileStore) Load() (link.Addr, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return link.Addr{}, false
	}
	addr, err := link.ParseAddr(strings.TrimSpace(string(data)))
	if err != nil || addr.IsZero() {
		return link.Addr{}, false
	}
	return addr, true
}

// Save implements PeerStore.
func (s *FileStore) Save(addr link.Addr) error {
	if err := os.WriteFile(s.path, []byte(addr.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("save peer address: %w", err)
	}
	return nil
}

// MemStore is an in-memory PeerStore for tests.
type MemStore struct {
	addr link.Addr
	ok   bool
}

// Load implements PeerStore.
func (s *MemStore) Load() (link.Addr, bool) {
	return s.addr, s.ok
}

// Save implements PeerStore.
func (s *MemStore) Save(addr link.Addr) error {
	s.addr, s.ok = addr, true
	return nil
}

var (
	_ PeerStore = (*FileStore)(nil)
	_ PeerStore = (*MemStore)(nil)
)
