package shortterm

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists one UserMemory per user as an indented JSON file under
// dir. It is the sole write path for short-term state.
type FileStore struct {
	dir string

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewFileStore creates the memories directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memories dir: %w", err)
	}
	return &FileStore{
		dir:   dir,
		users: make(map[string]*sync.Mutex),
	}, nil
}

// Acquire locks the per-user scope and returns its release func. Callers
// must hold the scope across a whole load-append-save sequence so
// overlapping messages from the same user cannot lose updates. Different
// users never contend.
func (s *FileStore) Acquire(userID string) (release func()) {
	s.mu.Lock()
	um, ok := s.users[userID]
	if !ok {
		um = &sync.Mutex{}
		s.users[userID] = um
	}
	s.mu.Unlock()

	um.Lock()
	return um.Unlock
}

// Load returns the persisted record for userID, or a fresh default when no
// record exists or the persisted one is unreadable. It never fails:
// corruption trades historical continuity for availability.
func (s *FileStore) Load(userID string) *UserMemory {
	raw, err := os.ReadFile(s.path(userID))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[shortterm] read %s failed, starting fresh: %v", userID, err)
		}
		return NewUserMemory(userID)
	}

	var mem UserMemory
	if err := json.Unmarshal(raw, &mem); err != nil {
		log.Printf("[shortterm] corrupt record for %s, starting fresh: %v", userID, err)
		return NewUserMemory(userID)
	}
	if mem.UserID == "" {
		mem.UserID = userID
	}
	if mem.History == nil {
		mem.History = []Turn{}
	}
	return &mem
}

// Save rewrites the full record. The write goes through a temp file and a
// rename so readers never observe a partially written record.
func (s *FileStore) Save(mem *UserMemory) error {
	raw, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory for %s: %w", mem.UserID, err)
	}

	path := s.path(mem.UserID)
	tmp, err := os.CreateTemp(s.dir, mem.UserID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write memory for %s: %w", mem.UserID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp memory file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist memory for %s: %w", mem.UserID, err)
	}
	return nil
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, userID+".json")
}
