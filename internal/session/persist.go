package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"betpanel-client/internal/models"
)

// Snapshot is the durable part of a session: the opaque token and the cached
// profile. Both keys live together; a snapshot with a token and no user is
// still loadable (the profile is refreshed on hydrate).
type Snapshot struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

// Persistence stores the session snapshot between runs. Load returns
// (nil, nil) when nothing is stored.
type Persistence interface {
	Load() (*Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// FilePersistence keeps the snapshot in a single JSON file, created 0600.
type FilePersistence struct {
	path string
}

func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

func (p *FilePersistence) Load() (*Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt snapshot is treated as absent, not fatal.
		return nil, nil
	}
	if snap.Token == "" {
		return nil, nil
	}
	return &snap, nil
}

func (p *FilePersistence) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o600)
}

func (p *FilePersistence) Clear() error {
	err := os.Remove(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryPersistence holds the snapshot in memory only. Used by tests and by
// callers that do not want sessions to survive a restart.
type MemoryPersistence struct {
	snap *Snapshot
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (p *MemoryPersistence) Load() (*Snapshot, error) {
	if p.snap == nil {
		return nil, nil
	}
	copied := *p.snap
	return &copied, nil
}

func (p *MemoryPersistence) Save(snap Snapshot) error {
	p.snap = &snap
	return nil
}

func (p *MemoryPersistence) Clear() error {
	p.snap = nil
	return nil
}
