// Package store is the keyed JSON snapshot persistence collaborator:
// one file per save, upsert-by-name, sorted listing, name
// sanitization, file-backed rather than request-scoped.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Load/Delete when no save with the given id
// exists.
var ErrNotFound = errors.New("store: save not found")

var nameFilter = regexp.MustCompile(`[^A-Za-z0-9 _-]`)

// SafeName strips every character outside [A-Za-z0-9 _-] and trims
// whitespace.
func SafeName(name string) string {
	return strings.TrimSpace(nameFilter.ReplaceAllString(name, ""))
}

// Record is one persisted save: id, display name, the opaque snapshot
// payload, and its created/updated timestamps.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

// Summary is the listing-only projection (id/name/updatedAt), sorted
// by updatedAt descending.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Store is a directory of one-JSON-file-per-save records. Concurrent
// saves of the same name or id race last-writer-wins, by design — this
// is a tutorial tool, not a transactional database.
type Store struct {
	dir string
	now func() int64
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, now: func() int64 { return time.Now().UnixMilli() }}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) load(id string) (*Record, bool) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// List returns every save, sorted by updatedAt descending.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		rec, ok := s.load(id)
		if !ok {
			continue
		}
		if rec.ID == "" {
			rec.ID = id
		}
		if rec.Name == "" {
			rec.Name = id
		}
		summaries = append(summaries, Summary{ID: rec.ID, Name: rec.Name, UpdatedAt: rec.UpdatedAt})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].UpdatedAt > summaries[j].UpdatedAt })
	return summaries, nil
}

// Load returns the snapshot payload for a save id.
func (s *Store) Load(id string) (json.RawMessage, error) {
	rec, ok := s.load(id)
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Snapshot, nil
}

// Delete removes a save by id.
func (s *Store) Delete(id string) error {
	if _, ok := s.load(id); !ok {
		return ErrNotFound
	}
	return os.Remove(s.path(id))
}

// Save upserts a snapshot under name. A non-empty id selects the record
// written: an existing record with that id is updated in place, and an
// unknown id creates a new record under that id (no name lookup). An
// empty id updates any existing record with the same name
// (upsert-by-name); failing that, a new uuid-keyed record is created.
// createdAt is preserved across updates.
func (s *Store) Save(name string, snapshot json.RawMessage, id string) (Record, error) {
	name = SafeName(name)
	if name == "" {
		return Record{}, errors.New("store: empty name")
	}

	var existing *Record
	if id != "" {
		if rec, ok := s.load(id); ok {
			existing = rec
		}
	} else {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			return Record{}, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			candidateID := strings.TrimSuffix(e.Name(), ".json")
			rec, ok := s.load(candidateID)
			if !ok || rec.Name != name {
				continue
			}
			existing = rec
			id = candidateID
			break
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	rec := Record{ID: id, Name: name, Snapshot: snapshot, UpdatedAt: now}
	if existing != nil && existing.CreatedAt != 0 {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, err
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return Record{}, err
	}
	return rec, nil
}
