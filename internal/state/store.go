// Package state persists all job state as a single versioned JSON snapshot.
// Loads merge missing keys from defaults so schema additions never break an
// existing file; saves are atomic (write to temp, then rename) so a crash
// mid-write can never corrupt the canonical state.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mhollis/beacon/internal/tracker"
)

// snapshotVersion is bumped when the snapshot schema changes shape.
const snapshotVersion = 1

// SeenTask is the persisted view of a task's mutable fields, kept only to
// detect deadline drift between syncs. Last write wins per id.
type SeenTask struct {
	DueAt     string `json:"due_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	LastSeen  string `json:"last_seen"`
	Title     string `json:"title,omitempty"` // snippet for debugging
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Version    int                 `json:"version"`
	LastRun    map[string]string   `json:"last_run"`
	SeenTasks  map[string]SeenTask `json:"seen_tasks"`
	SentEvents map[string]string   `json:"sent_events"`
	Study      tracker.StudyLog    `json:"study"`
}

// DefaultSnapshot returns a complete empty snapshot.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Version:    snapshotVersion,
		LastRun:    make(map[string]string),
		SeenTasks:  make(map[string]SeenTask),
		SentEvents: make(map[string]string),
	}
}

// applyDefaults fills nil maps left by partial or legacy files. Unknown
// keys in the file are dropped by the decoder; known keys are never lost.
func (s *Snapshot) applyDefaults() {
	if s.Version == 0 {
		s.Version = snapshotVersion
	}
	if s.LastRun == nil {
		s.LastRun = make(map[string]string)
	}
	if s.SeenTasks == nil {
		s.SeenTasks = make(map[string]SeenTask)
	}
	if s.SentEvents == nil {
		s.SentEvents = make(map[string]string)
	}
}

// Store is a load-mutate-save state file. Jobs call Load once at startup,
// mutate the returned snapshot, and Save once before exiting.
type Store struct {
	path string
	snap *Snapshot
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot from disk, caching it for subsequent calls. A
// missing or malformed file yields defaults rather than an error: state is
// advisory, and starting fresh beats crashing.
func (s *Store) Load() *Snapshot {
	if s.snap != nil {
		return s.snap
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("beacon: failed to read state %s, using defaults: %v", s.path, err)
		}
		s.snap = DefaultSnapshot()
		return s.snap
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		log.Printf("beacon: malformed state %s, using defaults: %v", s.path, err)
		s.snap = DefaultSnapshot()
		return s.snap
	}
	snap.applyDefaults()
	s.snap = snap
	return s.snap
}

// Save writes the snapshot atomically. On any failure the previous state
// file is left intact and the error propagates: losing a run's bookkeeping
// is recoverable, silently corrupting it is not.
func (s *Store) Save() error {
	if s.snap == nil {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// UpdateLastRun records when a job last completed.
func (s *Store) UpdateLastRun(job string, now time.Time) {
	snap := s.Load()
	snap.LastRun[job] = now.UTC().Format(time.RFC3339)
}

// SeenTask returns the persisted info for a task id, if any.
func (s *Store) SeenTask(id string) (SeenTask, bool) {
	info, ok := s.Load().SeenTasks[id]
	return info, ok
}

// SetSeenTask upserts the persisted info for a task id.
func (s *Store) SetSeenTask(id string, info SeenTask) {
	s.Load().SeenTasks[id] = info
}
