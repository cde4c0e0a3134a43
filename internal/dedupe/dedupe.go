// Package dedupe provides stable event fingerprinting and the sent-event
// set that guarantees each notifiable event is posted at most once.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fingerprint generates a stable hash for an event. Extra keys are sorted
// lexicographically before joining, so insertion order never changes the
// result. Empty-valued extras are omitted: an absent key and an explicitly
// empty one fingerprint identically.
func Fingerprint(eventType, eventID string, extra map[string]string) string {
	parts := []string{eventType, eventID}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if extra[k] == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, extra[k]))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// Set tracks which events have already been posted. It operates directly on
// the snapshot's sent-events map, so marks are visible to the next Save.
// The mutex keeps check-and-mark atomic when feed fetches run in parallel.
type Set struct {
	mu   sync.Mutex
	sent map[string]string // fingerprint -> sent-at RFC3339
	now  func() time.Time
}

// NewSet wraps a sent-events map. The map is mutated in place; callers keep
// ownership and persist it afterwards.
func NewSet(sent map[string]string, now func() time.Time) *Set {
	if sent == nil {
		sent = make(map[string]string)
	}
	if now == nil {
		now = time.Now
	}
	return &Set{sent: sent, now: now}
}

// CheckAndMark returns true and records the event iff its fingerprint has
// not been seen. Returns false for duplicates, leaving the set untouched.
func (s *Set) CheckAndMark(eventType, eventID string, extra map[string]string) bool {
	fp := Fingerprint(eventType, eventID, extra)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sent[fp]; ok {
		return false
	}
	s.sent[fp] = s.now().UTC().Format(time.RFC3339)
	return true
}

// IsNew reports whether an event has not been sent, without marking it.
func (s *Set) IsNew(eventType, eventID string, extra map[string]string) bool {
	fp := Fingerprint(eventType, eventID, extra)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[fp]
	return !ok
}

// Mark records an event as sent unconditionally.
func (s *Set) Mark(eventType, eventID string, extra map[string]string) {
	fp := Fingerprint(eventType, eventID, extra)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[fp] = s.now().UTC().Format(time.RFC3339)
}

// Len returns the number of recorded events.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// Cleanup removes entries recorded more than maxAgeDays ago and returns the
// count removed. Entries within the threshold are never touched: re-sending
// too early is preferred over losing dedup state. Entries whose recorded
// timestamp no longer parses are evicted too, since they can never age out.
func (s *Set) Cleanup(maxAgeDays int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().AddDate(0, 0, -maxAgeDays)
	removed := 0
	for fp, sentAt := range s.sent {
		t, err := time.Parse(time.RFC3339, sentAt)
		if err != nil || t.Before(cutoff) {
			delete(s.sent, fp)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("beacon: cleaned up %d old sent events", removed)
	}
	return removed
}
