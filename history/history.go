// Package history maintains the bounded version ledger: an insertion-ordered,
// most-recent-first sequence of code snapshots. Every successful generation,
// refinement, import, project load, and restore appends here. The ledger is a
// convenience feature, not a durability guarantee, so persistence failures are
// logged and suppressed.
package history

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"atelier/store"
)

// Capacity bounds the ledger; the oldest entry is evicted on overflow.
const Capacity = 50

// Entry is a single timestamped code snapshot. Entries are never mutated in
// place and are removed only by a full clear.
type Entry struct {
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is the version history over a backing store.
type Ledger struct {
	store   store.Store
	logger  *slog.Logger
	entries []Entry
}

// New loads the persisted ledger from s. Absent or malformed data yields an
// empty ledger, never an error.
func New(s store.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{store: s, logger: logger}

	raw, ok := s.Get(store.KeyHistory)
	if !ok {
		return l
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("discarding malformed version history", "error", err)
		return l
	}
	// A blob written by an older or tampered build may exceed the bound.
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	l.entries = entries
	return l
}

// Entries returns the ledger most-recent first. The returned slice is a copy.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Head returns the most recent entry, if any.
func (l *Ledger) Head() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// At returns the entry at index i (0 = most recent).
func (l *Ledger) At(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Add prepends a snapshot of code stamped with the current time and returns
// the updated sequence. It no-ops when code is blank or textually equal to the
// current head, which keeps consecutive duplicates (restore-then-restore, for
// example) out of the ledger. Ordering is strictly by insertion, so entries
// sharing a timestamp still keep a well-defined "most recent".
func (l *Ledger) Add(code string) []Entry {
	if strings.TrimSpace(code) == "" {
		return l.Entries()
	}
	if len(l.entries) > 0 && l.entries[0].Code == code {
		return l.Entries()
	}

	updated := make([]Entry, 0, len(l.entries)+1)
	updated = append(updated, Entry{Code: code, Timestamp: time.Now()})
	updated = append(updated, l.entries...)
	if len(updated) > Capacity {
		updated = updated[:Capacity]
	}
	l.entries = updated

	l.persist()
	return l.Entries()
}

// Clear erases the ledger, in memory and in the store.
func (l *Ledger) Clear() {
	l.entries = nil
	l.store.Remove(store.KeyHistory)
}

func (l *Ledger) persist() {
	data, err := json.Marshal(l.entries)
	if err != nil {
		l.logger.Warn("failed to encode version history", "error", err)
		return
	}
	if err := l.store.Set(store.KeyHistory, string(data)); err != nil {
		l.logger.Warn("failed to persist version history", "error", err)
	}
}
