// Package store provides the persistent key-value storage used by all
// stateful features: current code, previous code, prompts, source descriptor,
// saved projects, version history, theme and layout.
//
// The Store interface is the primary abstraction. SQLiteStore is the default
// implementation using pure-Go SQLite (modernc.org/sqlite). MemoryStore keeps
// values in-process and doubles as the test fake. NopStore covers contexts
// without any persistence backend: reads report absent, writes are discarded.
package store

import "fmt"

// Keys for every persisted value. No key is shared in meaning with another;
// each is independently absent-tolerant.
const (
	KeyCode          = "atelier_code"
	KeyPreviousCode  = "atelier_previous_code"
	KeyInitialPrompt = "atelier_initial_prompt"
	KeySource        = "atelier_source"
	KeyTheme         = "atelier_theme"
	KeyPanelWidth    = "atelier_panel_width"
	KeyProjects      = "atelier_projects"
	KeyHistory       = "atelier_history"
)

// Store is the key-value persistence interface. Get reports absence via its
// second return instead of an error so callers never have to distinguish
// "missing backend" from "missing key". Set returns a *StorageError when the
// backend rejects the write.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
}

// StorageError reports a write rejected by the backing store. Project
// save/delete propagates it to the caller; incidental persistence (history,
// autosave, theme) logs and continues.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage write failed for %q: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
