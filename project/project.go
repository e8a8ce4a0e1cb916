// Package project provides named, durable project records and the source
// descriptor that tags where the current document came from.
package project

import (
	"encoding/json"
	"log/slog"

	"atelier/store"
)

// SourceKind enumerates the possible origins of the current document.
type SourceKind string

const (
	SourcePrompt SourceKind = "prompt" // generated from a natural-language prompt
	SourceFile   SourceKind = "file"   // imported from a local file
	SourceRepo   SourceKind = "repo"   // cloned from a public repository
	SourceSaved  SourceKind = "saved"  // loaded from a saved project
)

// Source describes the provenance of the current document: the kind plus its
// label (prompt text, file name, owner/repo identifier, or project name).
// A nil *Source means the fresh/empty state.
type Source struct {
	Kind  SourceKind `json:"kind"`
	Label string     `json:"label"`
}

// SavedProject is a named, durable bundle of code, its originating prompt,
// and its source descriptor.
type SavedProject struct {
	Name          string  `json:"name"`
	GeneratedCode string  `json:"generated_code"`
	InitialPrompt string  `json:"initial_prompt,omitempty"`
	Source        *Source `json:"source,omitempty"`
}

// Repository stores SavedProjects keyed by name in a single serialized
// mapping. The mapping is read-modify-written on every mutation; the backing
// store has no partial-update primitive and the expected scale is tens of
// projects.
type Repository struct {
	store  store.Store
	logger *slog.Logger
}

// NewRepository creates a project repository over s.
func NewRepository(s store.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: s, logger: logger}
}

// List returns the saved-project mapping. Absent or malformed data yields an
// empty mapping, never an error.
func (r *Repository) List() map[string]SavedProject {
	raw, ok := r.store.Get(store.KeyProjects)
	if !ok {
		return map[string]SavedProject{}
	}
	var projects map[string]SavedProject
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		r.logger.Warn("discarding malformed project mapping", "error", err)
		return map[string]SavedProject{}
	}
	if projects == nil {
		projects = map[string]SavedProject{}
	}
	return projects
}

// Save inserts or overwrites the project under name and persists the whole
// mapping. A rejected write is returned to the caller; saving a project is the
// one path where silent data loss is unacceptable.
func (r *Repository) Save(name string, p SavedProject) error {
	projects := r.List()
	p.Name = name
	projects[name] = p
	return r.persist(projects)
}

// Delete removes the project under name and persists. Deleting an unknown
// name is not an error.
func (r *Repository) Delete(name string) error {
	projects := r.List()
	if _, ok := projects[name]; !ok {
		return nil
	}
	delete(projects, name)
	return r.persist(projects)
}

// Get returns the project under name.
func (r *Repository) Get(name string) (SavedProject, bool) {
	p, ok := r.List()[name]
	return p, ok
}

func (r *Repository) persist(projects map[string]SavedProject) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return &store.StorageError{Key: store.KeyProjects, Err: err}
	}
	return r.store.Set(store.KeyProjects, string(data))
}
