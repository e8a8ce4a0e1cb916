// Package app is the application state controller: the reconciliation core
// that keeps the current document, the previous-code slot, the version ledger,
// and saved projects consistent across generation, refinement, import, manual
// editing, restore, and project load, including rollback on failure.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"atelier/compare"
	"atelier/history"
	"atelier/importer"
	"atelier/llm"
	"atelier/markup"
	"atelier/project"
	"atelier/store"
)

// Phase is the loading state. Only one generation or refinement is in flight
// at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGenerating
	PhaseRefining
)

// ErrBusy rejects a generate/refine trigger while another is in flight.
var ErrBusy = errors.New("another request is already in flight")

// ErrStale marks a response that resolved after the state it targeted was
// replaced (cleared, or superseded by a newer request). Its mutation is
// discarded and no error surfaces to the user.
var ErrStale = errors.New("stale response discarded")

// ValidationError reports empty or blank required input. It never leaves the
// controller as anything but a user-visible message.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// DefaultAutosaveDelay debounces persistence of manual edits.
const DefaultAutosaveDelay = 750 * time.Millisecond

// App holds and persists all builder state.
type App struct {
	mu       sync.Mutex
	store    store.Store
	ledger   *history.Ledger
	projects *project.Repository
	client   *llm.Client
	fetcher  *importer.Fetcher
	logger   *slog.Logger

	phase         Phase
	busyWith      string
	code          string
	source        *project.Source
	previousCode  *string
	initialPrompt string
	errMsg        string
	comparison    *compare.Comparison

	// requestSeq tags each issued request; completions whose tag no longer
	// matches are stale and discarded.
	requestSeq uint64

	saveTimer *time.Timer
	saveDelay time.Duration
	// saveGen tags the pending autosave; a callback whose tag no longer
	// matches fires too late (superseded or cleared) and writes nothing.
	saveGen  uint64
	onChange func()
}

// New creates the controller over the given store and collaborators, loading
// any persisted state.
func New(s store.Store, client *llm.Client, fetcher *importer.Fetcher, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		store:     s,
		ledger:    history.New(s, logger),
		projects:  project.NewRepository(s, logger),
		client:    client,
		fetcher:   fetcher,
		logger:    logger,
		saveDelay: DefaultAutosaveDelay,
	}
	a.loadPersisted()
	return a
}

// SetOnChange registers the presentation layer's re-render hook. It is called
// with the controller lock held after every state mutation; keep it cheap and
// never call back into the controller from it.
func (a *App) SetOnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// SetAutosaveDelay overrides the manual-edit persistence debounce.
func (a *App) SetAutosaveDelay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveDelay = d
}

func (a *App) loadPersisted() {
	if v, ok := a.store.Get(store.KeyCode); ok {
		a.code = v
	}
	if v, ok := a.store.Get(store.KeyPreviousCode); ok {
		a.previousCode = &v
	}
	if v, ok := a.store.Get(store.KeyInitialPrompt); ok {
		a.initialPrompt = v
	}
	if v, ok := a.store.Get(store.KeySource); ok {
		var src project.Source
		if err := json.Unmarshal([]byte(v), &src); err == nil && src.Kind != "" {
			a.source = &src
		}
	}
}

// persistLocked writes the document-adjacent keys. These are incidental
// persistence: failures are logged, never surfaced.
func (a *App) persistLocked() {
	a.setOrLog(store.KeyCode, a.code)
	a.setOrLog(store.KeyInitialPrompt, a.initialPrompt)
	if a.previousCode != nil {
		a.setOrLog(store.KeyPreviousCode, *a.previousCode)
	} else {
		a.store.Remove(store.KeyPreviousCode)
	}
	if a.source != nil {
		if data, err := json.Marshal(a.source); err == nil {
			a.setOrLog(store.KeySource, string(data))
		}
	} else {
		a.store.Remove(store.KeySource)
	}
}

func (a *App) setOrLog(key, value string) {
	if err := a.store.Set(key, value); err != nil {
		a.logger.Warn("autosave write failed", "key", key, "error", err)
	}
}

func (a *App) notifyLocked() {
	if a.onChange != nil {
		a.onChange()
	}
}

// Generate builds a new document from a natural-language prompt. On failure
// every field is rolled back to its pre-call value and only the error message
// changes.
func (a *App) Generate(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return a.fail(ValidationError("Describe the app you want to build first."))
	}
	if a.client == nil {
		return a.fail(ValidationError("No language model is configured. Set one via the configuration first."))
	}

	a.mu.Lock()
	if a.phase != PhaseIdle {
		a.mu.Unlock()
		return ErrBusy
	}
	if a.code != "" {
		snapshot := a.code
		a.previousCode = &snapshot
	}
	a.phase = PhaseGenerating
	a.busyWith = prompt
	a.errMsg = ""
	a.requestSeq++
	seq := a.requestSeq
	a.notifyLocked()
	a.mu.Unlock()

	text, err := a.client.Generate(ctx, prompt)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.requestSeq {
		return ErrStale
	}
	a.phase = PhaseIdle
	a.busyWith = ""
	if err != nil {
		a.previousCode = nil
		a.errMsg = userMessage(err)
		a.persistLocked()
		a.notifyLocked()
		return err
	}

	a.code = text
	a.initialPrompt = prompt
	a.source = &project.Source{Kind: project.SourcePrompt, Label: prompt}
	a.ledger.Add(text)
	a.persistLocked()
	a.notifyLocked()
	return nil
}

// Refine applies a change request to the current document. On failure the
// document is untouched; only the comparison baseline (the previous-code
// slot) is cleared.
func (a *App) Refine(ctx context.Context, request string) error {
	if strings.TrimSpace(request) == "" {
		return a.fail(ValidationError("Describe the change you want first."))
	}
	if a.client == nil {
		return a.fail(ValidationError("No language model is configured. Set one via the configuration first."))
	}

	a.mu.Lock()
	if a.code == "" {
		a.mu.Unlock()
		return a.fail(ValidationError("There is no app to refine yet. Generate or import one first."))
	}
	if a.phase != PhaseIdle {
		a.mu.Unlock()
		return ErrBusy
	}
	snapshot := a.code
	a.previousCode = &snapshot
	a.phase = PhaseRefining
	a.busyWith = request
	a.errMsg = ""
	a.requestSeq++
	seq := a.requestSeq
	originalPrompt := a.initialPrompt
	current := a.code
	a.notifyLocked()
	a.mu.Unlock()

	text, err := a.client.Refine(ctx, originalPrompt, current, request)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.requestSeq {
		return ErrStale
	}
	a.phase = PhaseIdle
	a.busyWith = ""
	if err != nil {
		a.previousCode = nil
		a.errMsg = userMessage(err)
		a.persistLocked()
		a.notifyLocked()
		return err
	}

	a.code = text
	a.ledger.Add(text)
	a.persistLocked()
	a.notifyLocked()
	return nil
}

// ImportFile replaces the document with normalized local-file content.
func (a *App) ImportFile(name, content string) error {
	return a.applyImport(content, &project.Source{Kind: project.SourceFile, Label: name})
}

// CloneRepo fetches the repository root's index.html and imports it. When the
// REST listing is rate limited it falls back to a shallow in-memory clone.
func (a *App) CloneRepo(ctx context.Context, repoURL string) error {
	content, err := a.fetcher.FetchRootIndexFile(ctx, repoURL)
	if err != nil {
		var ie *importer.ImportError
		if errors.As(err, &ie) && ie.Kind == importer.KindRateLimited {
			a.logger.Warn("listing rate limited, falling back to shallow clone", "repo", ie.Repo)
			content, err = importer.CloneIndexFile(ctx, repoURL)
		}
		if err != nil {
			return a.fail(err)
		}
	}

	owner, repo, _ := importer.ParseRepoURL(repoURL)
	return a.applyImport(content, &project.Source{Kind: project.SourceRepo, Label: owner + "/" + repo})
}

func (a *App) applyImport(content string, src *project.Source) error {
	normalized, err := markup.Normalize(content)
	if err != nil {
		return a.fail(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.requestSeq++ // an import supersedes any in-flight generation
	a.phase = PhaseIdle
	a.busyWith = ""
	a.code = normalized
	a.source = src
	a.previousCode = nil
	a.initialPrompt = ""
	a.errMsg = ""
	a.ledger.Add(normalized)
	a.persistLocked()
	a.notifyLocked()
	return nil
}

// SetCode applies a manual edit from the editing surface. Edits replace the
// document directly; they are persisted on a debounce and never appended to
// the ledger, so keystrokes cannot flood the bounded history.
func (a *App) SetCode(code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.code = code
	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.saveGen++
	gen := a.saveGen
	a.saveTimer = time.AfterFunc(a.saveDelay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if gen != a.saveGen {
			return
		}
		a.setOrLog(store.KeyCode, a.code)
	})
	a.notifyLocked()
}

// RestoreVersion makes the ledger entry at index i the current document. The
// overwritten document goes into the previous-code slot so the restore can be
// compared or undone once. A restore is a new ledger head, not a rewind;
// restoring the same entry twice is suppressed by the duplicate-head rule.
func (a *App) RestoreVersion(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.ledger.At(i)
	if !ok {
		return a.failLocked(ValidationError("That version no longer exists."))
	}

	a.requestSeq++ // a restore supersedes any in-flight generation
	a.phase = PhaseIdle
	a.busyWith = ""
	if a.code != "" {
		snapshot := a.code
		a.previousCode = &snapshot
	}
	a.code = entry.Code
	a.ledger.Add(entry.Code)
	a.persistLocked()
	a.notifyLocked()
	return nil
}

// CompareWithPrevious opens a diff of the current document against the
// previous-code slot.
func (a *App) CompareWithPrevious() (*compare.Comparison, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.previousCode == nil {
		return nil, a.failLocked(ValidationError("There is no previous version to compare against."))
	}
	a.comparison = &compare.Comparison{
		Label:    "previous version",
		Original: *a.previousCode,
		Modified: a.code,
	}
	a.notifyLocked()
	return a.comparison, nil
}

// CompareWithVersion opens a diff of the current document against the ledger
// entry at index i.
func (a *App) CompareWithVersion(i int) (*compare.Comparison, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.ledger.At(i)
	if !ok {
		return nil, a.failLocked(ValidationError("That version no longer exists."))
	}
	a.comparison = &compare.Comparison{
		Label:    "version " + entry.Timestamp.Format(time.RFC3339),
		Original: entry.Code,
		Modified: a.code,
	}
	a.notifyLocked()
	return a.comparison, nil
}

// CloseComparison discards the open diff view.
func (a *App) CloseComparison() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.comparison = nil
	a.notifyLocked()
}

// SaveProject stores the current document under name. A storage failure is
// returned to the caller so the save dialog can stay open and show it; in
// that case nothing changes, in memory or on disk.
func (a *App) SaveProject(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError("Give the project a name first.")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	p := project.SavedProject{
		GeneratedCode: a.code,
		InitialPrompt: a.initialPrompt,
		Source:        a.source,
	}
	if err := a.projects.Save(name, p); err != nil {
		return err
	}
	a.errMsg = ""
	a.notifyLocked()
	return nil
}

// LoadProject replaces the current state with the saved project's.
func (a *App) LoadProject(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.projects.Get(name)
	if !ok {
		return a.failLocked(ValidationError("No project with that name exists."))
	}

	a.requestSeq++ // a load supersedes any in-flight generation
	a.phase = PhaseIdle
	a.busyWith = ""
	a.code = p.GeneratedCode
	a.initialPrompt = p.InitialPrompt
	a.source = &project.Source{Kind: project.SourceSaved, Label: name}
	a.previousCode = nil
	a.errMsg = ""
	a.ledger.Add(p.GeneratedCode)
	a.persistLocked()
	a.notifyLocked()
	return nil
}

// DeleteProject removes the named project. Storage failures propagate.
func (a *App) DeleteProject(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.projects.Delete(name)
}

// Projects returns the saved-project mapping.
func (a *App) Projects() map[string]project.SavedProject {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.projects.List()
}

// ClearAll resets every piece of state and erases the persisted ledger. This
// is the only operation that erases history; it is explicit and destructive,
// so the presentation layer confirms before calling it.
func (a *App) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requestSeq++ // invalidate any in-flight response
	a.saveGen++    // and any pending autosave
	a.phase = PhaseIdle
	a.busyWith = ""
	a.code = ""
	a.source = nil
	a.previousCode = nil
	a.initialPrompt = ""
	a.errMsg = ""
	a.comparison = nil
	if a.saveTimer != nil {
		a.saveTimer.Stop()
		a.saveTimer = nil
	}

	a.ledger.Clear()
	a.store.Remove(store.KeyCode)
	a.store.Remove(store.KeyPreviousCode)
	a.store.Remove(store.KeyInitialPrompt)
	a.store.Remove(store.KeySource)
	a.notifyLocked()
}

// CompleteAt proxies a best-effort inline completion for the editor. It never
// fails and never touches state.
func (a *App) CompleteAt(ctx context.Context, scope, before, after string) string {
	if a.client == nil {
		return ""
	}
	return a.client.CompleteAt(ctx, scope, before, after)
}

// SetTheme persists the UI theme. Low stakes: failures are logged only.
func (a *App) SetTheme(theme string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setOrLog(store.KeyTheme, theme)
}

// Theme returns the persisted UI theme, defaulting to "dark".
func (a *App) Theme() string {
	if v, ok := a.store.Get(store.KeyTheme); ok {
		return v
	}
	return "dark"
}

// SetPanelWidth persists the preview panel width. Low stakes.
func (a *App) SetPanelWidth(width string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setOrLog(store.KeyPanelWidth, width)
}

// PanelWidth returns the persisted preview panel width, defaulting to the
// full window.
func (a *App) PanelWidth() string {
	if v, ok := a.store.Get(store.KeyPanelWidth); ok && v != "" {
		return v
	}
	return "100%"
}

// Accessors. Each takes the lock so callers always see a consistent snapshot.

func (a *App) Code() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.code
}

func (a *App) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// BusyWith returns the prompt or change request the in-flight call carries.
func (a *App) BusyWith() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busyWith
}

func (a *App) Source() *project.Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source == nil {
		return nil
	}
	src := *a.source
	return &src
}

// PreviousCode returns the comparison baseline, if one is populated.
func (a *App) PreviousCode() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.previousCode == nil {
		return "", false
	}
	return *a.previousCode, true
}

func (a *App) InitialPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialPrompt
}

func (a *App) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

func (a *App) Comparison() *compare.Comparison {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.comparison
}

// History returns the version ledger, most-recent first.
func (a *App) History() []history.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.Entries()
}

// fail records err as the user-visible message and returns it.
func (a *App) fail(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failLocked(err)
}

func (a *App) failLocked(err error) error {
	a.errMsg = userMessage(err)
	a.notifyLocked()
	return err
}

// userMessage converts any failure to the single message field the
// presentation layer shows. Typed failures carry their own wording.
func userMessage(err error) string {
	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		return genErr.UserMessage()
	}
	var impErr *importer.ImportError
	if errors.As(err, &impErr) {
		return impErr.UserMessage()
	}
	var valErr ValidationError
	if errors.As(err, &valErr) {
		return string(valErr)
	}
	var storeErr *store.StorageError
	if errors.As(err, &storeErr) {
		return "Saving failed: the storage backend rejected the write."
	}
	return err.Error()
}
