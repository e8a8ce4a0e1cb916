// Package importer brings external HTML into the builder: fetching a
// repository's root index.html over the host's REST API, shallow-cloning the
// repository when the API is rate limited, and reading local files.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// IndexFileName is the only file the import flow looks for.
const IndexFileName = "index.html"

// ErrorKind classifies import failures.
type ErrorKind int

const (
	KindInvalidURL ErrorKind = iota
	KindNotFound
	KindRateLimited
	KindRequestFailed
	KindNetwork
	KindFileNotFound
)

// ImportError is a typed import failure. Repo carries the owner/repo
// identifier when one was parsed.
type ImportError struct {
	Kind ErrorKind
	Repo string
	Err  error
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return "import failed: URL does not look like a repository URL"
	case KindNotFound:
		return fmt.Sprintf("import failed: repository %s not found", e.Repo)
	case KindRateLimited:
		return fmt.Sprintf("import failed: rate limited while listing %s", e.Repo)
	case KindRequestFailed:
		return fmt.Sprintf("import failed: request for %s failed: %v", e.Repo, e.Err)
	case KindNetwork:
		return fmt.Sprintf("import failed: network error reaching %s: %v", e.Repo, e.Err)
	case KindFileNotFound:
		return fmt.Sprintf("import failed: %s has no %s at its root", e.Repo, IndexFileName)
	default:
		return fmt.Sprintf("import failed: %v", e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user for this failure.
func (e *ImportError) UserMessage() string {
	switch e.Kind {
	case KindInvalidURL:
		return "That does not look like a repository URL. Expected https://host/owner/repo."
	case KindNotFound:
		return fmt.Sprintf("Repository %s was not found. Is it public?", e.Repo)
	case KindRateLimited:
		return "The repository host is rate limiting requests. Try again in a few minutes."
	case KindRequestFailed:
		return "The repository host rejected the request. Try again later."
	case KindNetwork:
		return "Could not reach the repository host. Check your connection."
	case KindFileNotFound:
		return fmt.Sprintf("The repository has no %s at its root, so there is nothing to import.", IndexFileName)
	default:
		return "Import failed unexpectedly."
	}
}

// repoURLPattern matches https://<host>/<owner>/<repo>, tolerating a trailing
// slash or .git suffix.
var repoURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts owner and repo from a repository URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", &ImportError{Kind: KindInvalidURL}
	}
	return m[1], m[2], nil
}

// contentEntry is one entry of the host's directory-listing response.
type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Fetcher retrieves repository files over the host's REST API.
type Fetcher struct {
	client  *http.Client
	apiBase string
}

// NewFetcher creates a Fetcher against the public GitHub API.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: "https://api.github.com",
	}
}

// NewFetcherWithBase creates a Fetcher against a custom API base URL and
// client. Tests use this to point at a local server.
func NewFetcherWithBase(apiBase string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, apiBase: apiBase}
}

// FetchRootIndexFile downloads the repository root's index.html. Failures are
// *ImportError: InvalidURL, NotFound (404 listing), RateLimited (403),
// RequestFailed (other non-success status), Network (transport failure), or
// FileNotFound (no index.html among the root entries).
func (f *Fetcher) FetchRootIndexFile(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}
	ident := owner + "/" + repo

	listingURL := fmt.Sprintf("%s/repos/%s/%s/contents/", f.apiBase, owner, repo)
	entries, err := f.listRoot(ctx, listingURL, ident)
	if err != nil {
		return "", err
	}

	var download string
	for _, e := range entries {
		if e.Name == IndexFileName && e.Type == "file" {
			download = e.DownloadURL
			break
		}
	}
	if download == "" {
		return "", &ImportError{Kind: KindFileNotFound, Repo: ident}
	}

	return f.download(ctx, download, ident)
}

func (f *Fetcher) listRoot(ctx context.Context, url, ident string) ([]contentEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ImportError{Kind: KindRequestFailed, Repo: ident, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ImportError{Kind: KindNetwork, Repo: ident, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &ImportError{Kind: KindNotFound, Repo: ident}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &ImportError{Kind: KindRateLimited, Repo: ident}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &ImportError{Kind: KindRequestFailed, Repo: ident,
			Err: fmt.Errorf("listing returned status %d", resp.StatusCode)}
	}

	var entries []contentEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &ImportError{Kind: KindRequestFailed, Repo: ident, Err: err}
	}
	return entries, nil
}

func (f *Fetcher) download(ctx context.Context, url, ident string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &ImportError{Kind: KindRequestFailed, Repo: ident, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &ImportError{Kind: KindNetwork, Repo: ident, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ImportError{Kind: KindRequestFailed, Repo: ident,
			Err: fmt.Errorf("download returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ImportError{Kind: KindNetwork, Repo: ident, Err: err}
	}
	return string(body), nil
}
