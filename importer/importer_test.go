package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url         string
		owner, repo string
		wantErr     bool
	}{
		{"https://github.com/acme/app", "acme", "app", false},
		{"https://github.com/acme/app/", "acme", "app", false},
		{"https://github.com/acme/app.git", "acme", "app", false},
		{"http://host.example/acme/app", "acme", "app", false},
		{"https://github.com/acme", "", "", true},
		{"https://github.com/acme/app/tree/main", "", "", true},
		{"not a url", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRepoURL(%q) expected error", tt.url)
				continue
			}
			var ie *ImportError
			if !errors.As(err, &ie) || ie.Kind != KindInvalidURL {
				t.Errorf("ParseRepoURL(%q) expected InvalidURL, got %v", tt.url, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRepoURL(%q) failed: %v", tt.url, err)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepoURL(%q) = %s/%s, want %s/%s", tt.url, owner, repo, tt.owner, tt.repo)
		}
	}
}

// newTestFetcher wires a Fetcher to a local server standing in for the
// repository host's API.
func newTestFetcher(t *testing.T, handler http.Handler) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFetcherWithBase(srv.URL, srv.Client())
}

func TestFetchRootIndexFileSuccess(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/repos/acme/app/contents/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name": "README.md", "type": "file", "download_url": "%s/raw/readme"},
			{"name": "index.html", "type": "file", "download_url": "%s/raw/index"},
			{"name": "assets", "type": "dir", "download_url": null}
		]`, serverURL, serverURL)
	})
	mux.HandleFunc("/raw/index", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>imported</html>")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	serverURL = srv.URL
	f := NewFetcherWithBase(srv.URL, srv.Client())

	got, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	if err != nil {
		t.Fatalf("FetchRootIndexFile failed: %v", err)
	}
	if got != "<html>imported</html>" {
		t.Errorf("Expected downloaded content, got %q", got)
	}
}

func TestFetchRootIndexFileNotFound(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindNotFound {
		t.Fatalf("Expected NotFound, got %v", err)
	}
	if ie.Repo != "acme/app" {
		t.Errorf("Expected error to reference acme/app, got %q", ie.Repo)
	}
}

func TestFetchRootIndexFileRateLimited(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindRateLimited {
		t.Fatalf("Expected RateLimited, got %v", err)
	}
}

func TestFetchRootIndexFileServerError(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindRequestFailed {
		t.Fatalf("Expected RequestFailed, got %v", err)
	}
}

func TestFetchRootIndexFileMissingIndex(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name": "README.md", "type": "file", "download_url": "http://x/readme"},
			{"name": "index.html", "type": "dir", "download_url": null}
		]`)
	}))

	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindFileNotFound {
		t.Fatalf("Expected FileNotFound (dir entries do not count), got %v", err)
	}
}

func TestFetchRootIndexFileNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // nothing listening anymore

	f := NewFetcherWithBase(base, &http.Client{})
	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/acme/app")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindNetwork {
		t.Fatalf("Expected Network, got %v", err)
	}
}

func TestFetchRootIndexFileInvalidURL(t *testing.T) {
	f := NewFetcher()
	_, err := f.FetchRootIndexFile(context.Background(), "https://host.example/just-owner")
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Kind != KindInvalidURL {
		t.Fatalf("Expected InvalidURL, got %v", err)
	}
}

func TestReadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html>local</html>"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	got, err := ReadLocalFile(path)
	if err != nil {
		t.Fatalf("ReadLocalFile failed: %v", err)
	}
	if got != "<html>local</html>" {
		t.Errorf("Expected file content, got %q", got)
	}

	if _, err := ReadLocalFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
