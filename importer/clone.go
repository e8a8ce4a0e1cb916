package importer

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// CloneIndexFile shallow-clones the repository into memory and reads its root
// index.html. It is the fallback for FetchRootIndexFile when the REST listing
// is rate limited; a clone talks to the git transport, which has separate
// limits from the REST API.
func CloneIndexFile(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}
	ident := owner + "/" + repo

	fs := memfs.New()
	_, err = git.CloneContext(ctx, memory.NewStorage(), fs, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		if errors.Is(err, transport.ErrRepositoryNotFound) || errors.Is(err, transport.ErrAuthenticationRequired) {
			return "", &ImportError{Kind: KindNotFound, Repo: ident, Err: err}
		}
		return "", &ImportError{Kind: KindNetwork, Repo: ident, Err: err}
	}

	f, err := fs.Open(IndexFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ImportError{Kind: KindFileNotFound, Repo: ident}
		}
		return "", &ImportError{Kind: KindRequestFailed, Repo: ident, Err: err}
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return "", &ImportError{Kind: KindRequestFailed, Repo: ident, Err: err}
	}
	return string(body), nil
}
