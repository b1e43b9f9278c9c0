package archive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

// GitHubStore archives documents through the GitHub contents API. The
// content blob SHA is the revision token.
type GitHubStore struct {
	client         *github.Client
	owner, repo    string
	branch         string
	directory      string
	committerName  string
	committerEmail string
}

// GitHubOptions configures a GitHubStore.
type GitHubOptions struct {
	Repository     string // "owner/name"
	Branch         string
	Directory      string
	Token          string
	CommitterName  string
	CommitterEmail string
}

// NewGitHubStore creates a store committing to the given repository.
func NewGitHubStore(opts GitHubOptions) (*GitHubStore, error) {
	owner, repo, ok := strings.Cut(opts.Repository, "/")
	if !ok {
		return nil, fmt.Errorf("repository %q is not owner/name", opts.Repository)
	}
	return &GitHubStore{
		client:         github.NewClient(nil).WithAuthToken(opts.Token),
		owner:          owner,
		repo:           repo,
		branch:         opts.Branch,
		directory:      opts.Directory,
		committerName:  opts.CommitterName,
		committerEmail: opts.CommitterEmail,
	}, nil
}

// Fetch reads and decodes the named document, returning its blob SHA as
// the revision token.
func (s *GitHubStore) Fetch(ctx context.Context, name string) (document.Document, string, error) {
	file, _, resp, err := s.client.Repositories.GetContents(
		ctx, s.owner, s.repo, filePath(s.directory, name),
		&github.RepositoryContentGetOptions{Ref: s.branch},
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, "", fmt.Errorf("%w: %s", document.ErrNotFound, name)
		}
		return nil, "", fmt.Errorf("fetching %s: %w", name, err)
	}
	if file == nil {
		return nil, "", fmt.Errorf("%s is a directory, not a document", name)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", name, err)
	}
	doc, err := document.UnmarshalYAML([]byte(content))
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", name, err)
	}
	return doc, file.GetSHA(), nil
}

// Commit writes the document. baseRevision carries the blob SHA from the
// preceding Fetch; empty means create. A SHA mismatch surfaces as
// ErrRevisionConflict, untouched: retrying is the caller's decision.
func (s *GitHubStore) Commit(ctx context.Context, name string, doc document.Document, baseRevision, message string) (string, error) {
	raw, err := document.MarshalYAML(doc)
	if err != nil {
		return "", err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: raw,
		Branch:  github.Ptr(s.branch),
		Committer: &github.CommitAuthor{
			Name:  github.Ptr(s.committerName),
			Email: github.Ptr(s.committerEmail),
		},
	}
	if baseRevision != "" {
		opts.SHA = github.Ptr(baseRevision)
	}

	result, resp, err := s.client.Repositories.CreateFile(
		ctx, s.owner, s.repo, filePath(s.directory, name), opts,
	)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusConflict ||
			resp.StatusCode == http.StatusUnprocessableEntity) {
			return "", fmt.Errorf("%w: %s", ErrRevisionConflict, name)
		}
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", document.ErrNotFound, name)
		}
		return "", fmt.Errorf("committing %s: %w", name, err)
	}
	return result.GetContent().GetSHA(), nil
}
