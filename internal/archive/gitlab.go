package archive

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	gitlab "github.com/xanzy/go-gitlab"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

// GitLabStore archives documents through the GitLab repository files API.
// The file's last commit id is the revision token.
type GitLabStore struct {
	client         *gitlab.Client
	project        string
	branch         string
	directory      string
	committerName  string
	committerEmail string
}

// GitLabOptions configures a GitLabStore.
type GitLabOptions struct {
	Project        string // "group/name" or numeric project id
	Branch         string
	Directory      string
	Token          string
	BaseURL        string // empty for gitlab.com
	CommitterName  string
	CommitterEmail string
}

// NewGitLabStore creates a store committing to the given project.
func NewGitLabStore(opts GitLabOptions) (*GitLabStore, error) {
	var clientOpts []gitlab.ClientOptionFunc
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(opts.BaseURL))
	}
	client, err := gitlab.NewClient(opts.Token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLabStore{
		client:         client,
		project:        opts.Project,
		branch:         opts.Branch,
		directory:      opts.Directory,
		committerName:  opts.CommitterName,
		committerEmail: opts.CommitterEmail,
	}, nil
}

// Fetch reads and decodes the named document, returning the file's last
// commit id as the revision token.
func (s *GitLabStore) Fetch(ctx context.Context, name string) (document.Document, string, error) {
	file, resp, err := s.client.RepositoryFiles.GetFile(
		s.project, filePath(s.directory, name),
		&gitlab.GetFileOptions{Ref: gitlab.Ptr(s.branch)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, "", fmt.Errorf("%w: %s", document.ErrNotFound, name)
		}
		return nil, "", fmt.Errorf("fetching %s: %w", name, err)
	}

	raw, err := base64.StdEncoding.DecodeString(file.Content)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", name, err)
	}
	doc, err := document.UnmarshalYAML(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", name, err)
	}
	return doc, file.LastCommitID, nil
}

// Commit writes the document, creating the file when baseRevision is empty
// and updating it otherwise. GitLab rejects an update whose LastCommitID
// is stale; that surfaces as ErrRevisionConflict.
func (s *GitLabStore) Commit(ctx context.Context, name string, doc document.Document, baseRevision, message string) (string, error) {
	raw, err := document.MarshalYAML(doc)
	if err != nil {
		return "", err
	}
	path := filePath(s.directory, name)

	if baseRevision == "" {
		_, resp, err := s.client.RepositoryFiles.CreateFile(
			s.project, path,
			&gitlab.CreateFileOptions{
				Branch:        gitlab.Ptr(s.branch),
				Content:       gitlab.Ptr(string(raw)),
				CommitMessage: gitlab.Ptr(message),
				AuthorName:    gitlab.Ptr(s.committerName),
				AuthorEmail:   gitlab.Ptr(s.committerEmail),
			},
			gitlab.WithContext(ctx),
		)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusBadRequest {
				return "", fmt.Errorf("%w: %s already exists", ErrRevisionConflict, name)
			}
			return "", fmt.Errorf("creating %s: %w", name, err)
		}
		return s.headCommitID(ctx, path)
	}

	_, resp, err := s.client.RepositoryFiles.UpdateFile(
		s.project, path,
		&gitlab.UpdateFileOptions{
			Branch:        gitlab.Ptr(s.branch),
			Content:       gitlab.Ptr(string(raw)),
			CommitMessage: gitlab.Ptr(message),
			LastCommitID:  gitlab.Ptr(baseRevision),
			AuthorName:    gitlab.Ptr(s.committerName),
			AuthorEmail:   gitlab.Ptr(s.committerEmail),
		},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusBadRequest {
			return "", fmt.Errorf("%w: %s", ErrRevisionConflict, name)
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", document.ErrNotFound, name)
		}
		return "", fmt.Errorf("updating %s: %w", name, err)
	}
	return s.headCommitID(ctx, path)
}

// headCommitID re-reads the file metadata to learn the commit that the
// write produced; the files API does not return it directly.
func (s *GitLabStore) headCommitID(ctx context.Context, path string) (string, error) {
	file, _, err := s.client.RepositoryFiles.GetFileMetaData(
		s.project, path,
		&gitlab.GetFileMetaDataOptions{Ref: gitlab.Ptr(s.branch)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("reading back revision: %w", err)
	}
	return file.LastCommitID, nil
}
