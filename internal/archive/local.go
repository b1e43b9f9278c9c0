package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

// LocalStore archives documents in a git working tree on local disk. The
// blob hash of the committed file is the revision token. Useful for
// air-gapped deployments and for exercising the full flow in tests
// without a forge.
type LocalStore struct {
	workDir        string
	directory      string
	committerName  string
	committerEmail string
}

// LocalOptions configures a LocalStore.
type LocalOptions struct {
	Path           string // root of an existing git working tree
	Directory      string
	CommitterName  string
	CommitterEmail string
}

// NewLocalStore creates a store over an existing git working tree.
func NewLocalStore(opts LocalOptions) (*LocalStore, error) {
	if _, err := os.Stat(filepath.Join(opts.Path, ".git")); err != nil {
		return nil, fmt.Errorf("%s is not a git working tree: %w", opts.Path, err)
	}
	return &LocalStore{
		workDir:        opts.Path,
		directory:      opts.Directory,
		committerName:  opts.CommitterName,
		committerEmail: opts.CommitterEmail,
	}, nil
}

// Fetch reads and decodes the named document from the working tree and
// returns the committed blob hash as the revision token.
func (s *LocalStore) Fetch(ctx context.Context, name string) (document.Document, string, error) {
	rel := filePath(s.directory, name)
	raw, err := os.ReadFile(filepath.Join(s.workDir, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", document.ErrNotFound, name)
		}
		return nil, "", fmt.Errorf("reading %s: %w", name, err)
	}
	doc, err := document.UnmarshalYAML(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", name, err)
	}

	rev, err := s.blobHash(ctx, rel)
	if err != nil {
		return nil, "", err
	}
	return doc, rev, nil
}

// Commit writes the document atomically, stages it, and commits. When
// baseRevision is non-empty it must match the committed blob hash at write
// time or the commit fails with ErrRevisionConflict.
func (s *LocalStore) Commit(ctx context.Context, name string, doc document.Document, baseRevision, message string) (string, error) {
	rel := filePath(s.directory, name)

	if baseRevision != "" {
		current, err := s.blobHash(ctx, rel)
		if err != nil {
			return "", err
		}
		if current != baseRevision {
			return "", fmt.Errorf("%w: %s moved from %s to %s", ErrRevisionConflict, name, baseRevision, current)
		}
	}

	raw, err := document.MarshalYAML(doc)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(s.workDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(rel), err)
	}
	if err := atomic.WriteFile(abs, bytes.NewReader(raw)); err != nil {
		return "", fmt.Errorf("writing %s: %w", rel, err)
	}

	if _, err := s.git(ctx, "add", "--", rel); err != nil {
		return "", err
	}
	author := fmt.Sprintf("%s <%s>", s.committerName, s.committerEmail)
	if _, err := s.git(ctx, "commit", "-m", message, "--author", author, "--", rel); err != nil {
		return "", err
	}
	return s.blobHash(ctx, rel)
}

// blobHash returns the committed (HEAD) blob hash of a tracked file.
func (s *LocalStore) blobHash(ctx context.Context, rel string) (string, error) {
	out, err := s.git(ctx, "rev-parse", "HEAD:"+rel)
	if err != nil {
		return "", fmt.Errorf("resolving revision of %s: %w", rel, err)
	}
	return strings.TrimSpace(out), nil
}

func (s *LocalStore) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.workDir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+s.committerName,
		"GIT_COMMITTER_EMAIL="+s.committerEmail,
	)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", args[0], string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
