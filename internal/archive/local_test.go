package archive

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

func setupGitTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmds := [][]string{
		{"git", "init"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test"},
		{"git", "commit", "--allow-empty", "-m", "initial commit"},
	}
	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "cmd %v failed: %s", args, string(out))
	}
	return dir
}

func newLocal(t *testing.T, dir string) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(LocalOptions{
		Path:           dir,
		Directory:      "github_files",
		CommitterName:  "Docs Bot",
		CommitterEmail: "bot@example.org",
	})
	require.NoError(t, err)
	return s
}

func TestLocalStoreRejectsNonRepo(t *testing.T) {
	_, err := NewLocalStore(LocalOptions{Path: t.TempDir()})
	assert.Error(t, err)
}

func TestLocalStoreCommitAndFetch(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t, setupGitTree(t))

	doc := document.Document{
		"project": map[string]any{"id": 1, "status": "Active"},
	}
	rev, err := s.Commit(ctx, DocumentFileName(1), doc, "", "Add project 1")
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	got, gotRev, err := s.Fetch(ctx, DocumentFileName(1))
	require.NoError(t, err)
	assert.Equal(t, rev, gotRev)
	assert.Equal(t, "Active", got.String("project", "status"))
}

func TestLocalStoreFetchMissing(t *testing.T) {
	s := newLocal(t, setupGitTree(t))
	_, _, err := s.Fetch(context.Background(), "project99.yaml")
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestLocalStoreUpdateCarriesRevision(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t, setupGitTree(t))

	base := document.Document{"project": map[string]any{"id": 2, "status": "Active"}}
	rev1, err := s.Commit(ctx, DocumentFileName(2), base, "", "Add project 2")
	require.NoError(t, err)

	fetched, rev, err := s.Fetch(ctx, DocumentFileName(2))
	require.NoError(t, err)
	assert.Equal(t, rev1, rev)

	merged := document.Merge(fetched, document.Document{
		"project": map[string]any{"status": "Archived"},
	})
	rev2, err := s.Commit(ctx, DocumentFileName(2), merged, rev, "Update project 2")
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)

	got, _, err := s.Fetch(ctx, DocumentFileName(2))
	require.NoError(t, err)
	assert.Equal(t, "Archived", got.String("project", "status"))
}

func TestLocalStoreStaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t, setupGitTree(t))

	base := document.Document{"project": map[string]any{"id": 3, "status": "Active"}}
	rev1, err := s.Commit(ctx, DocumentFileName(3), base, "", "Add project 3")
	require.NoError(t, err)

	// A concurrent writer moves the file.
	other := document.Merge(base, document.Document{"project": map[string]any{"status": "Paused"}})
	_, err = s.Commit(ctx, DocumentFileName(3), other, rev1, "Update project 3")
	require.NoError(t, err)

	// Writing with the stale token must conflict, never retry.
	stale := document.Merge(base, document.Document{"project": map[string]any{"status": "Archived"}})
	_, err = s.Commit(ctx, DocumentFileName(3), stale, rev1, "Update project 3")
	assert.ErrorIs(t, err, ErrRevisionConflict)
}

func TestDocumentFileName(t *testing.T) {
	assert.Equal(t, "project42.yaml", DocumentFileName(42))

	// A committed file lands under the configured directory.
	dir := setupGitTree(t)
	s := newLocal(t, dir)
	_, err := s.Commit(context.Background(), DocumentFileName(42),
		document.Document{"project": map[string]any{"id": 42}}, "", "Add project 42")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "github_files", "project42.yaml"))
	assert.NoError(t, statErr)
}
