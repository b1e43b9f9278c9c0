// Package archive persists project documents as YAML files in a versioned
// file store: the GitHub contents API, the GitLab repository files API, or
// a local git working tree. Every backend exchanges an opaque revision
// token (blob SHA or commit hash) captured on fetch and passed back
// unmodified on commit, so the store itself arbitrates concurrent writes.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

var (
	// ErrRevisionConflict is returned when the store rejects a commit
	// because the base revision moved. The caller decides whether to
	// refetch and retry; this package never does.
	ErrRevisionConflict = errors.New("archive: revision conflict")
)

// Store is the capability the document flows need from a file archive.
// Fetch returns the stored document together with the revision token that
// a later Commit of the same path must carry.
type Store interface {
	Fetch(ctx context.Context, name string) (document.Document, string, error)
	Commit(ctx context.Context, name string, doc document.Document, baseRevision, message string) (string, error)
}

// DocumentFileName is the archive file name for a project id, e.g.
// "project42.yaml".
func DocumentFileName(projectID int) string {
	return fmt.Sprintf("project%d.yaml", projectID)
}

// filePath joins the configured directory prefix with the file name.
func filePath(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
