package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/joaovitor3/osm-tm-communication/internal/archive"
	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

// contentTypes are the top-level document keys a PATCH may address.
var contentTypes = map[string]bool{
	"project":      true,
	"organisation": true,
	"organiser":    true,
}

// handleCreateDocument archives a complete project document as a fresh
// YAML file and records it against the calling task manager.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := validateDocument(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := archive.DocumentFileName(id)
	revision, err := s.archive.Commit(r.Context(), name, doc, "", fmt.Sprintf("Add project %d", id))
	if err != nil {
		s.writeError(w, err)
		return
	}

	record, err := s.store.CreateDocument(name, revision, callerID(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.recordUsers(doc)

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       record.ID,
		"file":     name,
		"revision": revision,
	})
}

// handleUpdateDocument merges a partial document into the archived file.
// The contentType query parameters name which top-level keys the partial
// may touch; everything else in the body is dropped before the merge.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("projectID"))
	if err != nil {
		s.writeError(w, badRequestf("project id %q is not a number", r.PathValue("projectID")))
		return
	}
	kinds := r.URL.Query()["contentType"]
	if len(kinds) == 0 {
		s.writeError(w, badRequestf("missing contentType parameter"))
		return
	}
	for _, kind := range kinds {
		if !contentTypes[kind] {
			s.writeError(w, badRequestf("unknown contentType %q", kind))
			return
		}
	}

	partial, err := decodeDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	filtered := document.Document{}
	for _, kind := range kinds {
		if v, ok := partial[kind]; ok {
			filtered[kind] = v
		}
	}

	name := archive.DocumentFileName(id)
	base, revision, err := s.archive.Fetch(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	merged := document.Merge(base, filtered)
	newRevision, err := s.archive.Commit(r.Context(), name, merged, revision,
		fmt.Sprintf("Update project %d", id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.recordUsers(filtered)

	writeJSON(w, http.StatusOK, map[string]string{
		"file":     name,
		"revision": newRevision,
	})
}

// handlePublishPages documents a new project on the wiki: overview row,
// organisation activity page, project page.
func (s *Server) handlePublishPages(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := validateDocument(doc); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.publisher.PublishProject(r.Context(), doc); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "success"})
}

// handleUpdatePages patches the project page named by the path with a
// partial document.
func (s *Server) handleUpdatePages(w http.ResponseWriter, r *http.Request) {
	partial, err := decodeDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The page is addressed by the path; the body need not repeat it.
	project, _ := partial["project"].(map[string]any)
	if project == nil {
		project = map[string]any{}
		partial["project"] = project
	}
	if _, ok := project["title"]; !ok {
		project["title"] = r.PathValue("title")
	}

	if err := s.publisher.UpdateProject(r.Context(), partial); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

// validateDocument checks the fields every create flow needs and returns
// the numeric project id.
func validateDocument(doc document.Document) (int, error) {
	id, ok := projectID(doc)
	if !ok {
		return 0, badRequestf("document carries no numeric project.id")
	}
	for key, field := range map[string]string{
		"project":      "title",
		"organisation": "name",
		"organiser":    "name",
	} {
		if doc.String(key, field) == "" {
			return 0, badRequestf("document carries no %s.%s", key, field)
		}
	}
	return id, nil
}

// projectID reads project.id across the decoder's number shapes.
func projectID(doc document.Document) (int, bool) {
	switch v := doc.Section("project")["id"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	default:
		return 0, false
	}
}

// recordUsers upserts every contributor named by the document. Failures
// are logged, not fatal: the archive write already happened and user
// rows are bookkeeping.
func (s *Server) recordUsers(doc document.Document) {
	for _, entry := range doc.List("project", "users") {
		user, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		osmID, ok := user["osmId"].(float64)
		if !ok {
			continue
		}
		username, _ := user["username"].(string)
		if err := s.store.UpsertUser(int64(osmID), username); err != nil {
			log.Printf("WARNING: record user %v: %v", user["osmId"], err)
		}
	}
}
