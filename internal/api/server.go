// Package api exposes the documentation flows over a small JSON HTTP
// surface: archive document writes, wiki page publication, session
// tokens, and CRUD for the task manager and organiser records. Handlers
// orchestrate fetch, merge, render and write strictly in sequence and
// translate the collaborators' sentinel errors to status codes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/joaovitor3/osm-tm-communication/internal/archive"
	"github.com/joaovitor3/osm-tm-communication/internal/auth"
	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/mediawiki"
	"github.com/joaovitor3/osm-tm-communication/internal/store"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// Publisher is the slice of the wiki publishing flow the API needs.
// *wikipage.Publisher satisfies it; tests substitute a fake.
type Publisher interface {
	PublishProject(ctx context.Context, doc document.Document) error
	UpdateProject(ctx context.Context, partial document.Document) error
}

// Server wires the HTTP routes to the store, the document archive and
// the wiki publisher.
type Server struct {
	store     *store.Store
	archive   archive.Store
	signer    *auth.Signer
	publisher Publisher
	mux       *http.ServeMux
}

// NewServer builds the route table over the given collaborators.
func NewServer(st *store.Store, arch archive.Store, signer *auth.Signer, pub Publisher) *Server {
	s := &Server{
		store:     st,
		archive:   arch,
		signer:    signer,
		publisher: pub,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root handler for the API.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/auth/token", s.handleIssueToken)

	s.mux.HandleFunc("POST /api/v1/documents", s.requireAuth(s.handleCreateDocument))
	s.mux.HandleFunc("PATCH /api/v1/documents/{organiser}/{organisation}/{projectID}",
		s.requireAuth(s.handleUpdateDocument))

	s.mux.HandleFunc("POST /api/v1/wiki/pages", s.requireAuth(s.handlePublishPages))
	s.mux.HandleFunc("PATCH /api/v1/wiki/pages/{title}", s.requireAuth(s.handleUpdatePages))

	s.mux.HandleFunc("GET /api/v1/task-managers", s.handleListTaskManagers)
	s.mux.HandleFunc("POST /api/v1/task-managers", s.handleCreateTaskManager)
	s.mux.HandleFunc("GET /api/v1/task-managers/{id}", s.handleGetTaskManager)
	s.mux.HandleFunc("PATCH /api/v1/task-managers/{id}", s.handleUpdateTaskManager)
	s.mux.HandleFunc("DELETE /api/v1/task-managers/{id}", s.handleDeleteTaskManager)

	s.mux.HandleFunc("GET /api/v1/organisers", s.handleListOrganisers)
	s.mux.HandleFunc("POST /api/v1/organisers", s.handleCreateOrganiser)
	s.mux.HandleFunc("GET /api/v1/organisers/{id}", s.handleGetOrganiser)
	s.mux.HandleFunc("PATCH /api/v1/organisers/{id}", s.handleUpdateOrganiser)
	s.mux.HandleFunc("DELETE /api/v1/organisers/{id}", s.handleDeleteOrganiser)
}

type ctxKey int

const taskManagerKey ctxKey = 0

// requireAuth validates the "Authorization: Token <token>" header and
// stashes the authenticated task manager id in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
		if !ok {
			s.writeError(w, fmt.Errorf("%w: missing Token header", auth.ErrInvalidToken))
			return
		}
		id, err := s.signer.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			s.writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), taskManagerKey, id)
		next(w, r.WithContext(ctx))
	}
}

// callerID returns the task manager id requireAuth stored.
func callerID(ctx context.Context) string {
	id, _ := ctx.Value(taskManagerKey).(string)
	return id
}

// writeError maps a collaborator error to a status code: structural
// wikitext failures are the client's document problem, conflicts mean
// the target moved underneath the request, everything unexpected is 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, document.ErrNotFound),
		errors.Is(err, mediawiki.ErrPageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, archive.ErrRevisionConflict),
		errors.Is(err, mediawiki.ErrPageExists):
		status = http.StatusConflict
	case errors.Is(err, wikitext.ErrSectionNotFound),
		errors.Is(err, wikitext.ErrTableNotFound),
		errors.Is(err, wikitext.ErrMalformedTable),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("WARNING: request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// errBadRequest tags request validation failures for writeError.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARNING: encode response: %v", err)
	}
}

// decodeDocument reads the request body as a structured document.
func decodeDocument(r *http.Request) (document.Document, error) {
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		return nil, badRequestf("decode body: %v", err)
	}
	return document.Document(m), nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequestf("decode body: %v", err)
	}
	return nil
}
