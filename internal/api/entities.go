package api

import (
	"net/http"

	"github.com/joaovitor3/osm-tm-communication/internal/store"
)

// handleIssueToken exchanges a known task manager id for a signed
// session token.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tm, err := s.store.GetTaskManager(req.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"token": s.signer.GenerateToken(tm.ID),
	})
}

func (s *Server) handleListTaskManagers(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.ListTaskManagers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskManagersJSON(all))
}

func (s *Server) handleCreateTaskManager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		OrganiserID string `json:"organiser_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, badRequestf("task manager needs a name"))
		return
	}
	// The owning organiser must exist before a task manager can register.
	if _, err := s.store.GetOrganiser(req.OrganiserID); err != nil {
		s.writeError(w, err)
		return
	}
	tm, err := s.store.CreateTaskManager(req.Name, req.OrganiserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskManagerJSON(tm))
}

func (s *Server) handleGetTaskManager(w http.ResponseWriter, r *http.Request) {
	tm, err := s.store.GetTaskManager(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskManagerJSON(tm))
}

func (s *Server) handleUpdateTaskManager(w http.ResponseWriter, r *http.Request) {
	tm, err := s.store.GetTaskManager(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		OrganiserID string `json:"organiser_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name != "" {
		tm.Name = req.Name
	}
	if req.OrganiserID != "" {
		if _, err := s.store.GetOrganiser(req.OrganiserID); err != nil {
			s.writeError(w, err)
			return
		}
		tm.OrganiserID = req.OrganiserID
	}
	if err := s.store.UpdateTaskManager(tm); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskManagerJSON(tm))
}

func (s *Server) handleDeleteTaskManager(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTaskManager(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrganisers(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.ListOrganisers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]map[string]string, 0, len(all))
	for _, org := range all {
		out = append(out, organiserJSON(org))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateOrganiser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Link string `json:"link"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, badRequestf("organiser needs a name"))
		return
	}
	org, err := s.store.CreateOrganiser(req.Name, req.Link)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, organiserJSON(org))
}

func (s *Server) handleGetOrganiser(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.GetOrganiser(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, organiserJSON(org))
}

func (s *Server) handleUpdateOrganiser(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.GetOrganiser(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
		Link string `json:"link"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name != "" {
		org.Name = req.Name
	}
	if req.Link != "" {
		org.Link = req.Link
	}
	if err := s.store.UpdateOrganiser(org); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, organiserJSON(org))
}

func (s *Server) handleDeleteOrganiser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOrganiser(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskManagerJSON(tm store.TaskManager) map[string]string {
	return map[string]string{
		"id":           tm.ID,
		"name":         tm.Name,
		"organiser_id": tm.OrganiserID,
	}
}

func taskManagersJSON(all []store.TaskManager) []map[string]string {
	out := make([]map[string]string, 0, len(all))
	for _, tm := range all {
		out = append(out, taskManagerJSON(tm))
	}
	return out
}

func organiserJSON(org store.Organiser) map[string]string {
	return map[string]string{
		"id":   org.ID,
		"name": org.Name,
		"link": org.Link,
	}
}
