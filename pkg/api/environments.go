package api

import (
	"encoding/json"
	"net/http"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

func (s *Server) handleEnvironments(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	id, hasID := resourceID(r.URL.Path, "/api/environments/")

	switch {
	case !hasID && r.Method == http.MethodGet:
		envs, err := s.Store.ListEnvironments()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to list environments")
			return
		}
		writeJSON(w, http.StatusOK, envs)

	case !hasID && r.Method == http.MethodPost:
		var e model.ExecutionEnvironment
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if e.Name == "" || e.Image == "" {
			writeDetail(w, http.StatusBadRequest, "name and image are required")
			return
		}
		created, err := s.Store.CreateEnvironment(e)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to create environment")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionCreated, created, nil)
		writeJSON(w, http.StatusCreated, created)

	case hasID && r.Method == http.MethodGet:
		e, ok, err := s.Store.GetEnvironment(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load environment")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, e)

	case hasID && r.Method == http.MethodPut:
		old, ok, err := s.Store.GetEnvironment(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load environment")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		updated := old
		if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		updated.ID = old.ID
		saved, err := s.Store.UpdateEnvironment(updated)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to update environment")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionUpdated, saved, audit.Diff(old, saved))
		writeJSON(w, http.StatusOK, saved)

	case hasID && r.Method == http.MethodDelete:
		e, ok, err := s.Store.GetEnvironment(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load environment")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionDeleted, e, nil)
		if err := s.Store.DeleteEnvironment(id); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to delete environment")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
