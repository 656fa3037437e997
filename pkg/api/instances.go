package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	prefix := "/api/instances/"
	if strings.HasPrefix(r.URL.Path, "/api/tower/") {
		prefix = "/api/tower/"
	}
	id, hasID := resourceID(r.URL.Path, prefix)

	switch {
	case !hasID && r.Method == http.MethodGet:
		instances, err := s.Store.ListInstances()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to list instances")
			return
		}
		out := make([]model.Instance, 0, len(instances))
		for _, in := range instances {
			out = append(out, in.Sanitized())
		}
		writeJSON(w, http.StatusOK, out)

	case !hasID && r.Method == http.MethodPost:
		var in model.Instance
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if in.Name == "" || in.URL == "" {
			writeDetail(w, http.StatusBadRequest, "name and url are required")
			return
		}
		created, err := s.Store.CreateInstance(in)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Recorder.Record(claims.Username, model.ActionCreated, created, nil)
		writeJSON(w, http.StatusCreated, created.Sanitized())

	case hasID && r.Method == http.MethodGet:
		in, ok, err := s.Store.GetInstance(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load instance")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, in.Sanitized())

	case hasID && r.Method == http.MethodPut:
		old, ok, err := s.Store.GetInstance(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load instance")
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
		saved, err := s.Store.UpdateInstance(updated)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to update instance")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionUpdated, saved, audit.Diff(old, saved))
		writeJSON(w, http.StatusOK, saved.Sanitized())

	case hasID && r.Method == http.MethodDelete:
		in, ok, err := s.Store.GetInstance(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load instance")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionDeleted, in, nil)
		if err := s.Store.DeleteInstance(id); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to delete instance")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
