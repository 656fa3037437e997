package api

import (
	"encoding/json"
	"net/http"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	id, hasID := resourceID(r.URL.Path, "/api/credentials/")

	switch {
	case !hasID && r.Method == http.MethodGet:
		creds, err := s.Store.ListCredentials()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to list credentials")
			return
		}
		out := make([]model.Credential, 0, len(creds))
		for _, c := range creds {
			out = append(out, c.Sanitized())
		}
		writeJSON(w, http.StatusOK, out)

	case !hasID && r.Method == http.MethodPost:
		var c model.Credential
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if c.Name == "" || c.Type == "" {
			writeDetail(w, http.StatusBadRequest, "name and type are required")
			return
		}
		created, err := s.Store.CreateCredential(c)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to create credential")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionCreated, created, nil)
		writeJSON(w, http.StatusCreated, created.Sanitized())

	case hasID && r.Method == http.MethodGet:
		c, ok, err := s.Store.GetCredential(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, c.Sanitized())

	case hasID && r.Method == http.MethodPut:
		old, ok, err := s.Store.GetCredential(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential")
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
		saved, err := s.Store.UpdateCredential(updated)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to update credential")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionUpdated, saved, audit.Diff(old, saved))
		writeJSON(w, http.StatusOK, saved.Sanitized())

	case hasID && r.Method == http.MethodDelete:
		c, ok, err := s.Store.GetCredential(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionDeleted, c, nil)
		if err := s.Store.DeleteCredential(id); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to delete credential")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
