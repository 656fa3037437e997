package api

import (
	"encoding/json"
	"net/http"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

func (s *Server) handleCredentialTypes(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	id, hasID := resourceID(r.URL.Path, "/api/credential-types/")

	switch {
	case !hasID && r.Method == http.MethodGet:
		types, err := s.Store.ListCredentialTypes()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to list credential types")
			return
		}
		writeJSON(w, http.StatusOK, types)

	case !hasID && r.Method == http.MethodPost:
		var ct model.CredentialType
		if err := json.NewDecoder(r.Body).Decode(&ct); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if ct.Name == "" {
			writeDetail(w, http.StatusBadRequest, "name is required")
			return
		}
		created, err := s.Store.CreateCredentialType(ct)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to create credential type")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionCreated, created, nil)
		writeJSON(w, http.StatusCreated, created)

	case hasID && r.Method == http.MethodGet:
		ct, ok, err := s.Store.GetCredentialType(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential type")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, ct)

	case hasID && r.Method == http.MethodPut:
		old, ok, err := s.Store.GetCredentialType(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential type")
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
		saved, err := s.Store.UpdateCredentialType(updated)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to update credential type")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionUpdated, saved, audit.Diff(old, saved))
		writeJSON(w, http.StatusOK, saved)

	case hasID && r.Method == http.MethodDelete:
		ct, ok, err := s.Store.GetCredentialType(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load credential type")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionDeleted, ct, nil)
		if err := s.Store.DeleteCredentialType(id); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to delete credential type")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
