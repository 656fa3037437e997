package api

import (
	"encoding/json"
	"net/http"

	"tower-admin/pkg/auth"
	"tower-admin/pkg/tower"
)

// handleCredentialTypeStatus reports every canonical type's presence
// across all configured instances.
func (s *Server) handleCredentialTypeStatus(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results, err := s.Engine.ComputeStatus(r.Context())
	if err != nil {
		writeDetail(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDuplicateCredentialType(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID        uint     `json:"id"`
		Instances []string `json:"missing_in_instances"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	outcomes, err := s.Engine.DuplicateMissing(r.Context(), req.ID, req.Instances)
	if err != nil {
		writeDetail(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": outcomes})
}

func (s *Server) handleVerifyCredentialType(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID              uint     `json:"id"`
		AlternativeName string   `json:"alternative_name"`
		Instances       []string `json:"missing_in_instances"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	outcomes, err := s.Engine.VerifyByAlternateName(r.Context(), req.ID, req.AlternativeName, req.Instances)
	if err != nil {
		writeDetail(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": outcomes})
}

// handleTestConnection probes an instance with caller-supplied
// credentials before it is saved. The remote classification is passed
// through as the response status.
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		URL      string `json:"url"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "URL, username, and password are required."})
		return
	}
	status, message := tower.TestConnection(r.Context(), req.URL, req.Username, req.Password)
	writeJSON(w, status, map[string]string{"message": message})
}

// handleTowerCredentials proxies the first configured instance's
// credential listing using its stored credentials.
func (s *Server) handleTowerCredentials(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	instances, err := s.Store.ListInstances()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to list instances")
		return
	}
	if len(instances) == 0 {
		writeDetail(w, http.StatusServiceUnavailable, "No instance configured.")
		return
	}
	results, err := s.Client.FetchCredentials(r.Context(), instances[0])
	if err != nil {
		writeDetail(w, http.StatusBadGateway, "Error contacting instance: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}
