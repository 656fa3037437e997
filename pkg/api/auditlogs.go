package api

import (
	"net/http"
	"strconv"

	"tower-admin/pkg/auth"
)

// handleAuditLogs lists entries newest first. The trail is append-only;
// no mutating methods exist on this resource.
func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.Store.ListAudit(limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
