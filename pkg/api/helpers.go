package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tower-admin/pkg/reconcile"
	"tower-admin/pkg/tower"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusForError translates the error taxonomy into stable status codes.
// Only the human-readable message is surfaced, never internals.
func statusForError(err error) int {
	var cfg *tower.ConfigurationError
	var conn *tower.ConnectionError
	var val *reconcile.ValidationError
	var nf *reconcile.NotFoundError
	switch {
	case errors.As(err, &val), errors.As(err, &cfg):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &conn):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// resourceID extracts the trailing numeric segment of a collection path,
// e.g. /api/instances/7/ -> 7. Returns false for the bare collection.
// A non-numeric suffix yields id 0, which no record carries, so item
// lookups fall through to 404.
func resourceID(path, prefix string) (uint, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return 0, false
	}
	id, _ := strconv.ParseUint(rest, 10, 32)
	return uint(id), true
}
