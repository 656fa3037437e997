package api

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/auth"
	"tower-admin/pkg/model"
)

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// handleUsers is admin-only; viewers get 403 on every method.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	if claims.Role != model.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	id, hasID := resourceID(r.URL.Path, "/api/users/")

	switch {
	case !hasID && r.Method == http.MethodGet:
		users, err := s.Store.ListUsers()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, users)

	case !hasID && r.Method == http.MethodPost:
		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			writeDetail(w, http.StatusBadRequest, "username and password are required")
			return
		}
		if req.Role == "" {
			req.Role = model.RoleViewer
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		created, err := s.Store.CreateUser(model.User{
			Username:     req.Username,
			Email:        req.Email,
			Role:         req.Role,
			PasswordHash: string(hash),
		})
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Recorder.Record(claims.Username, model.ActionCreated, created, nil)
		writeJSON(w, http.StatusCreated, created)

	case hasID && r.Method == http.MethodGet:
		u, ok, err := s.Store.GetUser(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, u)

	case hasID && r.Method == http.MethodPut:
		old, ok, err := s.Store.GetUser(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		req := userRequest{Username: old.Username, Email: old.Email, Role: old.Role}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid payload")
			return
		}
		updated := old
		updated.Username = req.Username
		updated.Email = req.Email
		updated.Role = req.Role
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "failed to hash password")
				return
			}
			updated.PasswordHash = string(hash)
		}
		saved, err := s.Store.UpdateUser(updated)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to update user")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionUpdated, saved, audit.Diff(old, saved))
		writeJSON(w, http.StatusOK, saved)

	case hasID && r.Method == http.MethodDelete:
		u, ok, err := s.Store.GetUser(id)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.Recorder.Record(claims.Username, model.ActionDeleted, u, nil)
		if err := s.Store.DeleteUser(id); err != nil {
			writeDetail(w, http.StatusInternalServerError, "failed to delete user")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
