package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tower-admin/pkg/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// handler is an authenticated handler; claims carry the acting user.
type handler func(w http.ResponseWriter, r *http.Request, claims *auth.Claims)

// protected enforces a valid bearer access token before dispatch.
func (s *Server) protected(next handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := bearerClaims(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next(w, r, claims)
	}
}

func bearerClaims(r *http.Request) (*auth.Claims, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	claims, err := auth.ParseAccess(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}
	user, ok, err := s.Store.GetUserByName(req.Username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}
	access, refresh, err := auth.GeneratePair(user.ID, user.Username, user.Role)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access":  access,
		"refresh": refresh,
		"user":    userInfo{Username: user.Username, Role: user.Role},
	})
}

func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh token is required"})
		return
	}
	claims, err := auth.ParseRefresh(req.Refresh)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
		return
	}
	access, refresh, err := auth.GeneratePair(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Tokens are stateless; the client discards its pair.
	writeDetail(w, http.StatusOK, "Logged out.")
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := bearerClaims(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, userInfo{Username: claims.Username, Role: claims.Role})
}
