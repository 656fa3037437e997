package api

import (
	"net/http"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/reconcile"
	"tower-admin/pkg/store"
	"tower-admin/pkg/tower"
)

// Server bundles the handler dependencies and wires the route table.
type Server struct {
	Store    store.Store
	Client   tower.Client
	Engine   *reconcile.Engine
	Recorder *audit.Recorder
	Hub      *EventsHub
}

func NewServer(st store.Store, rec *audit.Recorder, hub *EventsHub) *Server {
	return &Server{
		Store:    st,
		Engine:   reconcile.New(st, tower.Client{}),
		Recorder: rec,
		Hub:      hub,
	}
}

// RegisterRoutes wires the HTTP handlers on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("tower-admin backend"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/login/", s.handleLogin)
	mux.HandleFunc("/api/token/refresh/", s.handleTokenRefresh)
	mux.HandleFunc("/api/logout/", s.protected(s.handleLogout))
	mux.HandleFunc("/api/user-info/", s.handleUserInfo)

	mux.HandleFunc("/api/instances/", s.protected(s.handleInstances))
	mux.HandleFunc("/api/tower/", s.protected(s.handleInstances)) // legacy route alias
	mux.HandleFunc("/api/credentials/", s.protected(s.handleCredentials))
	mux.HandleFunc("/api/environments/", s.protected(s.handleEnvironments))
	mux.HandleFunc("/api/credential-types/", s.protected(s.handleCredentialTypes))
	mux.HandleFunc("/api/users/", s.protected(s.handleUsers))
	mux.HandleFunc("/api/audit-logs/", s.protected(s.handleAuditLogs))

	mux.HandleFunc("/api/tower-credentials/", s.protected(s.handleTowerCredentials))
	mux.HandleFunc("/api/credential-type-status/", s.protected(s.handleCredentialTypeStatus))
	mux.HandleFunc("/api/duplicate-credential-type/", s.protected(s.handleDuplicateCredentialType))
	mux.HandleFunc("/api/verify-credential-type/", s.protected(s.handleVerifyCredentialType))
	mux.HandleFunc("/api/test-connection/", s.protected(s.handleTestConnection))

	if s.Hub != nil {
		mux.HandleFunc("/api/events/ws", s.Hub.HandleWS)
	}
}
