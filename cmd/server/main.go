package main

import (
	"flag"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tower-admin/pkg/api"
	"tower-admin/pkg/audit"
	"tower-admin/pkg/db"
	"tower-admin/pkg/model"
	"tower-admin/pkg/store"
	"tower-admin/pkg/version"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	storeType := flag.String("store", "mysql", "store backend: mysql|memory|consul (consul requires build tag consul)")
	consulAddr := flag.String("consul-addr", "127.0.0.1:8500", "consul address (when store=consul)")
	tlsCert := flag.String("tls-cert", "", "TLS cert path (enables HTTPS if set with --tls-key)")
	tlsKey := flag.String("tls-key", "", "TLS key path (enables HTTPS if set with --tls-cert)")
	clientCA := flag.String("client-ca", "", "require and verify client certs using this CA (optional)")
	seedAdmin := flag.String("seed-admin", "", "seed an admin account as user:password when no users exist")
	spoolPath := flag.String("audit-spool", "/var/lib/tower-admin/audit-spool.db", "local journal for audit entries the store rejected")
	flag.Parse()

	var st store.Store
	switch *storeType {
	case "mysql":
		gdb, err := db.Init()
		if err != nil {
			log.Fatalf("database init failed: %v", err)
		}
		st = store.NewGormStore(gdb)
	case "memory":
		st = store.NewMemoryStore()
	case "consul":
		st = store.NewConsulStore(*consulAddr)
	default:
		log.Fatalf("unsupported store type: %s", *storeType)
	}

	hub := api.NewEventsHub()
	recorder := audit.NewRecorder(st)
	recorder.Spool = audit.NewSpool(*spoolPath)
	recorder.Notify = hub.BroadcastAudit
	recorder.Spool.Drain(st)

	if *seedAdmin != "" {
		seedAdminUser(st, recorder, *seedAdmin)
	}

	mux := http.NewServeMux()
	srv := api.NewServer(st, recorder, hub)
	srv.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("tower-admin %s listening on %s (store=%s)", version.Version, *addr, *storeType)
	var err error
	if *tlsCert != "" && *tlsKey != "" {
		if *clientCA != "" {
			cfg, errTLS := api.ServerTLSConfig(*tlsCert, *tlsKey, *clientCA)
			if errTLS != nil {
				log.Fatalf("failed to build TLS config: %v", errTLS)
			}
			server.TLSConfig = cfg
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServeTLS(*tlsCert, *tlsKey)
		}
	} else {
		err = server.ListenAndServe()
	}
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// seedAdminUser creates the bootstrap admin when the user table is empty.
func seedAdminUser(st store.Store, recorder *audit.Recorder, raw string) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		log.Fatalf("invalid -seed-admin value; want user:password")
	}
	users, err := st.ListUsers()
	if err != nil {
		log.Fatalf("failed to list users: %v", err)
	}
	if len(users) > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}
	created, err := st.CreateUser(model.User{
		Username:     parts[0],
		Role:         model.RoleAdmin,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	recorder.Record("", model.ActionCreated, created, nil)
	log.Printf("seeded admin user %s", created.Username)
}
