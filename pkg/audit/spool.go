package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"tower-admin/pkg/model"
)

// Spool is a local sqlite journal for audit entries that could not be
// written to the primary store. Best-effort only: spool failures are
// logged, never raised.
type Spool struct {
	path string
	once sync.Once
	db   *sql.DB
}

func NewSpool(path string) *Spool {
	return &Spool{path: path}
}

func (s *Spool) init() {
	s.once.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			log.Printf("audit spool mkdir failed: %v", err)
			return
		}
		dsn := "file:" + s.path + "?_pragma=busy_timeout=5000"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Printf("audit spool open failed: %v", err)
			return
		}
		db.SetMaxOpenConns(1)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("audit spool ping failed: %v", err)
			_ = db.Close()
			return
		}
		if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audit_spool(actor TEXT, action TEXT, object_type TEXT, object_id INTEGER, object_repr TEXT, changes TEXT, ts INTEGER)`); err != nil {
			log.Printf("audit spool schema failed: %v", err)
			_ = db.Close()
			return
		}
		s.db = db
	})
}

// Append journals one entry.
func (s *Spool) Append(e model.AuditEntry) {
	s.init()
	if s.db == nil {
		return
	}
	changes, _ := json.Marshal(e.Changes)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_spool(actor, action, object_type, object_id, object_repr, changes, ts) VALUES(?,?,?,?,?,?,?)`,
		e.Actor, e.Action, e.ObjectType, e.ObjectID, e.ObjectRepr, string(changes), e.Timestamp.Unix())
	if err != nil {
		log.Printf("audit spool insert failed: %v", err)
	}
}

// Drain replays spooled entries into the sink and removes the ones that
// made it. Called on startup once the primary store is reachable again.
func (s *Spool) Drain(sink Sink) int {
	s.init()
	if s.db == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT rowid, actor, action, object_type, object_id, object_repr, changes, ts FROM audit_spool ORDER BY rowid`)
	if err != nil {
		return 0
	}
	defer rows.Close()

	type spooled struct {
		rowid int64
		entry model.AuditEntry
	}
	var pending []spooled
	for rows.Next() {
		var sp spooled
		var changes string
		var ts int64
		if err := rows.Scan(&sp.rowid, &sp.entry.Actor, &sp.entry.Action, &sp.entry.ObjectType, &sp.entry.ObjectID, &sp.entry.ObjectRepr, &changes, &ts); err != nil {
			continue
		}
		sp.entry.Timestamp = time.Unix(ts, 0)
		_ = json.Unmarshal([]byte(changes), &sp.entry.Changes)
		pending = append(pending, sp)
	}

	drained := 0
	for _, sp := range pending {
		if err := sink.AppendAudit(sp.entry); err != nil {
			break
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_spool WHERE rowid=?`, sp.rowid); err != nil {
			break
		}
		drained++
	}
	if drained > 0 {
		log.Printf("audit spool drained %d entries", drained)
	}
	return drained
}
