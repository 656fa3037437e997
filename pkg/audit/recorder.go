package audit

import (
	"log"
	"reflect"
	"sync/atomic"
	"time"

	"tower-admin/pkg/model"
)

// Actor used when no human identity is attached to a mutation
// (seeding, scheduled jobs).
const SystemActor = "System"

// Target is implemented by every auditable entity.
type Target interface {
	AuditObjectType() string
	AuditObjectID() uint
	AuditObjectRepr() string
	AuditFields() map[string]interface{}
}

// Sink is the slice of the persistence layer the recorder writes to.
type Sink interface {
	AppendAudit(model.AuditEntry) error
}

// Recorder appends one immutable entry per committed CRUD mutation.
// Recording is best-effort: a store failure never propagates to the
// mutation path; the entry is journaled to the local spool instead and
// the failure counter is bumped for monitoring.
type Recorder struct {
	Store  Sink
	Spool  *Spool                 // optional fallback journal
	Notify func(model.AuditEntry) // optional live event hook

	failures atomic.Uint64
}

func NewRecorder(store Sink) *Recorder {
	return &Recorder{Store: store}
}

// Record stamps and persists one entry. Pass nil changes for creates and
// deletes; pass the Diff output for updates.
func (r *Recorder) Record(actor, action string, target Target, changes map[string]model.FieldChange) {
	if actor == "" {
		actor = SystemActor
	}
	entry := model.AuditEntry{
		Actor:      actor,
		Action:     action,
		ObjectType: target.AuditObjectType(),
		ObjectID:   target.AuditObjectID(),
		ObjectRepr: target.AuditObjectRepr(),
		Changes:    changes,
		Timestamp:  time.Now(),
	}
	if err := r.Store.AppendAudit(entry); err != nil {
		r.failures.Add(1)
		log.Printf("audit append failed (action=%s %s/%d): %v", action, entry.ObjectType, entry.ObjectID, err)
		if r.Spool != nil {
			r.Spool.Append(entry)
		}
	}
	if r.Notify != nil {
		r.Notify(entry)
	}
}

// Failures reports how many audit writes fell back to the spool.
func (r *Recorder) Failures() uint64 {
	return r.failures.Load()
}

// Diff compares two versions of the same entity and returns only the
// fields whose value actually changed. One helper serves every resource;
// each entity declares its tracked field set via AuditFields.
func Diff(before, after Target) map[string]model.FieldChange {
	old := before.AuditFields()
	now := after.AuditFields()
	changes := map[string]model.FieldChange{}
	for field, from := range old {
		to := now[field]
		if !reflect.DeepEqual(from, to) {
			changes[field] = model.FieldChange{From: from, To: to}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}
