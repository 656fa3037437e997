package model

import "time"

// Audit actions recorded for CRUD mutations.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// FieldChange holds the before/after values of one changed field.
type FieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// AuditEntry is the immutable record of one mutating action. Entries are
// appended when a mutation commits and are never altered afterwards.
type AuditEntry struct {
	ID         uint                   `gorm:"primaryKey" json:"id"`
	Actor      string                 `json:"user"`
	Action     string                 `json:"action"`
	ObjectType string                 `json:"object_type"`
	ObjectID   uint                   `json:"object_id"`
	ObjectRepr string                 `json:"object_repr"`
	Changes    map[string]FieldChange `gorm:"serializer:json" json:"changes"`
	Timestamp  time.Time              `json:"timestamp"`
}
