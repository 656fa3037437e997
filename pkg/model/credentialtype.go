package model

import "time"

// CredentialType is the locally authoritative definition of a credential
// type. Remote instances are expected to carry a same-name type; the
// reconciliation engine reports where they do not.
//
// Name is intended to be unique per logical type but is not enforced by
// the schema; renamed remote types are handled through the alternate-name
// verification path instead.
type CredentialType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256" json:"name"`
	Description string    `json:"description"`
	Kind        string    `json:"kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c CredentialType) AuditObjectType() string { return "CredentialType" }
func (c CredentialType) AuditObjectID() uint     { return c.ID }
func (c CredentialType) AuditObjectRepr() string { return c.Name }

func (c CredentialType) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"kind":        c.Kind,
	}
}
