package model

import (
	"fmt"
	"time"
)

// Instance is a configured remote Tower/AAP system whose credential types
// are tracked and reconciled against the canonical catalogue.
type Instance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128" json:"name"`
	URL         string    `json:"url"`
	Username    string    `json:"username"`
	Password    string    `json:"password,omitempty"`
	Region      string    `json:"region"`
	Environment string    `json:"environment"`
	Insecure    bool      `json:"insecure_skip_verify"` // opt-in for self-signed lab instances
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe for API responses (password stripped).
func (i Instance) Sanitized() Instance {
	i.Password = ""
	return i
}

func (i Instance) AuditObjectType() string { return "Instance" }
func (i Instance) AuditObjectID() uint     { return i.ID }
func (i Instance) AuditObjectRepr() string { return fmt.Sprintf("%s (%s)", i.Name, i.URL) }

// AuditFields lists the serializable fields tracked in update diffs.
// The password is deliberately excluded so secrets never land in the audit trail.
func (i Instance) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"name":                 i.Name,
		"url":                  i.URL,
		"username":             i.Username,
		"region":               i.Region,
		"environment":          i.Environment,
		"insecure_skip_verify": i.Insecure,
	}
}
