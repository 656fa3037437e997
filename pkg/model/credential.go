package model

import "time"

// Credential is a stored secret usable against remote instances.
type Credential struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128" json:"name"`
	Type        string    `json:"type"`
	Username    string    `json:"username"`
	Password    string    `json:"password,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe for API responses (password stripped).
func (c Credential) Sanitized() Credential {
	c.Password = ""
	return c
}

func (c Credential) AuditObjectType() string { return "Credential" }
func (c Credential) AuditObjectID() uint     { return c.ID }
func (c Credential) AuditObjectRepr() string { return c.Name }

func (c Credential) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"name":        c.Name,
		"type":        c.Type,
		"username":    c.Username,
		"description": c.Description,
	}
}
