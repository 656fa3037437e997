package model

import "time"

// Role values understood by the API layer.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64" json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) AuditObjectType() string { return "User" }
func (u User) AuditObjectID() uint     { return u.ID }
func (u User) AuditObjectRepr() string { return u.Username }

func (u User) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	}
}
