package model

import "time"

// ExecutionEnvironment is a container image reference jobs run inside.
type ExecutionEnvironment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128" json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e ExecutionEnvironment) AuditObjectType() string { return "ExecutionEnvironment" }
func (e ExecutionEnvironment) AuditObjectID() uint     { return e.ID }
func (e ExecutionEnvironment) AuditObjectRepr() string { return e.Name }

func (e ExecutionEnvironment) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"name":        e.Name,
		"image":       e.Image,
		"description": e.Description,
	}
}
