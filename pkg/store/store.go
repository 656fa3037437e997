package store

import "tower-admin/pkg/model"

// Store defines the persistence layer for the admin backend. The primary
// implementation is GORM/MySQL; an in-memory variant backs tests and dev
// mode, and a Consul KV variant is available behind the consul build tag.
type Store interface {
	CreateInstance(model.Instance) (model.Instance, error)
	UpdateInstance(model.Instance) (model.Instance, error)
	DeleteInstance(id uint) error
	GetInstance(id uint) (model.Instance, bool, error)
	GetInstanceByName(name string) (model.Instance, bool, error)
	ListInstances() ([]model.Instance, error)

	CreateCredentialType(model.CredentialType) (model.CredentialType, error)
	UpdateCredentialType(model.CredentialType) (model.CredentialType, error)
	DeleteCredentialType(id uint) error
	GetCredentialType(id uint) (model.CredentialType, bool, error)
	ListCredentialTypes() ([]model.CredentialType, error)

	CreateCredential(model.Credential) (model.Credential, error)
	UpdateCredential(model.Credential) (model.Credential, error)
	DeleteCredential(id uint) error
	GetCredential(id uint) (model.Credential, bool, error)
	ListCredentials() ([]model.Credential, error)

	CreateEnvironment(model.ExecutionEnvironment) (model.ExecutionEnvironment, error)
	UpdateEnvironment(model.ExecutionEnvironment) (model.ExecutionEnvironment, error)
	DeleteEnvironment(id uint) error
	GetEnvironment(id uint) (model.ExecutionEnvironment, bool, error)
	ListEnvironments() ([]model.ExecutionEnvironment, error)

	CreateUser(model.User) (model.User, error)
	UpdateUser(model.User) (model.User, error)
	DeleteUser(id uint) error
	GetUser(id uint) (model.User, bool, error)
	GetUserByName(username string) (model.User, bool, error)
	ListUsers() ([]model.User, error)

	AppendAudit(model.AuditEntry) error
	ListAudit(limit int) ([]model.AuditEntry, error)
}

// NewMemory constructs the in-memory implementation.
func NewMemory() Store {
	return NewMemoryStore()
}
