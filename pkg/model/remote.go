package model

// RemoteCredentialType is a credential type as reported by a remote
// instance's API. It exists only for the duration of a reconciliation
// call and is never persisted.
type RemoteCredentialType struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
}
