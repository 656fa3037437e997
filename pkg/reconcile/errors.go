package reconcile

import "fmt"

// ValidationError marks a malformed reconciliation request, surfaced
// before any remote call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks an unknown canonical credential type id.
type NotFoundError struct {
	TypeID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credential type %d not found", e.TypeID)
}
