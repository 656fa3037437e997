package model

// Health classification for a canonical credential type across all
// configured instances. Thresholds are fixed design constants.
const (
	StatusGreen         = "Green"         // present on every instance
	StatusOrange        = "Orange"        // present on more than half
	StatusRed           = "Red"           // present on half or fewer
	StatusNotApplicable = "NotApplicable" // no instances configured
)

// ReconciliationResult reports one canonical type's presence across the
// configured instance set. PresentIn and MissingIn partition the full set;
// instances whose fetch failed appear in MissingIn annotated with the
// error message. Computed fresh on every call, never stored.
type ReconciliationResult struct {
	TypeID    uint     `json:"id"`
	TypeName  string   `json:"name"`
	Status    string   `json:"status"`
	PresentIn []string `json:"present_in_instances"`
	MissingIn []string `json:"missing_in_instances"`
}

// Per-instance outcomes of reconciliation repair actions.
const (
	OutcomeDuplicated       = "duplicated"
	OutcomeAlreadyExists    = "already_exists"
	OutcomeFound            = "found"
	OutcomeNotFound         = "not_found"
	OutcomeInstanceNotFound = "instance_not_found"
	OutcomeError            = "error"
)

// ActionOutcome is one instance's result for a duplicate or verify action.
type ActionOutcome struct {
	Instance string `json:"instance"`
	Status   string `json:"status"`
	Name     string `json:"name,omitempty"`    // remote's actual name, for verify hits
	Message  string `json:"message,omitempty"` // error detail
}
