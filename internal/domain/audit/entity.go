package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

// ReasonDTRManualCorrection tags entries written by manual DTR edits.
const ReasonDTRManualCorrection = "DTR_MANUAL_CORRECTION"

// FieldChange is one changed column. Values are rendered as strings and
// nil means the column was null.
type FieldChange struct {
	Field string  `json:"field"`
	Old   *string `json:"old"`
	New   *string `json:"new"`
}

// Entry is one row in audit_logs.
type Entry struct {
	ID         string
	CompanyID  string
	TableName  string
	RecordID   string
	Action     Action
	ActorID    string
	ReasonCode string
	Changes    []FieldChange
	CreatedAt  time.Time
}

// Sink persists audit entries. Implementations must write inside the
// caller's transaction so the entry commits or rolls back with the change.
type Sink interface {
	Record(ctx context.Context, entry Entry) (Entry, error)
}
