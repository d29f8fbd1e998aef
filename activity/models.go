package activity

import "time"

// Action types written to the activity log.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// Entry is a row to be appended to the activity log.
type Entry struct {
	UserID      int64
	ActionType  string
	Description string
	DocumentID  *int64
}

// Record mirrors an activity_log row joined with the document number it
// refers to, if any.
type Record struct {
	ID             int64
	ActionType     string
	Description    string
	CreatedAt      time.Time
	DocumentNumber *string
}
