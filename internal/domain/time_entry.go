package domain

import "time"

// TimeEntry represents a Clockify time entry in the domain.
//
// Entries fetched from the remote API may still be running, in which case End
// is nil. Rows persisted to the local store always have an End and a
// DurationSec recomputed as End minus Start; the duration reported by the
// remote API is never trusted.
type TimeEntry struct {
	ID          string
	Start       time.Time
	End         *time.Time // nil while the timer is running
	DurationSec int64
	Description string
	UserID      string
	WorkspaceID string
}

// Completed reports whether the entry has finished, i.e. has an end time.
func (e TimeEntry) Completed() bool {
	return e.End != nil
}
