package ports

import (
	"context"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/domain"
)

// ClockifyClient defines the read operations against the remote
// time-tracking API. Exactly one concrete adapter ships
// (internal/adapter/clockify); the interface exists so the synchronizer can
// be exercised against a fake.
type ClockifyClient interface {
	GetUser(ctx context.Context) (domain.User, error)
	GetWorkspaces(ctx context.Context) ([]domain.Workspace, error)
	GetTimeEntries(ctx context.Context, workspaceID, userID string, since, until *time.Time) ([]domain.TimeEntry, error)
}

// Mirror is the slice of the local store the synchronizer writes to.
// A full refresh wipes and repopulates the mirrored tables; the backup
// bracket (Snapshot/Restore/Discard) makes the whole operation atomic at
// the file level.
type Mirror interface {
	// Snapshot copies the backing file to a temporary sibling and returns
	// its path. Restore puts the snapshot back in place of the backing
	// file; Discard removes it.
	Snapshot() (string, error)
	Restore(backup string) error
	Discard(backup string) error

	ClearMirroredTables(ctx context.Context) error
	InsertUser(ctx context.Context, user domain.User) error
	InsertWorkspaces(ctx context.Context, workspaces []domain.Workspace) error
	InsertTimeEntries(ctx context.Context, entries []domain.TimeEntry) error

	// InvalidateCache drops any cached user/workspace lookups so reads after
	// a refresh see the new rows.
	InvalidateCache()
}
