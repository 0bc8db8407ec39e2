// Package usecase contains the synchronization orchestration: one full,
// atomic refresh of the local mirror from the Clockify API.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/domain"
	"github.com/jordanamos/clockify-invoice/internal/ports"
)

// ValidationError reports structurally invalid synchronized data: a user
// without an id, or no resolvable workspace.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sync: validation failed: %s", e.Reason)
}

// SyncUseCase coordinates fetching from Clockify and refreshing the mirror.
type SyncUseCase struct {
	Log      *slog.Logger
	Clockify ports.ClockifyClient
	Store    ports.Mirror
}

// Run performs one full refresh. The backing file is snapshotted first and
// restored on any failure, so the operation is all-or-nothing from the
// caller's perspective. Errors from the client and store propagate
// unchanged after the rollback.
func (uc *SyncUseCase) Run(ctx context.Context) (err error) {
	if uc.Clockify == nil || uc.Store == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}

	backup, err := uc.Store.Snapshot()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			uc.Log.Warn("sync failed, restoring backup", slog.String("error", err.Error()))
			if restoreErr := uc.Store.Restore(backup); restoreErr != nil {
				err = errors.Join(err, restoreErr)
			}
			return
		}
		err = uc.Store.Discard(backup)
	}()
	defer uc.Store.InvalidateCache()

	uc.Log.Info("syncing the local store with clockify")

	if err = uc.Store.ClearMirroredTables(ctx); err != nil {
		return err
	}

	user, err := uc.Clockify.GetUser(ctx)
	if err != nil {
		return err
	}
	if user.ID == "" {
		return &ValidationError{Reason: "user has no id"}
	}
	workspaceID := user.Workspace()
	if workspaceID == "" {
		return &ValidationError{Reason: fmt.Sprintf("user %s has no workspace", user.ID)}
	}
	if err = uc.Store.InsertUser(ctx, user); err != nil {
		return err
	}

	workspaces, err := uc.Clockify.GetWorkspaces(ctx)
	if err != nil {
		return err
	}
	if err = uc.Store.InsertWorkspaces(ctx, workspaces); err != nil {
		return err
	}

	fetched, err := uc.Clockify.GetTimeEntries(ctx, workspaceID, user.ID, nil, nil)
	if err != nil {
		return err
	}
	entries := uc.localize(fetched, user.ID, workspaceID)
	if err = uc.Store.InsertTimeEntries(ctx, entries); err != nil {
		return err
	}

	uc.Log.Info("sync completed",
		slog.Int("workspaces", len(workspaces)),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// localize prepares fetched entries for the mirror: still-running entries
// (no end time) are skipped, timestamps are converted from the remote UTC
// convention to local wall-clock time, and the duration is recomputed as
// end minus start regardless of what the remote reported.
func (uc *SyncUseCase) localize(fetched []domain.TimeEntry, userID, workspaceID string) []domain.TimeEntry {
	entries := make([]domain.TimeEntry, 0, len(fetched))
	for _, e := range fetched {
		if e.End == nil {
			// No end date. Is the timer still going?
			uc.Log.Debug("skipping running time entry", slog.String("id", e.ID))
			continue
		}
		start := e.Start.In(time.Local)
		end := e.End.In(time.Local)
		entries = append(entries, domain.TimeEntry{
			ID:          e.ID,
			Start:       start,
			End:         &end,
			DurationSec: int64(end.Sub(start).Seconds()),
			Description: e.Description,
			UserID:      userID,
			WorkspaceID: workspaceID,
		})
	}
	return entries
}
