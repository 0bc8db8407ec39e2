// Package sqlite implements the local store on a single-file SQLite
// database. It owns all persistence and query logic; no other component
// opens a connection to the backing file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/jordanamos/clockify-invoice/db/migrations"
	"github.com/jordanamos/clockify-invoice/internal/domain"
	"github.com/jordanamos/clockify-invoice/internal/invoice"
)

// LocalTimeFormat is how wall-clock timestamps are stored in time_entry.
const LocalTimeFormat = "2006-01-02 15:04:05"

const dateFormat = "2006-01-02"

// Store persists mirrored Clockify records and derived invoices. Every
// operation opens a short-lived scoped connection; nothing is held across
// remote I/O, which keeps the file safe to snapshot and restore.
type Store struct {
	path string
	log  *slog.Logger

	// cached single-tenant lookups, invalidated by InvalidateCache
	userID      string
	workspaceID string
}

// Open ensures the schema exists at path and returns a Store. Safe to call
// on every startup; migrations are idempotent.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, storageErr("open", errors.New("database path is required"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, storageErr("open", err)
	}
	s := &Store{path: path, log: log}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureSchema() error {
	db, err := s.connect()
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return storageErr("migrate", err)
	}
	source, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return storageErr("migrate", err)
	}
	defer source.Close()

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return storageErr("migrate", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return storageErr("migrate", err)
	}
	return nil
}

// connect opens a scoped connection to the backing file. Callers close it
// at the end of the logical operation.
func (s *Store) connect() (*sql.DB, error) {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return nil, storageErr("connect", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)", filepath.ToSlash(abs))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageErr("connect", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageErr("connect", err)
	}
	return db, nil
}

// withTx runs fn inside one transaction on a scoped connection. Commit on
// success, rollback on any error.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	db, err := s.connect()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}
	return nil
}

// ClearMirroredTables deletes all rows from time_entry, user and workspace.
// Used only by the synchronizer immediately before a full refresh.
func (s *Store) ClearMirroredTables(ctx context.Context) error {
	return s.withTx(ctx, "clear mirrored tables", func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM time_entry",
			"DELETE FROM user",
			"DELETE FROM workspace",
		} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertUser writes the single mirrored user row.
func (s *Store) InsertUser(ctx context.Context, u domain.User) error {
	return s.withTx(ctx, "insert user", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO user(id, name, email, default_workspace, active_workspace, time_zone) VALUES(?,?,?,?,?,?)",
			u.ID, u.Name, u.Email, nullable(u.DefaultWorkspace), nullable(u.ActiveWorkspace), u.TimeZone,
		)
		return err
	})
}

// InsertWorkspaces writes all mirrored workspace rows.
func (s *Store) InsertWorkspaces(ctx context.Context, workspaces []domain.Workspace) error {
	return s.withTx(ctx, "insert workspaces", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO workspace(id, name) VALUES(?,?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, w := range workspaces {
			if _, err := stmt.ExecContext(ctx, w.ID, w.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertTimeEntries writes mirrored time entry rows. Every entry must be
// completed; rows with a missing end time are never written.
func (s *Store) InsertTimeEntries(ctx context.Context, entries []domain.TimeEntry) error {
	return s.withTx(ctx, "insert time entries", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO time_entry(id, start_time, end_time, duration_seconds, description, user, workspace) VALUES(?,?,?,?,?,?,?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range entries {
			if e.End == nil {
				return fmt.Errorf("time entry %s has no end time", e.ID)
			}
			if _, err := stmt.ExecContext(ctx,
				e.ID,
				e.Start.Format(LocalTimeFormat),
				e.End.Format(LocalTimeFormat),
				e.DurationSec,
				e.Description,
				e.UserID,
				e.WorkspaceID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// InvalidateCache drops the cached user/workspace ids. Must be called after
// any synchronization.
func (s *Store) InvalidateCache() {
	s.userID = ""
	s.workspaceID = ""
}

// UserID returns the single mirrored user's id, cached for the life of the
// Store instance.
func (s *Store) UserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	db, err := s.connect()
	if err != nil {
		return "", err
	}
	defer db.Close()

	var id string
	err = db.QueryRowContext(ctx, "SELECT id FROM user").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoUser
	}
	if err != nil {
		return "", storageErr("user id", err)
	}
	s.userID = id
	return id, nil
}

// WorkspaceID returns the mirrored user's workspace id, preferring the
// active workspace and falling back to the default. Cached like UserID.
func (s *Store) WorkspaceID(ctx context.Context) (string, error) {
	if s.workspaceID != "" {
		return s.workspaceID, nil
	}
	db, err := s.connect()
	if err != nil {
		return "", err
	}
	defer db.Close()

	var id sql.NullString
	err = db.QueryRowContext(ctx, "SELECT COALESCE(active_workspace, default_workspace) FROM user").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return "", ErrNoUser
	}
	if err != nil {
		return "", storageErr("workspace id", err)
	}
	s.workspaceID = id.String
	return id.String, nil
}

// TimeEntries returns the raw mirrored entries for the current user and
// workspace within [periodStart, periodEnd), ready for aggregation.
func (s *Store) TimeEntries(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.TimeEntry, error) {
	userID, err := s.UserID(ctx)
	if err != nil {
		return nil, err
	}
	workspaceID, err := s.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}

	db, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	const q = `SELECT id, start_time, end_time, duration_seconds, description, user, workspace
FROM time_entry
WHERE user = ?
    AND workspace = ?
    AND start_time >= ?
    AND end_time < ?
    AND duration_seconds > 0`

	rows, err := db.QueryContext(ctx, q,
		userID,
		workspaceID,
		periodStart.Format(LocalTimeFormat),
		periodEnd.Format(LocalTimeFormat),
	)
	if err != nil {
		return nil, storageErr("time entries", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var (
			e          domain.TimeEntry
			start, end string
		)
		if err := rows.Scan(&e.ID, &start, &end, &e.DurationSec, &e.Description, &e.UserID, &e.WorkspaceID); err != nil {
			return nil, storageErr("time entries", err)
		}
		startTime, err := time.ParseInLocation(LocalTimeFormat, start, time.Local)
		if err != nil {
			return nil, storageErr("time entries", err)
		}
		endTime, err := time.ParseInLocation(LocalTimeFormat, end, time.Local)
		if err != nil {
			return nil, storageErr("time entries", err)
		}
		e.Start = startTime
		e.End = &endTime
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("time entries", err)
	}
	return entries, nil
}

// SaveInvoice inserts one invoice row: metadata columns plus the rendered
// document and the JSON snapshot, both base64 encoded. Returns the new row
// id.
func (s *Store) SaveInvoice(ctx context.Context, rec invoice.Record, doc []byte) (int64, error) {
	snapshot, err := json.Marshal(rec)
	if err != nil {
		return 0, storageErr("save invoice", err)
	}
	var id int64
	err = s.withTx(ctx, "save invoice", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO invoice(number, date, period_start, period_end, payer, payee, total, paid, pdf, pickle)
VALUES(?,?,?,?,?,?,?,?,?,?)`,
			rec.Number,
			rec.Date,
			rec.PeriodStart,
			rec.PeriodEnd,
			rec.Client.Name,
			rec.Company.Name,
			rec.Total,
			0,
			base64.StdEncoding.EncodeToString(doc),
			base64.StdEncoding.EncodeToString(snapshot),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("saved invoice", slog.Int64("id", id), slog.Int("number", rec.Number))
	return id, nil
}

// GetInvoices returns the snapshots of invoices whose period falls within
// the fiscal year starting 1 July, each annotated with its persisted id.
func (s *Store) GetInvoices(ctx context.Context, fiscalYear int) ([]invoice.Record, error) {
	db, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	windowStart := time.Date(fiscalYear, time.June, 30, 0, 0, 0, 0, time.Local)
	windowEnd := time.Date(fiscalYear+1, time.July, 1, 0, 0, 0, 0, time.Local)

	rows, err := db.QueryContext(ctx,
		"SELECT id, pickle FROM invoice WHERE period_start > ? AND period_end < ?",
		windowStart.Format(dateFormat), windowEnd.Format(dateFormat),
	)
	if err != nil {
		return nil, storageErr("get invoices", err)
	}
	defer rows.Close()

	var records []invoice.Record
	for rows.Next() {
		var (
			id       int64
			snapshot string
		)
		if err := rows.Scan(&id, &snapshot); err != nil {
			return nil, storageErr("get invoices", err)
		}
		raw, err := base64.StdEncoding.DecodeString(snapshot)
		if err != nil {
			return nil, storageErr("get invoices", err)
		}
		var rec invoice.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, storageErr("get invoices", err)
		}
		rec.ID = id
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get invoices", err)
	}
	return records, nil
}

// InvoiceDocument returns the decoded rendered document for one invoice.
func (s *Store) InvoiceDocument(ctx context.Context, id int64) ([]byte, error) {
	db, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var encoded string
	err = db.QueryRowContext(ctx, "SELECT pdf FROM invoice WHERE id = ?", id).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrInvoiceNotFound)
	}
	if err != nil {
		return nil, storageErr("invoice document", err)
	}
	doc, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, storageErr("invoice document", err)
	}
	return doc, nil
}

// DeleteInvoice removes one invoice row by id.
func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	err := s.withTx(ctx, "delete invoice", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM invoice WHERE id = ?", id)
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("deleted invoice", slog.Int64("id", id))
	return nil
}

// NextInvoiceNumber returns max(number)+1 over stored invoices, or 1 when
// none exist.
func (s *Store) NextInvoiceNumber(ctx context.Context) (int, error) {
	db, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var highest int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(number), 0) FROM invoice").Scan(&highest); err != nil {
		return 0, storageErr("next invoice number", err)
	}
	return highest + 1, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
