//go:build e2e

package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanamos/clockify-invoice/internal/adapter/sqlite"
	"github.com/jordanamos/clockify-invoice/internal/app"
	"github.com/jordanamos/clockify-invoice/internal/config"
)

// fakeClockifyAPI serves canned Clockify v1 responses. Setting failEntries
// makes the time-entries endpoint return a 500 to exercise rollback.
func fakeClockifyAPI(t *testing.T, failEntries *bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{
			"id": "user1",
			"name": "Jordan",
			"email": "jordan@example.com",
			"defaultWorkspace": "ws1",
			"activeWorkspace": "ws1",
			"settings": {"timeZone": "Australia/Sydney"}
		}`))
	})
	mux.HandleFunc("/workspaces", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"ws1","name":"Main"}]`))
	})
	mux.HandleFunc("/workspaces/ws1/user/user1/time-entries", func(w http.ResponseWriter, r *http.Request) {
		if *failEntries {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[
			{"id":"e1","description":"Bug fix","userId":"user1","workspaceId":"ws1",
			 "timeInterval":{"start":"2024-07-10T09:00:00Z","end":"2024-07-10T10:30:00Z"}},
			{"id":"e2","description":"Bug fix","userId":"user1","workspaceId":"ws1",
			 "timeInterval":{"start":"2024-07-15T12:00:00Z","end":"2024-07-15T13:00:00Z"}},
			{"id":"e3","description":"Running","userId":"user1","workspaceId":"ws1",
			 "timeInterval":{"start":"2024-07-16T09:00:00Z","end":null}}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncAndInvoiceLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	failEntries := false
	api := fakeClockifyAPI(t, &failEntries)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "db.db"), log)
	require.NoError(t, err)

	cfg := config.Config{
		APIKey:  "test-key",
		Company: config.Company{Name: "Jordan Amos", Email: "jordan@example.com", ABN: "123", Rate: 70},
		Client:  config.Client{Name: "6 Cloud Systems", Email: "client@example.com", Contact: "Ben"},
	}
	a, err := app.New(log, cfg, store, api.URL)
	require.NoError(t, err)

	// Sync twice: full refresh must be idempotent.
	require.NoError(t, a.Sync(ctx))
	require.NoError(t, a.Sync(ctx))

	// Two completed "Bug fix" entries of 90 and 60 minutes aggregate into
	// one 2.5h line item; the running entry is ignored.
	start, end := app.MonthPeriod(2024, time.July)
	inv, err := a.BuildInvoice(ctx, 0, start, end)
	require.NoError(t, err)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "Bug fix", inv.LineItems[0].Description)
	assert.Equal(t, 2.5, inv.LineItems[0].Hours)
	assert.Equal(t, 1, inv.Number)
	assert.Equal(t, 175.0, inv.Total())

	// Save, list, fetch document, delete.
	id, err := a.SaveInvoice(ctx, inv)
	require.NoError(t, err)

	records, total, err := a.Invoices(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, 175.0, total)

	doc, err := a.InvoiceDocument(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Bug fix")

	next, err := a.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	require.NoError(t, a.DeleteInvoice(ctx, id))
	records, _, err = a.Invoices(ctx, 2024)
	require.NoError(t, err)
	assert.Empty(t, records)

	// A failing sync must leave the backing file byte-identical.
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	failEntries = true
	require.Error(t, a.Sync(ctx))
	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
