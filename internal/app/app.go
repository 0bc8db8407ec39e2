// Package app wires adapters and use cases. Dependencies are constructed
// once at process start and passed by parameter; there is no global state.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/adapter/clockify"
	"github.com/jordanamos/clockify-invoice/internal/adapter/sqlite"
	"github.com/jordanamos/clockify-invoice/internal/billing"
	"github.com/jordanamos/clockify-invoice/internal/config"
	"github.com/jordanamos/clockify-invoice/internal/invoice"
	"github.com/jordanamos/clockify-invoice/internal/usecase"
)

// App exposes the operations the CLI and HTTP front ends drive.
type App struct {
	log      *slog.Logger
	cfg      config.Config
	store    *sqlite.Store
	renderer invoice.Renderer
	sync     *usecase.SyncUseCase
}

func New(log *slog.Logger, cfg config.Config, store *sqlite.Store, clockifyBaseURL string) (*App, error) {
	renderer, err := invoice.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	client := clockify.NewClient(clockifyBaseURL, cfg.APIKey, log)
	return &App{
		log:      log,
		cfg:      cfg,
		store:    store,
		renderer: renderer,
		sync: &usecase.SyncUseCase{
			Log:      log,
			Clockify: client,
			Store:    store,
		},
	}, nil
}

// Sync performs one full refresh of the mirrored tables.
func (a *App) Sync(ctx context.Context) error {
	return a.sync.Run(ctx)
}

// MonthPeriod returns the half-open billing period covering one calendar
// month.
func MonthPeriod(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// BuildInvoice constructs an invoice for the period and populates its line
// items from the store. A number of 0 means use the next available number.
func (a *App) BuildInvoice(ctx context.Context, number int, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	if number == 0 {
		next, err := a.store.NextInvoiceNumber(ctx)
		if err != nil {
			return nil, err
		}
		number = next
	}
	entries, err := a.store.TimeEntries(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	inv := invoice.New(number, a.cfg.Company, a.cfg.Client, periodStart, periodEnd)
	inv.LineItems = billing.Aggregate(entries, periodStart, periodEnd, a.cfg.Company.Rate)
	return inv, nil
}

// SaveInvoice renders the invoice and persists the row, returning the new
// persisted id.
func (a *App) SaveInvoice(ctx context.Context, inv *invoice.Invoice) (int64, error) {
	rec := inv.ToRecord()
	doc, err := a.renderer.Render(rec)
	if err != nil {
		return 0, fmt.Errorf("rendering invoice %d: %w", inv.Number, err)
	}
	return a.store.SaveInvoice(ctx, rec, doc)
}

// Invoices returns the saved invoices in a fiscal year along with their
// running total.
func (a *App) Invoices(ctx context.Context, fiscalYear int) ([]invoice.Record, float64, error) {
	records, err := a.store.GetInvoices(ctx, fiscalYear)
	if err != nil {
		return nil, 0, err
	}
	var total float64
	for _, rec := range records {
		total += rec.Total
	}
	return records, total, nil
}

// InvoiceDocument returns the rendered document saved with an invoice.
func (a *App) InvoiceDocument(ctx context.Context, id int64) ([]byte, error) {
	return a.store.InvoiceDocument(ctx, id)
}

// DeleteInvoice removes one saved invoice.
func (a *App) DeleteInvoice(ctx context.Context, id int64) error {
	return a.store.DeleteInvoice(ctx, id)
}

// NextInvoiceNumber returns the number the next saved invoice would get.
func (a *App) NextInvoiceNumber(ctx context.Context) (int, error) {
	return a.store.NextInvoiceNumber(ctx)
}
