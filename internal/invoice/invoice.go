// Package invoice holds the invoice value object: aggregated line items plus
// company, client and period metadata.
package invoice

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jordanamos/clockify-invoice/internal/billing"
	"github.com/jordanamos/clockify-invoice/internal/config"
)

// SnapshotVersion identifies the serialized snapshot format stored alongside
// saved invoices. Bump on any breaking change to Record.
const SnapshotVersion = 1

const dateFormat = "2006-01-02"

// Invoice is a plain value holder. Line items are populated by a store query
// after construction; changing the period or number afterwards does not
// refresh them; the caller re-queries.
type Invoice struct {
	Number      int
	Date        time.Time // issue date
	Company     config.Company
	Client      config.Client
	PeriodStart time.Time // inclusive
	PeriodEnd   time.Time // exclusive
	LineItems   []billing.LineItem
}

func New(number int, company config.Company, client config.Client, periodStart, periodEnd time.Time) *Invoice {
	return &Invoice{
		Number:      number,
		Date:        time.Now(),
		Company:     company,
		Client:      client,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
}

// Total is the sum of the line items' billable amounts.
func (inv *Invoice) Total() float64 {
	return billing.Total(inv.LineItems)
}

// Name is the display name embedding the period and invoice number,
// e.g. "2024_03_Invoice_7.pdf".
func (inv *Invoice) Name() string {
	return fmt.Sprintf("%s_Invoice_%d.pdf", inv.PeriodStart.Format("2006_01"), inv.Number)
}

// Record is the versioned snapshot of an invoice, suitable for persistence
// and presentation. It replaces the opaque serialized-object blobs of
// earlier designs: snapshots are plain JSON and safe to deserialize.
type Record struct {
	Version     int                `json:"version"`
	ID          int64              `json:"invoice_id,omitempty"` // persisted identifier, set on load
	Number      int                `json:"invoice_number"`
	Date        string             `json:"invoice_date"`
	Company     config.Company     `json:"company"`
	Client      config.Client      `json:"client"`
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
	LineItems   []billing.LineItem `json:"time_entries"`
	Total       float64            `json:"total"`
}

// ToRecord snapshots the invoice's current fields.
func (inv *Invoice) ToRecord() Record {
	items := inv.LineItems
	if items == nil {
		items = []billing.LineItem{}
	}
	return Record{
		Version:     SnapshotVersion,
		Number:      inv.Number,
		Date:        inv.Date.Format(dateFormat),
		Company:     inv.Company,
		Client:      inv.Client,
		PeriodStart: inv.PeriodStart.Format(dateFormat),
		PeriodEnd:   inv.PeriodEnd.Format(dateFormat),
		LineItems:   items,
		Total:       inv.Total(),
	}
}

// Summary renders a human-readable tabular summary of the invoice.
func (inv *Invoice) Summary() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Description", "Time Spent", "Rate", "Amount"})
	for _, li := range inv.LineItems {
		t.AppendRow(table.Row{
			li.Date.Format("02/01/2006"),
			li.Description,
			fmt.Sprintf("%.2f", li.Hours),
			fmt.Sprintf("%.2f", li.Rate),
			fmt.Sprintf("%.2f", li.Amount()),
		})
	}
	return fmt.Sprintf(
		"Invoice #: %d\nInvoice Date: %s\nPayee: %s\nPayer: %s\nInvoice Period: %s to %s\n\n%s\n\nTotal: %.2f\n",
		inv.Number,
		inv.Date.Format(dateFormat),
		inv.Company.Name,
		inv.Client.Name,
		inv.PeriodStart.Format(dateFormat),
		inv.PeriodEnd.Format(dateFormat),
		t.Render(),
		inv.Total(),
	)
}
