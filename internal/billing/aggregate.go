// Package billing turns raw time entries into rounded, rated, billable line
// items. It is pure: it never touches the store and holds no state.
package billing

import (
	"math"
	"sort"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/domain"
)

// LineItem is one aggregated, billable row on an invoice. Entries are
// grouped by their exact description; the date is the latest completion
// time within the group.
type LineItem struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Hours       float64   `json:"duration_hours"`
	Rate        float64   `json:"rate"`
}

// Amount is the billable amount for the line item.
func (li LineItem) Amount() float64 {
	return li.Hours * li.Rate
}

// Aggregate groups entries by description and produces one line item per
// group whose latest completion time falls within [periodStart, periodEnd).
//
// Summed durations are converted to hours rounded to the nearest quarter
// hour, clamped to a minimum of 0.25: every billable group charges at least
// fifteen minutes. Output is sorted by description so results are
// deterministic. Entries without an end time are ignored.
func Aggregate(entries []domain.TimeEntry, periodStart, periodEnd time.Time, rate float64) []LineItem {
	type group struct {
		latest   time.Time
		totalSec int64
	}
	groups := make(map[string]*group)
	for _, e := range entries {
		if e.End == nil {
			continue
		}
		g, ok := groups[e.Description]
		if !ok {
			g = &group{}
			groups[e.Description] = g
		}
		if e.End.After(g.latest) {
			g.latest = *e.End
		}
		g.totalSec += e.DurationSec
	}

	items := make([]LineItem, 0, len(groups))
	for desc, g := range groups {
		if g.latest.Before(periodStart) || !g.latest.Before(periodEnd) {
			continue
		}
		items = append(items, LineItem{
			Date:        g.latest,
			Description: desc,
			Hours:       roundQuarterHours(g.totalSec),
			Rate:        rate,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Description < items[j].Description
	})
	return items
}

// roundQuarterHours converts seconds to hours rounded to the nearest quarter
// hour, ties to even (banker's rounding). A result of zero is clamped to
// 0.25; nothing is for free.
func roundQuarterHours(seconds int64) float64 {
	hours := math.RoundToEven(float64(seconds)/3600*4) / 4
	if hours == 0 {
		hours = 0.25
	}
	return hours
}

// Total sums the billable amounts of items.
func Total(items []LineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.Amount()
	}
	return total
}
