package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanamos/clockify-invoice/internal/domain"
)

func entry(id, desc string, end time.Time, durationSec int64) domain.TimeEntry {
	start := end.Add(-time.Duration(durationSec) * time.Second)
	return domain.TimeEntry{
		ID:          id,
		Start:       start,
		End:         &end,
		DurationSec: durationSec,
		Description: desc,
	}
}

func TestRoundQuarterHours(t *testing.T) {
	tests := []struct {
		seconds int64
		want    float64
	}{
		{1, 0.25},
		{449, 0.25},
		{450, 0.25},
		{900, 0.25},
		{1349, 0.25},
		{1350, 0.5},
		{1800, 0.5},
		{3000, 0.75},
		{3600, 1.0},
		{0, 0.25}, // zero clamp: nothing is for free
		// half-quarter ties round to the even quarter
		{2250, 0.5},
		{3150, 1.0},
		{4050, 1.0},
	}
	for _, tt := range tests {
		got := roundQuarterHours(tt.seconds)
		assert.Equalf(t, tt.want, got, "roundQuarterHours(%d)", tt.seconds)
	}
}

func TestAggregateGroupsByDescription(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	entries := []domain.TimeEntry{
		entry("1", "Bug fix", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), 1000),
		entry("2", "Bug fix", time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), 2000),
	}

	items := Aggregate(entries, periodStart, periodEnd, 70.0)
	require.Len(t, items, 1)

	li := items[0]
	assert.Equal(t, "Bug fix", li.Description)
	assert.Equal(t, time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC), li.Date)
	assert.Equal(t, 0.75, li.Hours) // round(3000/3600*4)/4
	assert.Equal(t, 70.0, li.Rate)
	assert.Equal(t, 52.5, li.Amount())
}

func TestAggregatePeriodBoundsAreHalfOpen(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	entries := []domain.TimeEntry{
		entry("1", "on lower bound", periodStart, 600),
		entry("2", "on upper bound", periodEnd, 600),
		entry("3", "before period", periodStart.Add(-time.Second), 600),
	}

	items := Aggregate(entries, periodStart, periodEnd, 50.0)
	require.Len(t, items, 1)
	assert.Equal(t, "on lower bound", items[0].Description)
}

func TestAggregateGroupFilterUsesLatestCompletion(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	// One entry inside the period, but the group's latest completion is
	// after the period end, so the whole group is excluded.
	entries := []domain.TimeEntry{
		entry("1", "spillover work", time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), 3600),
		entry("2", "spillover work", time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), 3600),
	}

	items := Aggregate(entries, periodStart, periodEnd, 50.0)
	assert.Empty(t, items)
}

func TestAggregateEmptyInput(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, Aggregate(nil, periodStart, periodEnd, 50.0))
}

func TestAggregateSkipsRunningEntries(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	running := domain.TimeEntry{
		ID:          "1",
		Start:       time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		Description: "still going",
	}
	assert.Empty(t, Aggregate([]domain.TimeEntry{running}, periodStart, periodEnd, 50.0))
}

func TestAggregateOutputIsSortedByDescription(t *testing.T) {
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	entries := []domain.TimeEntry{
		entry("1", "zebra", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), 900),
		entry("2", "apple", time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC), 900),
		entry("3", "mango", time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), 900),
	}

	items := Aggregate(entries, periodStart, periodEnd, 50.0)
	require.Len(t, items, 3)
	assert.Equal(t, "apple", items[0].Description)
	assert.Equal(t, "mango", items[1].Description)
	assert.Equal(t, "zebra", items[2].Description)
}

func TestTotal(t *testing.T) {
	items := []LineItem{
		{Hours: 0.75, Rate: 70},
		{Hours: 2, Rate: 70},
	}
	assert.Equal(t, 192.5, Total(items))
	assert.Zero(t, Total(nil))
}
