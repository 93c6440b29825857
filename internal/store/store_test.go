package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/nalcoscraper/internal/types"
)

func event(date string, price float64, source string) types.CircularEvent {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return types.CircularEvent{
		Description:    "ALUMINIUM INGOT",
		ProductCode:    types.DefaultProductCode,
		BasicPrice:     types.Price(price),
		CircularDate:   d,
		SourceDocument: source,
	}
}

func TestUpsertKeepsSortedAndUnique(t *testing.T) {
	s := New()
	s.Upsert(event("2025-08-12", 270.100, "Ingot-12-08-2025.pdf"))
	s.Upsert(event("2025-08-07", 268.250, "Ingot-07-08-2025.pdf"))
	s.Upsert(event("2025-08-10", 269.000, "Ingot-10-08-2025.pdf"))

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "2025-08-07", events[0].CircularDate.Format("2006-01-02"))
	assert.Equal(t, "2025-08-10", events[1].CircularDate.Format("2006-01-02"))
	assert.Equal(t, "2025-08-12", events[2].CircularDate.Format("2006-01-02"))
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := New()
	e := event("2025-08-07", 268.250, "Ingot-07-08-2025.pdf")

	s.Upsert(e)
	once := s.Events()

	s.Upsert(e)
	twice := s.Events()

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, s.Len())
}

func TestUpsertReplacesSameDate(t *testing.T) {
	s := New()
	s.Upsert(event("2025-08-07", 268.250, "a.pdf"))
	s.Upsert(event("2025-08-07", 999.999, "b.pdf"))

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "b.pdf", events[0].SourceDocument)
	assert.InDelta(t, 999.999, *events[0].BasicPrice, 1e-9)
}

func TestUpsertRejectFuturePolicy(t *testing.T) {
	now := time.Date(2025, time.August, 14, 12, 0, 0, 0, time.UTC)

	s := New()
	s.RejectFuture = true
	s.Now = func() time.Time { return now }

	s.Upsert(event("2025-08-20", 270.100, "future.pdf"))
	assert.Equal(t, 0, s.Len())

	// Today is not in the future.
	s.Upsert(event("2025-08-14", 270.100, "today.pdf"))
	assert.Equal(t, 1, s.Len())

	// Default policy accepts future dates.
	def := New()
	def.Upsert(event("2999-01-01", 1, "far.pdf"))
	assert.Equal(t, 1, def.Len())
}

func TestDedupeTieBreak(t *testing.T) {
	a := event("2025-08-07", 268.250, "Ingot-07-08-2025-rev1.pdf")
	b := event("2025-08-07", 268.500, "Ingot-07-08-2025-rev2.pdf")
	c := event("2025-08-12", 270.100, "Ingot-12-08-2025.pdf")

	out := Dedupe([]types.CircularEvent{b, a, c})
	require.Len(t, out, 2)
	// Lexicographically greatest source document wins the shared date.
	assert.Equal(t, "Ingot-07-08-2025-rev2.pdf", out[0].SourceDocument)
	assert.Equal(t, "Ingot-12-08-2025.pdf", out[1].SourceDocument)
}

func TestDedupeInsertionOrderIrrelevant(t *testing.T) {
	a := event("2025-08-07", 268.250, "a.pdf")
	b := event("2025-08-07", 268.500, "b.pdf")

	first := Dedupe([]types.CircularEvent{a, b})
	second := Dedupe([]types.CircularEvent{b, a})
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "b.pdf", first[0].SourceDocument)
}

func TestFromRowsLegacyLayout(t *testing.T) {
	header := []string{"Sl.no.", "Description", "Product Code", "Basic Price", "Circular Date", "Circular Link"}
	rows := [][]string{
		{"1", "ALUMINIUM INGOT", "IE07", "268.25", "07-08-2025", "https://example.com/a.pdf"},
		{"2", "ALUMINIUM INGOT", "IE07", "270.1", "12-08-2025", "https://example.com/b.pdf"},
	}

	s := New()
	s.FromRows(header, rows)

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "2025-08-07", events[0].CircularDate.Format("2006-01-02"))
	require.NotNil(t, events[0].BasicPrice)
	assert.InDelta(t, 268.25, *events[0].BasicPrice, 1e-9)
	assert.Equal(t, "https://example.com/b.pdf", events[1].CircularLink)
}

func TestFromRowsEventsLayout(t *testing.T) {
	header := []string{"Description", "Product Code", "Basic Price", "Circular Date", "Circular Link", "Source"}
	rows := [][]string{
		{"ALUMINIUM INGOT", "IE07", "268.25", "07-08-2025", "https://example.com/a.pdf", "Ingot-07-08-2025.pdf"},
		{"ALUMINIUM INGOT", "IE07", "270.1", "12-08-2025", "https://example.com/b.pdf", "Ingot-12-08-2025.pdf"},
	}

	s := New()
	s.FromRows(header, rows)

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Ingot-07-08-2025.pdf", events[0].SourceDocument)
	assert.Equal(t, "Ingot-12-08-2025.pdf", events[1].SourceDocument)
}

func TestFromRowsDailyLayoutCollapses(t *testing.T) {
	header := []string{"Date", "Description", "Product Code", "Basic Price", "Circular Date", "Circular Link"}
	rows := [][]string{
		{"07-08-2025", "ALUMINIUM INGOT", "IE07", "268.25", "07-08-2025", ""},
		{"08-08-2025", "ALUMINIUM INGOT", "IE07", "268.25", "07-08-2025", ""},
		{"09-08-2025", "ALUMINIUM INGOT", "IE07", "268.25", "07-08-2025", ""},
		{"12-08-2025", "ALUMINIUM INGOT", "IE07", "270.10", "12-08-2025", ""},
	}

	s := New()
	s.FromRows(header, rows)

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "2025-08-07", events[0].CircularDate.Format("2006-01-02"))
	assert.Equal(t, "2025-08-12", events[1].CircularDate.Format("2006-01-02"))
}

func TestFromRowsDottedCircularDates(t *testing.T) {
	header := []string{"Sl.no.", "Description", "Product Code", "Basic Price", "Circular Date", "Circular Link"}
	rows := [][]string{
		{"1", "ALUMINIUM INGOT", "IE07", "268.25", "07.08.2025", ""},
	}

	s := New()
	s.FromRows(header, rows)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "2025-08-07", s.Events()[0].CircularDate.Format("2006-01-02"))
}

func TestFromRowsUnknownLayoutIsEmpty(t *testing.T) {
	s := New()
	s.FromRows([]string{"Foo", "Bar"}, [][]string{{"1", "2"}})
	assert.Equal(t, 0, s.Len())
}

func TestFromRowsDropsUnparseableDates(t *testing.T) {
	header := []string{"Sl.no.", "Description", "Product Code", "Basic Price", "Circular Date", "Circular Link"}
	rows := [][]string{
		{"1", "ALUMINIUM INGOT", "IE07", "268.25", "not a date", ""},
		{"2", "ALUMINIUM INGOT", "IE07", "270.10", "12-08-2025", ""},
	}

	s := New()
	s.FromRows(header, rows)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "2025-08-12", s.Events()[0].CircularDate.Format("2006-01-02"))
}

func TestFromRowsDefaultsProductCode(t *testing.T) {
	header := []string{"Sl.no.", "Description", "Basic Price", "Circular Date"}
	rows := [][]string{
		{"1", "ALUMINIUM INGOT", "268.25", "07-08-2025"},
	}

	s := New()
	s.FromRows(header, rows)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, types.DefaultProductCode, s.Events()[0].ProductCode)
}
