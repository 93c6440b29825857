/*
Package store maintains the canonical set of circular events: one event per
circular date, kept sorted ascending. It owns the merge semantics — upsert
with latest-wins replacement, dedup across raw extraction candidates, and
migration of the two known persisted spreadsheet layouts into events.
*/
package store

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shanehull/nalcoscraper/internal/circular"
	"github.com/shanehull/nalcoscraper/internal/types"
)

// Store holds circular events sorted ascending by CircularDate, at most one
// per date.
type Store struct {
	events []types.CircularEvent

	// RejectFuture drops events dated after Now() at upsert time.
	RejectFuture bool
	// Now is the clock used for the future-date policy; defaults to time.Now.
	Now func() time.Time
}

// New returns an empty store with the default accept-future policy.
func New() *Store {
	return &Store{Now: time.Now}
}

// Events returns the stored events in ascending date order. The returned
// slice is a copy.
func (s *Store) Events() []types.CircularEvent {
	out := make([]types.CircularEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	return len(s.events)
}

// Upsert inserts e, replacing any existing event with the same circular
// date. Re-applying the same event is a no-op, which makes re-processing a
// circular idempotent.
func (s *Store) Upsert(e types.CircularEvent) {
	e.CircularDate = types.Day(e.CircularDate)
	if e.ProductCode == "" {
		e.ProductCode = types.DefaultProductCode
	}

	if s.RejectFuture {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		if e.CircularDate.After(types.Day(now())) {
			log.Printf("Warning: rejecting future-dated circular %s (%s)",
				e.CircularDate.Format("02-01-2006"), e.SourceDocument)
			return
		}
	}

	i := sort.Search(len(s.events), func(i int) bool {
		return !s.events[i].CircularDate.Before(e.CircularDate)
	})
	if i < len(s.events) && s.events[i].CircularDate.Equal(e.CircularDate) {
		s.events[i] = e
		return
	}
	s.events = append(s.events, types.CircularEvent{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = e
}

// Dedupe collapses raw extraction candidates to one event per
// (circular date, product code), keeping the candidate with the
// lexicographically greatest source document among ties. The result is
// sorted ascending by date.
func Dedupe(candidates []types.CircularEvent) []types.CircularEvent {
	type key struct {
		date time.Time
		code string
	}

	kept := make(map[key]types.CircularEvent)
	for _, e := range candidates {
		e.CircularDate = types.Day(e.CircularDate)
		k := key{date: e.CircularDate, code: e.ProductCode}
		if prev, ok := kept[k]; ok && prev.SourceDocument >= e.SourceDocument {
			continue
		}
		kept[k] = e
	}

	out := make([]types.CircularEvent, 0, len(kept))
	for _, e := range kept {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CircularDate.Equal(out[j].CircularDate) {
			return out[i].CircularDate.Before(out[j].CircularDate)
		}
		return out[i].SourceDocument < out[j].SourceDocument
	})
	return out
}

// Column indices of a detected layout, -1 where the column is absent.
type columnMap struct {
	serial       int
	date         int
	description  int
	productCode  int
	basicPrice   int
	circularDate int
	circularLink int
	source       int
}

// FromRows migrates a persisted table (header + data rows) into the store.
// The layout is detected from the column signature: a Date column means an
// already-daily layout, collapsed to the last row per unique circular date; a
// Circular Date column without it covers both the native events sheet and the
// legacy serial-numbered table. Anything else loads as empty. Rows whose
// circular date cannot be parsed are dropped with a warning.
func (s *Store) FromRows(header []string, rows [][]string) {
	cols := detectColumns(header)

	switch {
	case cols.date >= 0:
		// Already-daily layout: many rows share one circular date and
		// upsert keeps the last row read for each date.
		s.loadRows(cols, rows)
	case cols.circularDate >= 0:
		// Native events sheet, or the legacy serial-numbered table.
		s.loadRows(cols, rows)
	default:
		log.Printf("Warning: unrecognized sheet layout (columns: %s), starting with empty event set",
			strings.Join(header, ", "))
	}
}

func detectColumns(header []string) columnMap {
	cols := columnMap{serial: -1, date: -1, description: -1, productCode: -1,
		basicPrice: -1, circularDate: -1, circularLink: -1, source: -1}

	for i, h := range header {
		switch normalizeHeader(h) {
		case "slno", "sno", "serial", "serialno":
			cols.serial = i
		case "date":
			cols.date = i
		case "description":
			cols.description = i
		case "productcode":
			cols.productCode = i
		case "basicprice":
			cols.basicPrice = i
		case "circulardate":
			cols.circularDate = i
		case "circularlink", "link":
			cols.circularLink = i
		case "source", "sourcepdf":
			cols.source = i
		}
	}
	return cols
}

// normalizeHeader lowercases and strips whitespace and punctuation so that
// "Sl.no.", "Sl No" and "sl_no" all compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Store) loadRows(cols columnMap, rows [][]string) {
	for _, row := range rows {
		e, ok := rowToEvent(cols, row)
		if !ok {
			continue
		}
		s.Upsert(e)
	}
}

func rowToEvent(cols columnMap, row []string) (types.CircularEvent, bool) {
	e := types.CircularEvent{ProductCode: types.DefaultProductCode}

	dateStr := cell(row, cols.circularDate)
	if dateStr == "" {
		dateStr = cell(row, cols.date)
	}
	d, err := parseStoredDate(dateStr)
	if err != nil {
		log.Printf("Warning: dropping row with unparseable circular date '%s': %v", dateStr, err)
		return types.CircularEvent{}, false
	}
	e.CircularDate = d

	e.Description = cell(row, cols.description)
	if code := cell(row, cols.productCode); code != "" {
		e.ProductCode = code
	}
	if raw := cell(row, cols.basicPrice); raw != "" {
		if p, err := circular.ParseStoredPrice(raw); err == nil {
			e.BasicPrice = &p
		} else {
			log.Printf("Warning: ignoring unparseable basic price '%s'", raw)
		}
	}
	e.CircularLink = cell(row, cols.circularLink)
	e.SourceDocument = cell(row, cols.source)

	return e, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseStoredDate reads dates the workbook writer emits (02-01-2006), plus
// the dotted variant older deployments used.
func parseStoredDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range []string{"02-01-2006", "02.01.2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return types.Day(t), nil
		}
	}
	return circular.ParseDateToken(s)
}
