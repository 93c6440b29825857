/*
Package series rebuilds the gap-free daily price series from circular
events. The build is a forward-fill merge-join: a dense walk over calendar
days against the sparse, sorted event axis.
*/
package series

import (
	"sort"
	"time"

	"github.com/shanehull/nalcoscraper/internal/types"
)

// BuildDaily produces one row per calendar day from the earliest event date
// through until (inclusive), each day carrying the fields of the most recent
// event on or before it. Returns nil when events is empty or until precedes
// the first event — callers treat that as a no-op.
//
// The output is ascending by date; presentation ordering is the writer's
// concern.
func BuildDaily(events []types.CircularEvent, until time.Time) []types.DailyRow {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]types.CircularEvent, len(events))
	copy(sorted, events)
	// Dates are keyed day-only; normalize the local copy so a stray
	// time-of-day cannot desync the event cursor from the day walk.
	for i := range sorted {
		sorted[i].CircularDate = types.Day(sorted[i].CircularDate)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CircularDate.Before(sorted[j].CircularDate)
	})

	start := types.Day(sorted[0].CircularDate)
	end := types.Day(until)
	if end.Before(start) {
		return nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	rows := make([]types.DailyRow, 0, days)

	idx := 0
	var current *types.CircularEvent
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for idx < len(sorted) && !sorted[idx].CircularDate.After(day) {
			current = &sorted[idx]
			idx++
		}
		rows = append(rows, types.DailyRow{
			Date:         day,
			Description:  current.Description,
			ProductCode:  current.ProductCode,
			BasicPrice:   current.BasicPrice,
			CircularDate: current.CircularDate,
			CircularLink: current.CircularLink,
		})
	}

	return rows
}
