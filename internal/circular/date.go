package circular

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/shanehull/nalcoscraper/internal/types"
)

// Circular filenames follow an Ingot-DD-MM-YYYY.pdf convention, with dots
// occasionally used in place of dashes.
var filenameDatePattern = regexp.MustCompile(`(?i)^[a-z][a-z _-]*[-_. ](\d{1,2})[-.](\d{1,2})[-.](\d{4})\.pdf$`)

// ResolveCircularDate derives the effective date of a circular from its
// filename. Malformed or out-of-range filename dates fall back to the given
// date (callers pass today) rather than failing.
func ResolveCircularDate(filename string, fallback time.Time) time.Time {
	m := filenameDatePattern.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return types.Day(fallback)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflows (31-04 becomes 01-05), which means the
	// filename did not carry a real calendar date.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return types.Day(fallback)
	}
	return d
}

// ResolveEventDate picks the effective date for an extracted row: an
// in-document date wins, otherwise the filename date (or the fallback). A
// date token that was seen but not parsed yields types.ErrDateUnresolved;
// callers drop the event instead of guessing.
func ResolveEventDate(raw *RawRow, filename string, fallback time.Time) (time.Time, error) {
	switch {
	case raw.Date != nil:
		return *raw.Date, nil
	case raw.DateFailed:
		return time.Time{}, fmt.Errorf("%s: %w", filepath.Base(filename), types.ErrDateUnresolved)
	default:
		return ResolveCircularDate(filename, fallback), nil
	}
}

// ParseDateToken permissively parses a date token found in document text.
// NALCO circulars write dates day-first.
func ParseDateToken(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date token")
	}

	t, err := dateparse.ParseAny(trimmed, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date token '%s': %w", trimmed, err)
	}
	return types.Day(t), nil
}
