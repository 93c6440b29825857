package types

import (
	"errors"
	"time"
)

// DefaultProductCode is the product code tracked by this scraper
// (NALCO Aluminium Ingot).
const DefaultProductCode = "IE07"

// ErrRowNotFound is returned when no heuristic could locate the IE07 row in
// a circular PDF.
var ErrRowNotFound = errors.New("IE07 row not found")

// ErrBadPrice is returned when a raw price string cannot be normalized.
var ErrBadPrice = errors.New("price string is not numeric")

// ErrDateUnresolved is returned when a circular carries a date-looking token
// that could not be parsed. Such events are dropped rather than guessed at.
var ErrDateUnresolved = errors.New("circular date could not be resolved")

// CircularEvent is one parsed or migrated price circular. CircularDate is
// date-only (UTC midnight) and is the unique key within a store.
type CircularEvent struct {
	Description    string
	ProductCode    string
	BasicPrice     *float64
	CircularDate   time.Time
	CircularLink   string
	SourceDocument string
}

// DailyRow is one synthesized day of the output series, carrying the fields
// of the most recent circular on or before Date.
type DailyRow struct {
	Date         time.Time
	Description  string
	ProductCode  string
	BasicPrice   *float64
	CircularDate time.Time
	CircularLink string
}

// Price returns a pointer to v, for literal BasicPrice values.
func Price(v float64) *float64 {
	return &v
}

// Day truncates t to a date-only value in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
