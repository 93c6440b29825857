package circular

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shanehull/nalcoscraper/internal/types"
)

// NormalizePrice converts a raw price string from a circular (rupees, with
// optional thousands separators) into the basic price unit: value / 1000,
// rounded to 3 decimal places.
func NormalizePrice(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" || cleaned == "." {
		return 0, fmt.Errorf("'%s': %w", raw, types.ErrBadPrice)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s': %w", raw, types.ErrBadPrice)
	}

	return math.Round(v) / 1000, nil
}

// ParseStoredPrice reads a basic price that was already normalized when it
// was persisted (e.g. "268.25"). Thousands separators are tolerated.
func ParseStoredPrice(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("'%s': %w", raw, types.ErrBadPrice)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s': %w", raw, types.ErrBadPrice)
	}
	return v, nil
}
