/*
Package circular extracts the IE07 (Aluminium Ingot) price row from NALCO
price-circular PDFs and normalizes its fields.

Circular layouts drift between publications, so extraction is an ordered
chain of heuristics tried until one succeeds: a positional cell scan, a
per-line token scan, and a whole-document snippet search.
*/
package circular

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/shanehull/nalcoscraper/internal/types"
)

// RawRow is the unnormalized IE07 row pulled out of one circular.
type RawRow struct {
	Description string
	ProductCode string
	RawPrice    string
	// Date is a circular date found inside the document, when one was.
	Date *time.Time
	// DateFailed is set when a date-looking token was present but could
	// not be parsed. Callers drop such events rather than guess.
	DateFailed bool
}

var (
	codePattern     = regexp.MustCompile(`(?i)IE\s*0?7`)
	largeIntPattern = regexp.MustCompile(`\d{5,7}`)
	ingotPattern    = regexp.MustCompile(`[A-Z][A-Z ./-]*INGOT[A-Z ./-]*`)
	snippetPattern  = regexp.MustCompile(`(?is).{0,200}IE\s*0?7.{0,200}`)
	pricePattern    = regexp.MustCompile(`\d[\d,.]+\d`)
	codeCellPattern = regexp.MustCompile(`[A-Z]{1,3}\s?\d{1,4}`)
	textDatePattern = regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3,}\s+\d{4}|\d{1,2}[./-]\d{1,2}[./-]\d{4}`)
)

type heuristic func(r *pdf.Reader) *RawRow

// ExtractIE07 locates the IE07 row in the PDF at path. Heuristics are tried
// in priority order and the first hit wins. Returns types.ErrRowNotFound
// (wrapped with the source filename) when none succeed.
func ExtractIE07(path string) (*RawRow, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	for _, h := range []heuristic{scanCells, scanLines, scanSnippet} {
		if row := h(r); row != nil {
			row.ProductCode = normalizeCode(row.ProductCode)
			return row, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", filepath.Base(path), types.ErrRowNotFound)
}

// scanCells walks every page row-by-row, clusters words into cells by
// horizontal gaps and looks for a cell carrying the IE07 code. The nearest
// non-numeric cell to the left is the description; the nearest digit-bearing
// cell to the right is the price.
func scanCells(r *pdf.Reader) *RawRow {
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			log.Printf("Warning: failed to read rows on page %d: %v", i, err)
			continue
		}

		for _, row := range rows {
			cells := clusterCells(row.Content)
			anchor := -1
			for ci, c := range cells {
				if isCodeCell(c) {
					anchor = ci
					break
				}
			}
			if anchor < 0 {
				continue
			}

			desc := ""
			for ci := anchor - 1; ci >= 0; ci-- {
				if !isNumericCell(cells[ci]) {
					desc = cells[ci]
					break
				}
			}

			price := ""
			for ci := anchor + 1; ci < len(cells); ci++ {
				if strings.ContainsAny(cells[ci], "0123456789") {
					price = cells[ci]
					break
				}
			}
			if price == "" {
				// Anchor row without a price is not the row we want.
				continue
			}
			if desc == "" {
				desc = cells[anchor]
			}

			raw := &RawRow{
				Description: desc,
				ProductCode: types.DefaultProductCode,
				RawPrice:    price,
			}
			for _, c := range cells {
				m := textDatePattern.FindString(c)
				if m == "" {
					continue
				}
				if d, err := ParseDateToken(m); err == nil {
					raw.Date = &d
					raw.DateFailed = false
					break
				}
				log.Printf("Warning: could not parse date token '%s' in row", m)
				raw.DateFailed = true
			}
			return raw
		}
	}
	return nil
}

// scanLines joins each physical row into a line of text and applies token
// patterns: a trailing 5-7 digit integer is the price, an INGOT word run is
// the description.
func scanLines(r *pdf.Reader) *RawRow {
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			// Rebuild word boundaries from glyph geometry so adjacent
			// columns don't run together.
			line := strings.Join(clusterCells(row.Content), " ")
			if !codePattern.MatchString(line) {
				continue
			}

			prices := largeIntPattern.FindAllString(line, -1)
			if len(prices) == 0 {
				continue
			}

			desc := "ALUMINIUM INGOT"
			if m := ingotPattern.FindString(strings.ToUpper(line)); m != "" {
				desc = strings.TrimSpace(m)
			}

			raw := &RawRow{
				Description: desc,
				ProductCode: types.DefaultProductCode,
				RawPrice:    prices[len(prices)-1],
			}
			if m := textDatePattern.FindString(line); m != "" {
				if d, err := ParseDateToken(m); err == nil {
					raw.Date = &d
				} else {
					log.Printf("Warning: could not parse date token '%s' in line", m)
					raw.DateFailed = true
				}
			}
			return raw
		}
	}
	return nil
}

// scanSnippet is the last resort: search the whole document text for the
// code token with bounded look-around and pick fields out of the snippet
// with best-effort regexes.
func scanSnippet(r *pdf.Reader) *RawRow {
	reader, err := r.GetPlainText()
	if err != nil {
		log.Printf("Warning: failed to extract plain text: %v", err)
		return nil
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return nil
	}

	snippet := snippetPattern.FindString(string(text))
	if snippet == "" {
		return nil
	}
	snippet = strings.Join(strings.Fields(snippet), " ")

	raw := &RawRow{
		Description: snippet,
		ProductCode: types.DefaultProductCode,
	}
	if m := pricePattern.FindString(snippet); m != "" {
		raw.RawPrice = m
	}
	if m := codeCellPattern.FindString(snippet); m != "" && codePattern.MatchString(m) {
		raw.ProductCode = m
	}
	if m := textDatePattern.FindString(snippet); m != "" {
		if d, err := ParseDateToken(m); err == nil {
			raw.Date = &d
		} else {
			log.Printf("Warning: could not parse date token '%s' in snippet", m)
			raw.DateFailed = true
		}
	}
	return raw
}

// clusterCells groups a row's glyphs into cells wherever the horizontal gap
// between adjacent glyphs exceeds a threshold. The reader emits one Text per
// glyph, spaces included, so cluster members concatenate directly. Glyph
// coordinates come straight from the content stream, so the threshold is in
// points.
func clusterCells(glyphs []pdf.Text) []string {
	const cellGap = 12.0

	var cells []string
	var current strings.Builder
	var prevEnd float64

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			cells = append(cells, s)
		}
		current.Reset()
	}

	for gi, g := range glyphs {
		if gi > 0 && g.X-prevEnd > cellGap {
			flush()
		}
		current.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	flush()
	return cells
}

func isCodeCell(s string) bool {
	compact := strings.ReplaceAll(s, " ", "")
	return codePattern.MatchString(compact)
}

// isNumericCell reports whether a cell is purely numeric punctuation and
// digits (a price or serial, not a description).
func isNumericCell(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',' || r == ' ' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return true
}

func normalizeCode(code string) string {
	compact := strings.ToUpper(strings.ReplaceAll(code, " ", ""))
	if compact == "" {
		return types.DefaultProductCode
	}
	return compact
}
