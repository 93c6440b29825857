/*
Package workbook reads and writes the persisted price workbook. It detects
which of the known layouts an existing file uses, migrates it into circular
events, and writes the rebuilt events + daily sheets without ever leaving a
truncated file behind.
*/
package workbook

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shanehull/nalcoscraper/internal/store"
	"github.com/shanehull/nalcoscraper/internal/types"
)

// DateFormat is the fixed serialization for both the daily Date column and
// the Circular Date column, applied on read and write.
const DateFormat = "02-01-2006"

var eventSheetNames = []string{"events", "circulars", "circular", "events_sheet"}

var eventHeader = []string{"Description", "Product Code", "Basic Price", "Circular Date", "Circular Link", "Source"}
var dailyHeader = []string{"Date", "Description", "Product Code", "Basic Price", "Circular Date", "Circular Link"}

// Load reads the workbook at path into a store. A missing file or an
// unrecognized layout yields an empty store, not an error: the run proceeds
// and re-seeds from scratch.
func Load(path string, s *store.Store) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close workbook %s: %v", path, err)
		}
	}()

	sheet := pickSheet(f)
	if sheet == "" {
		log.Printf("Warning: workbook %s has no sheets, starting with empty event set", path)
		return nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet '%s' from %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil
	}

	s.FromRows(rows[0], rows[1:])
	return nil
}

// pickSheet prefers a dedicated events sheet; otherwise the first sheet is
// inspected, whatever its layout.
func pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, s := range sheets {
		for _, want := range eventSheetNames {
			if normalizeSheetName(s) == want {
				return s
			}
		}
	}
	return sheets[0]
}

func normalizeSheetName(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b = append(b, r)
		}
	}
	return string(b)
}

// Save writes the events and daily sheets to path. The previous workbook is
// backed up first, and the new one is written to a temporary file and
// renamed into place, so a failed write never truncates good data.
func Save(path string, events []types.CircularEvent, daily []types.DailyRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.bak.%s", path, time.Now().UTC().Format("20060102150405"))
		if err := copyFile(path, backup); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
		log.Printf("Backed up existing %s to %s", path, backup)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close workbook: %v", err)
		}
	}()

	if err := writeEvents(f, events); err != nil {
		return err
	}
	if err := writeDaily(f, daily); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		log.Printf("Warning: failed to delete default sheet: %v", err)
	}

	tmp := path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace workbook %s: %w", path, err)
	}

	log.Printf("Wrote workbook to %s (%d events, %d daily rows)", path, len(events), len(daily))
	return nil
}

// writeEvents emits one row per circular, ascending by date.
func writeEvents(f *excelize.File, events []types.CircularEvent) error {
	if _, err := f.NewSheet("events"); err != nil {
		return fmt.Errorf("failed to create events sheet: %w", err)
	}

	sorted := make([]types.CircularEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CircularDate.Before(sorted[j].CircularDate)
	})

	if err := writeRow(f, "events", 1, toCells(eventHeader)); err != nil {
		return err
	}
	for i, e := range sorted {
		cells := []any{
			e.Description,
			e.ProductCode,
			priceCell(e.BasicPrice),
			e.CircularDate.Format(DateFormat),
			e.CircularLink,
			e.SourceDocument,
		}
		if err := writeRow(f, "events", i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// writeDaily emits the daily series most-recent-first, which is how the
// sheet is read by people.
func writeDaily(f *excelize.File, daily []types.DailyRow) error {
	if _, err := f.NewSheet("daily"); err != nil {
		return fmt.Errorf("failed to create daily sheet: %w", err)
	}

	sorted := make([]types.DailyRow, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if err := writeRow(f, "daily", 1, toCells(dailyHeader)); err != nil {
		return err
	}
	for i, d := range sorted {
		cells := []any{
			d.Date.Format(DateFormat),
			d.Description,
			d.ProductCode,
			priceCell(d.BasicPrice),
			d.CircularDate.Format(DateFormat),
			d.CircularLink,
		}
		if err := writeRow(f, "daily", i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for ci, v := range cells {
		ref, err := excelize.CoordinatesToCellName(ci+1, row)
		if err != nil {
			return fmt.Errorf("failed to compute cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			return fmt.Errorf("failed to set cell %s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}

func toCells(header []string) []any {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

func priceCell(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
