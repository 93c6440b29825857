package circular

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/nalcoscraper/internal/types"
)

// glyphs models the reader's per-glyph emission: one Text per glyph, spaces
// included, X advancing by the glyph width.
func glyphs(s string, x float64) []pdf.Text {
	const w = 5
	out := make([]pdf.Text, 0, len(s))
	for i, r := range s {
		out = append(out, pdf.Text{S: string(r), X: x + float64(i)*w, W: w})
	}
	return out
}

func row(segments ...[]pdf.Text) []pdf.Text {
	var out []pdf.Text
	for _, s := range segments {
		out = append(out, s...)
	}
	return out
}

func TestClusterCells(t *testing.T) {
	// Gaps of more than 12pt split cells; contiguous glyphs stay together.
	cells := clusterCells(row(
		glyphs("ALUMINIUM INGOT", 40),
		glyphs("IE 07", 220),
		glyphs("268250", 340),
	))
	assert.Equal(t, []string{"ALUMINIUM INGOT", "IE 07", "268250"}, cells)
}

func TestClusterCellsSingleCell(t *testing.T) {
	assert.Equal(t, []string{"IE 07"}, clusterCells(glyphs("IE 07", 40)))
}

func TestClusterCellsEmpty(t *testing.T) {
	assert.Empty(t, clusterCells(nil))
}

func TestIsCodeCell(t *testing.T) {
	assert.True(t, isCodeCell("IE07"))
	assert.True(t, isCodeCell("ie07"))
	assert.True(t, isCodeCell("IE 07"))
	assert.True(t, isCodeCell("IE 7"))
	assert.False(t, isCodeCell("IE08"))
	assert.False(t, isCodeCell("INGOT"))
	assert.False(t, isCodeCell(""))
}

func TestIsNumericCell(t *testing.T) {
	assert.True(t, isNumericCell("268250"))
	assert.True(t, isNumericCell("268,250.00"))
	assert.True(t, isNumericCell(" 1 "))
	assert.False(t, isNumericCell("IE07"))
	assert.False(t, isNumericCell("ALUMINIUM INGOT"))
	assert.False(t, isNumericCell(""))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "IE07", normalizeCode("ie 07"))
	assert.Equal(t, "IE07", normalizeCode("IE07"))
	assert.Equal(t, "IE07", normalizeCode(""))
}

// pdfText is one positioned string in a generated fixture document.
type pdfText struct {
	x, y float64
	s    string
}

// buildPDF writes a minimal single-page PDF with an uncompressed content
// stream placing each string at its coordinates, and returns its path. The
// Helvetica font carries a flat width table so glyph X positions advance
// the way they do in real circulars.
func buildPDF(t *testing.T, name string, texts []pdfText) string {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT\n/F1 10 Tf\n")
	for _, txt := range texts {
		fmt.Fprintf(&content, "1 0 0 1 %.0f %.0f Tm (%s) Tj\n", txt.x, txt.y, txt.s)
	}
	content.WriteString("ET")

	widths := strings.TrimSpace(strings.Repeat("500 ", 95))

	var buf bytes.Buffer
	offsets := make([]int, 6)
	addObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	addObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	addObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	addObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	addObj(5, fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractIE07TableLayout(t *testing.T) {
	path := buildPDF(t, "Ingot-07-08-2025.pdf", []pdfText{
		{40, 720, "Description"}, {200, 720, "Code"}, {300, 720, "Basic Price"}, {400, 720, "Date"},
		{40, 700, "ALUMINIUM INGOT"}, {200, 700, "IE 07"}, {300, 700, "268250"}, {400, 700, "07-08-2025"},
		{40, 680, "ALUMINIUM WIRE ROD"}, {200, 680, "WR11"}, {300, 680, "271500"}, {400, 680, "07-08-2025"},
	})

	raw, err := ExtractIE07(path)
	require.NoError(t, err)

	assert.Equal(t, "ALUMINIUM INGOT", raw.Description)
	assert.Equal(t, "IE07", raw.ProductCode)
	assert.Equal(t, "268250", raw.RawPrice)
	assert.False(t, raw.DateFailed)
	require.NotNil(t, raw.Date)
	assert.True(t, raw.Date.Equal(time.Date(2025, time.August, 7, 0, 0, 0, 0, time.UTC)))

	price, err := NormalizePrice(raw.RawPrice)
	require.NoError(t, err)
	assert.InDelta(t, 268.250, price, 1e-9)
}

func TestExtractIE07LineFallback(t *testing.T) {
	// Prose layout: the code row carries no separable price cell, so the
	// cell scan fails and the line scan picks the trailing integer.
	path := buildPDF(t, "circular.pdf", []pdfText{
		{40, 720, "NALCO price circular"},
		{40, 700, "Basic price of Aluminium Ingot IE07 is Rs 268250 per MT"},
	})

	raw, err := ExtractIE07(path)
	require.NoError(t, err)

	assert.Equal(t, "268250", raw.RawPrice)
	assert.Contains(t, strings.ToUpper(raw.Description), "ALUMINIUM INGOT")
	assert.Equal(t, "IE07", raw.ProductCode)
	assert.Nil(t, raw.Date)
	assert.False(t, raw.DateFailed)
}

func TestExtractIE07SnippetFallback(t *testing.T) {
	// Code and price land on different rows, defeating both the cell scan
	// and the per-line scan; only the whole-document snippet search hits.
	path := buildPDF(t, "circular.pdf", []pdfText{
		{40, 720, "Product group IE07"},
		{40, 700, "Effective basic rate Rs 268,250"},
	})

	raw, err := ExtractIE07(path)
	require.NoError(t, err)

	assert.Equal(t, "268,250", raw.RawPrice)
	assert.Equal(t, "IE07", raw.ProductCode)
	assert.Contains(t, raw.Description, "IE07")
}

func TestExtractIE07RowNotFound(t *testing.T) {
	path := buildPDF(t, "wire-rod.pdf", []pdfText{
		{40, 700, "ALUMINIUM WIRE ROD WR11 Rs 271500 per MT"},
	})

	raw, err := ExtractIE07(path)
	assert.Nil(t, raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRowNotFound)
	assert.Contains(t, err.Error(), "wire-rod.pdf")
}

func TestExtractIE07UnparseableDateToken(t *testing.T) {
	// A date-looking token that is no calendar date flags the row instead
	// of failing extraction; resolving the event date then refuses it.
	path := buildPDF(t, "Ingot.pdf", []pdfText{
		{40, 700, "ALUMINIUM INGOT"}, {200, 700, "IE07"}, {300, 700, "268250"}, {400, 700, "31-13-2025"},
	})

	raw, err := ExtractIE07(path)
	require.NoError(t, err)

	assert.Equal(t, "268250", raw.RawPrice)
	assert.Nil(t, raw.Date)
	assert.True(t, raw.DateFailed)

	_, err = ResolveEventDate(raw, "Ingot.pdf", time.Now())
	assert.ErrorIs(t, err, types.ErrDateUnresolved)
}
