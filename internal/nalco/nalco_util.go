package nalco

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const downloadTimeout = 60 * time.Second

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

var downloadClient = &http.Client{
	Timeout: downloadTimeout,
}

// DownloadPDF fetches the circular at pdfURL into dir, naming it after the
// URL basename. Returns the local path and whether the file was actually
// downloaded; a file that already exists is left alone.
func DownloadPDF(pdfURL, dir string) (string, bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create PDF directory %s: %w", dir, err)
	}

	name := FilenameForURL(pdfURL)
	outPath := filepath.Join(dir, name)

	if _, err := os.Stat(outPath); err == nil {
		log.Printf("PDF already exists: %s", outPath)
		return outPath, false, nil
	}

	req, err := http.NewRequest(http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build request for %s: %w", pdfURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to download %s: %w", pdfURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body for %s: %v", pdfURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("failed to download PDF: received status code %d from %s", resp.StatusCode, pdfURL)
	}

	tmp := outPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", false, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", false, fmt.Errorf("failed to write PDF to %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", false, fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return "", false, fmt.Errorf("failed to move PDF into place: %w", err)
	}

	log.Printf("Downloaded PDF to %s", outPath)
	return outPath, true, nil
}

// FilenameForURL derives a sanitized local filename from a PDF URL.
func FilenameForURL(pdfURL string) string {
	name := path.Base(trimQuery(pdfURL))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "/" {
		name = "circular.pdf"
	}
	return name
}

// ListPDFs returns the PDFs in dir, sorted by name. A missing directory is
// an empty list.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read PDF directory %s: %w", dir, err)
	}

	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	return pdfs, nil
}
