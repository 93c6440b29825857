/*
Package config loads scraper configuration from a .env file, the OS
environment and built-in defaults. Flags parsed in main override anything
loaded here.
*/
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultPageURL  = "https://www.nalcoindia.com/for-investor/price-circulars/"
	defaultPDFsDir  = "pdfs"
	defaultDataFile = "data/nalco_prices.xlsx"
)

// Config holds everything a run needs outside of mode selection.
type Config struct {
	PageURL      string
	PDFsDir      string
	DataFile     string
	StateDir     string
	RejectFuture bool

	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	ToEmail    string
	FromEmail  string

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads .env (if present) and the environment, returning a Config with
// defaults applied.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	return Config{
		PageURL:      getEnv("NALCO_PAGE_URL", defaultPageURL),
		PDFsDir:      getEnv("PDFS_DIR", defaultPDFsDir),
		DataFile:     getEnv("DATA_FILE", defaultDataFile),
		StateDir:     getEnv("STATE_DIR", ""),
		RejectFuture: getEnvBool("REJECT_FUTURE", false),

		SMTPServer: getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:   getEnvInt("SMTP_PORT", 587),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		ToEmail:    getEnv("TO_EMAIL", ""),
		FromEmail:  getEnv("FROM_EMAIL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', using %t", key, v, fallback)
		return fallback
	}
	return b
}
