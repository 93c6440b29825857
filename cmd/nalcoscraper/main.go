package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shanehull/nalcoscraper/internal/ai"
	"github.com/shanehull/nalcoscraper/internal/circular"
	"github.com/shanehull/nalcoscraper/internal/config"
	"github.com/shanehull/nalcoscraper/internal/nalco"
	"github.com/shanehull/nalcoscraper/internal/notify"
	"github.com/shanehull/nalcoscraper/internal/series"
	"github.com/shanehull/nalcoscraper/internal/state"
	"github.com/shanehull/nalcoscraper/internal/store"
	"github.com/shanehull/nalcoscraper/internal/types"
	"github.com/shanehull/nalcoscraper/internal/workbook"
)

var (
	cfg = config.Load()

	pageURL      = flag.String("page-url", cfg.PageURL, "NALCO page that lists circular PDFs")
	pdfsDir      = flag.String("pdfs-dir", cfg.PDFsDir, "Directory where circular PDFs are stored")
	dataFile     = flag.String("data-file", cfg.DataFile, "Path of the output xlsx workbook")
	untilStr     = flag.String("until", "", "End date for the daily build (default: today)")
	backfill     = flag.Bool("backfill", false, "(-b) Process all PDFs in pdfs-dir and rebuild the daily sheet")
	repair       = flag.Bool("repair", false, "(-r) Rebuild the daily sheet from the existing workbook only, no fetching")
	rejectFuture = flag.Bool("reject-future", cfg.RejectFuture, "Reject circulars dated after today")

	smtpServer = flag.String("smtp-server", cfg.SMTPServer, "SMTP server address")
	smtpPort   = flag.Int("smtp-port", cfg.SMTPPort, "SMTP server port")
	smtpUser   = flag.String("smtp-user", cfg.SMTPUser, "SMTP username (email address)")
	smtpPass   = flag.String("smtp-pass", cfg.SMTPPass, "SMTP password or App Password")
	toEmail    = flag.String("to-email", cfg.ToEmail, "Recipient email address")
	fromEmail  = flag.String("from-email", cfg.FromEmail, "Sender email address (default: smtp-user)")

	geminiAPIKey = flag.String("gemini-api-key", cfg.GeminiAPIKey, "Gemini API key for optional circular commentary")
	geminiModel  = flag.String("gemini-model", cfg.GeminiModel, "Gemini model name")
)

func init() {
	flag.BoolVar(backfill, "b", false, "(-b) Process all PDFs in pdfs-dir and rebuild the daily sheet (shorthand)")
	flag.BoolVar(repair, "r", false, "(-r) Rebuild the daily sheet from the existing workbook only (shorthand)")

	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s:\n", "nalcoscraper")

		order := []string{
			"page-url",
			"pdfs-dir",
			"data-file",
			"until",
			"backfill",
			"repair",
			"reject-future",
			"smtp-server",
			"smtp-port",
			"smtp-user",
			"smtp-pass",
			"to-email",
			"from-email",
			"gemini-api-key",
			"gemini-model",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func main() {
	flag.Parse()

	if *backfill && *repair {
		fmt.Println("Error: -backfill and -repair are mutually exclusive.")
		os.Exit(2)
	}

	until := types.Day(time.Now())
	if *untilStr != "" {
		d, err := circular.ParseDateToken(*untilStr)
		if err != nil {
			fmt.Printf("Error: invalid -until date '%s': %v\n", *untilStr, err)
			os.Exit(2)
		}
		until = d
	}

	st := store.New()
	st.RejectFuture = *rejectFuture

	switch {
	case *repair:
		runRepair(st, until)
	case *backfill:
		runBackfill(st, until)
	default:
		runNormal(st, until)
	}
}

// runRepair rebuilds the daily sheet purely from the persisted workbook,
// migrating a legacy layout if that is what it finds. Zero usable events is
// a no-op, and the existing file is left untouched.
func runRepair(st *store.Store, until time.Time) {
	log.Printf("Running in REPAIR mode: rebuilding daily series from %s.", *dataFile)

	if err := workbook.Load(*dataFile, st); err != nil {
		fmt.Printf("Fatal error reading workbook: %v\n", err)
		os.Exit(1)
	}
	if st.Len() == 0 {
		fmt.Println("No usable events in existing workbook. Nothing to repair.")
		return
	}

	rebuildAndSave(st, until)
}

// runBackfill parses every locally stored PDF. Per-document failures are
// logged and skipped; the rest still make it into the rebuilt series.
func runBackfill(st *store.Store, until time.Time) {
	log.Printf("Running in BACKFILL mode: processing all PDFs in %s.", *pdfsDir)

	pdfs, err := nalco.ListPDFs(*pdfsDir)
	if err != nil {
		fmt.Printf("Fatal error listing PDFs: %v\n", err)
		os.Exit(1)
	}
	if len(pdfs) == 0 {
		log.Printf("No PDFs found in %s to backfill.", *pdfsDir)
	}

	var candidates []types.CircularEvent
	for _, p := range pdfs {
		e, err := eventFromPDF(p, "")
		if err != nil {
			log.Printf("Warning: skipping %s: %v", p, err)
			continue
		}
		candidates = append(candidates, e)
	}

	for _, e := range store.Dedupe(candidates) {
		st.Upsert(e)
	}

	rebuildAndSave(st, until)
}

// runNormal is the periodic cycle: check the page for the latest circular,
// download it if new, parse the stored PDFs, merge with the workbook events
// and rebuild. Extraction or price-normalization failure for the circular
// being actively processed is fatal — a fabricated or missing price must
// never be persisted. An unresolved date is best-effort: the event is
// dropped with a warning and the run proceeds.
func runNormal(st *store.Store, until time.Time) {
	log.Println("Running in NORMAL mode: checking page for the latest circular.")

	if err := workbook.Load(*dataFile, st); err != nil {
		fmt.Printf("Fatal error reading workbook: %v\n", err)
		os.Exit(1)
	}

	stateManager, err := state.NewManager(stateDir())
	if err != nil {
		fmt.Printf("Fatal error setting up state: %v\n", err)
		os.Exit(1)
	}

	recentTail := recentSeriesTail(st, until)

	link, err := nalco.FetchLatestPDFLink(*pageURL)
	if err != nil {
		log.Printf("Warning: failed to fetch circular page: %v. Falling back to stored PDFs.", err)
	} else if link == "" {
		log.Println("No PDF link found on the page. Falling back to stored PDFs.")
	}

	var newDoc string
	if link != "" {
		path, downloaded, err := nalco.DownloadPDF(link, *pdfsDir)
		if err != nil {
			fmt.Printf("Fatal error downloading circular: %v\n", err)
			os.Exit(1)
		}
		name := filepath.Base(path)
		if downloaded || !stateManager.IsProcessed(name) {
			newDoc = name
		}
	}

	pdfs, err := nalco.ListPDFs(*pdfsDir)
	if err != nil {
		fmt.Printf("Fatal error listing PDFs: %v\n", err)
		os.Exit(1)
	}

	var candidates []types.CircularEvent
	var newEvent *types.CircularEvent
	for _, p := range pdfs {
		name := filepath.Base(p)
		docLink := ""
		if name == newDoc {
			docLink = link
		}

		e, err := eventFromPDF(p, docLink)
		if err != nil {
			if name == newDoc && !errors.Is(err, types.ErrDateUnresolved) {
				// The circular being actively processed must parse.
				fmt.Printf("Fatal error processing new circular %s: %v\n", name, err)
				os.Exit(1)
			}
			log.Printf("Warning: skipping %s: %v", p, err)
			continue
		}
		candidates = append(candidates, e)
		if name == newDoc {
			ev := e
			newEvent = &ev
		}
	}

	for _, e := range store.Dedupe(candidates) {
		st.Upsert(e)
	}

	rebuildAndSave(st, until)

	for _, p := range pdfs {
		docURL := ""
		if filepath.Base(p) == newDoc {
			docURL = link
		}
		stateManager.MarkProcessed(filepath.Base(p), docURL)
	}
	stateManager.Save()

	if newEvent != nil {
		announceNewCircular(*newEvent, recentTail)
	}
}

// eventFromPDF runs the extraction pipeline for one stored circular.
func eventFromPDF(path, link string) (types.CircularEvent, error) {
	raw, err := circular.ExtractIE07(path)
	if err != nil {
		return types.CircularEvent{}, err
	}

	price, err := circular.NormalizePrice(raw.RawPrice)
	if err != nil {
		return types.CircularEvent{}, err
	}

	name := filepath.Base(path)

	date, err := circular.ResolveEventDate(raw, name, time.Now())
	if err != nil {
		return types.CircularEvent{}, err
	}

	return types.CircularEvent{
		Description:    raw.Description,
		ProductCode:    raw.ProductCode,
		BasicPrice:     &price,
		CircularDate:   date,
		CircularLink:   link,
		SourceDocument: name,
	}, nil
}

func rebuildAndSave(st *store.Store, until time.Time) {
	events := st.Events()
	daily := series.BuildDaily(events, until)

	if err := workbook.Save(*dataFile, events, daily); err != nil {
		fmt.Printf("Fatal error writing workbook: %v\n", err)
		os.Exit(1)
	}

	notify.ReportRebuild(len(events), len(daily), *dataFile)
}

// announceNewCircular reports the freshly ingested circular on the console
// and by email, with optional AI commentary. Notification failures are
// warnings; the workbook is already safely written by this point.
func announceNewCircular(event types.CircularEvent, recentTail []string) {
	data := notify.NotificationData{Event: event}

	if *geminiAPIKey != "" {
		commentary, err := ai.GenerateCommentary(describeEvent(event), recentTail, *geminiAPIKey, *geminiModel)
		if err != nil {
			log.Printf("Warning: AI commentary failed: %v", err)
		} else {
			data.Commentary = commentary
		}
	}

	notify.ReportNewCircular(data)

	emailConfig := notify.EmailConfig{
		SMTPServer: *smtpServer,
		SMTPPort:   *smtpPort,
		SMTPUser:   *smtpUser,
		SMTPPass:   *smtpPass,
		ToEmail:    *toEmail,
		FromEmail:  *fromEmail,
		Enabled:    *smtpServer != "" && *smtpUser != "" && *smtpPass != "" && *toEmail != "",
	}
	if emailConfig.FromEmail == "" {
		emailConfig.FromEmail = emailConfig.SMTPUser
	}
	if !emailConfig.Enabled {
		return
	}

	msg, err := notify.NewHTMLEmailRenderer().Render(data)
	if err != nil {
		log.Printf("Warning: failed to render notification email: %v", err)
		return
	}
	if err := notify.NewEmailSender(emailConfig).Send(msg); err != nil {
		log.Printf("Warning: failed to send notification email: %v", err)
	}
}

func describeEvent(e types.CircularEvent) string {
	return fmt.Sprintf("Description: %s\nProduct Code: %s\nBasic Price: %s\nCircular Date: %s\nSource: %s",
		e.Description, e.ProductCode, notify.FormatPrice(e.BasicPrice),
		e.CircularDate.Format(workbook.DateFormat), e.SourceDocument)
}

// recentSeriesTail renders the last two weeks of the current daily series
// for the AI commentary context.
func recentSeriesTail(st *store.Store, until time.Time) []string {
	const tailDays = 14

	daily := series.BuildDaily(st.Events(), until)
	if len(daily) > tailDays {
		daily = daily[len(daily)-tailDays:]
	}

	lines := make([]string, 0, len(daily))
	for _, d := range daily {
		lines = append(lines, fmt.Sprintf("%s %s", d.Date.Format(workbook.DateFormat), notify.FormatPrice(d.BasicPrice)))
	}
	return lines
}

func stateDir() string {
	if cfg.StateDir != "" {
		return cfg.StateDir
	}
	if dir := filepath.Dir(*dataFile); dir != "." {
		return dir
	}
	return "data"
}
