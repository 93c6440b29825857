/*
Package notify reports run outcomes to the console and, when configured,
emails an alert for a newly published circular.
*/
package notify

import (
	"fmt"
	"strings"

	"github.com/shanehull/nalcoscraper/internal/ai"
	"github.com/shanehull/nalcoscraper/internal/types"
	"github.com/shanehull/nalcoscraper/internal/workbook"
)

// NotificationData carries everything a rendered alert needs.
type NotificationData struct {
	Event      types.CircularEvent
	Commentary *ai.Commentary
}

// RenderedMessage is a notification ready for delivery.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// ReportNewCircular prints a console summary for a freshly ingested
// circular.
func ReportNewCircular(data NotificationData) {
	e := data.Event

	fmt.Println("\n===========================================")
	fmt.Println("✅ NEW CIRCULAR INGESTED")
	fmt.Println("===========================================")
	fmt.Printf("Description:   %s\n", e.Description)
	fmt.Printf("Product Code:  %s\n", e.ProductCode)
	fmt.Printf("Basic Price:   %s\n", FormatPrice(e.BasicPrice))
	fmt.Printf("Circular Date: %s\n", e.CircularDate.Format(workbook.DateFormat))
	if e.CircularLink != "" {
		fmt.Printf("Link:          %s\n", e.CircularLink)
	}
	fmt.Printf("Source:        %s\n", e.SourceDocument)

	if data.Commentary != nil {
		if len(data.Commentary.Summary) > 0 {
			fmt.Println("\nAI Summary:")
			for _, s := range data.Commentary.Summary {
				fmt.Printf("\t- %s\n", s)
			}
		}
		if len(data.Commentary.PriceObservations) > 0 {
			fmt.Println("Observations:")
			for _, o := range data.Commentary.PriceObservations {
				fmt.Printf("\t- [%s] %s\n", o.Category, o.Details)
			}
		}
	}

	fmt.Println("===========================================")
}

// ReportRebuild prints a console summary for a rebuild-only run.
func ReportRebuild(eventCount, dailyCount int, dataFile string) {
	fmt.Println("\n-------------------------------------------")
	fmt.Printf("Rebuilt daily series: %d events, %d daily rows.\n", eventCount, dailyCount)
	fmt.Printf("Workbook: %s\n", dataFile)
	fmt.Println("-------------------------------------------")
}

// FormatPrice renders a basic price for display.
func FormatPrice(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", *p)
}

// renderPlainText produces a readable plain text version for email clients
// that don't support HTML.
func renderPlainText(data NotificationData) string {
	e := data.Event
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("NALCO %s - %s\n", e.ProductCode, e.Description))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("Basic Price: %s\n", FormatPrice(e.BasicPrice)))
	sb.WriteString(fmt.Sprintf("Circular Date: %s\n", e.CircularDate.Format(workbook.DateFormat)))
	if e.CircularLink != "" {
		sb.WriteString(fmt.Sprintf("Link: %s\n", e.CircularLink))
	}
	sb.WriteString(fmt.Sprintf("Source: %s\n\n", e.SourceDocument))

	if data.Commentary != nil {
		if len(data.Commentary.Summary) > 0 {
			sb.WriteString("AI SUMMARY\n")
			sb.WriteString(strings.Repeat("-", 20) + "\n")
			for _, s := range data.Commentary.Summary {
				sb.WriteString(fmt.Sprintf("• %s\n", s))
			}
			sb.WriteString("\n")
		}
		if len(data.Commentary.PriceObservations) > 0 {
			sb.WriteString("OBSERVATIONS\n")
			sb.WriteString(strings.Repeat("-", 20) + "\n")
			for _, o := range data.Commentary.PriceObservations {
				sb.WriteString(fmt.Sprintf("• [%s] %s\n", o.Category, o.Details))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
