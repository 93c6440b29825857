package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shanehull/nalcoscraper/internal/workbook"
)

// HTMLEmailRenderer renders circular alerts as HTML emails with a plain
// text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"price": FormatPrice,
		"day": func(d time.Time) string {
			return d.Format(workbook.DateFormat)
		},
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("NALCO %s: %s (%s)",
		data.Event.ProductCode,
		FormatPrice(data.Event.BasicPrice),
		data.Event.CircularDate.Format(workbook.DateFormat))

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}
