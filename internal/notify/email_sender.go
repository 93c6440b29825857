package notify

import (
	"log"
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds the SMTP settings for circular alert delivery.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// EmailSender delivers circular alerts over SMTP.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates a sender for the given SMTP settings.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send delivers one rendered alert: a plain text body with the HTML version
// attached as an alternative part. A disabled sender is a silent no-op so
// callers don't have to guard on configuration.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		log.Printf("Warning: could not email circular alert to %s: %v", s.cfg.ToEmail, err)
		return err
	}

	log.Printf("Emailed circular alert: %s", msg.Subject)
	return nil
}
