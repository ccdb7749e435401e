// Package email delivers finished quotes over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	gomail "github.com/wneessen/go-mail"

	"bakery_quote_backend/platform/config"
)

// Sender delivers quote emails with the generated artifacts attached via the
// configured SMTP server.
type Sender struct {
	cfg config.SMTPConfig
}

// NewSender creates a sender. Enabled reports whether delivery is configured
// at all; callers treat a disabled sender as "not_configured", not an error.
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Enabled reports whether SMTP delivery is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.IsSMTPEnabled()
}

// SendQuote emails the quotation with each artifact attached. attachmentPaths
// that cannot be read fail the send; a quote email without its documents is
// worse than no email.
func (s *Sender) SendQuote(ctx context.Context, to, subject, body string, attachmentPaths []string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetSenderName(), s.cfg.GetSMTPFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	for _, path := range attachmentPaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read attachment %s: %w", filepath.Base(path), err)
		}
		msg.AttachReader(filepath.Base(path), bytes.NewReader(content))
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.GetSMTPPort()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.cfg.GetSMTPUsername() != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.GetSMTPUsername()),
			gomail.WithPassword(s.cfg.GetSMTPPassword()),
		)
	}

	client, err := gomail.NewClient(s.cfg.GetSMTPHost(), opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
