package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// SMTPNotifier delivers notifications as plain-text email through an SMTP
// relay with STARTTLS auth.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier constructs an email notifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send delivers the message to the destination address.
func (n *SMTPNotifier) Send(_ context.Context, message Message) error {
	if message.Destination == "" {
		return fmt.Errorf("notification destination is required")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", message.Destination)
	fmt.Fprintf(&msg, "Subject: %s\r\n", message.Subject)
	msg.WriteString("\r\n")
	msg.WriteString(message.Body)

	auth := smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	addr := n.cfg.Host + ":" + n.cfg.Port
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{message.Destination}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", message.Destination, err)
	}
	return nil
}
