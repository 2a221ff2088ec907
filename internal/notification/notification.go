package notification

import (
	"context"
	"log/slog"
)

const (
	// KindLowBalance flags a balance under the low threshold.
	KindLowBalance = "low_balance"
	// KindCriticalBalance flags a balance under the critical threshold.
	KindCriticalBalance = "critical_balance"
	// KindAccountOpened is the welcome notification for a new account.
	KindAccountOpened = "account_opened"
)

// Message describes a notification payload. Destination is the contact email
// of the account holder.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to account holders. Delivery is best
// effort: the ledger never fails an operation because a send failed.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. It is the
// default collaborator when email delivery is disabled.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"subject", message.Subject,
	)
	return nil
}
