package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/notification"
)

// ScanResult summarizes one pass over all active accounts.
type ScanResult struct {
	Scanned  int `json:"scanned"`
	Low      int `json:"low"`
	Critical int `json:"critical"`
}

// Monitor runs a periodic balance scan over all active accounts on its own
// goroutine, reading only through the account store's public snapshot. Its
// lifecycle is owned by the process: Start once at boot, Stop at shutdown.
type Monitor struct {
	accounts  *account.Store
	evaluator Evaluator
	notifier  notification.Notifier
	interval  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewMonitor constructs a monitor; it does not start scanning.
func NewMonitor(accounts *account.Store, evaluator Evaluator, notifier notification.Notifier, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		accounts:  accounts,
		evaluator: evaluator,
		notifier:  notifier,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the periodic scan. Calling Start on a running monitor is an
// error.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("balance monitor already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx)
	m.logger.Info("balance monitor started", "interval", m.interval)
	return nil
}

// Stop cancels the scan loop and waits for it to drain.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.cancel()
	done := m.done
	m.running = false
	m.mu.Unlock()

	<-done
	m.logger.Info("balance monitor stopped")
}

// Running reports whether the scan loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := m.Scan(ctx)
			m.logger.Info("balance scan complete",
				"scanned", result.Scanned, "low", result.Low, "critical", result.Critical)
		}
	}
}

// Scan classifies every active account once and notifies holders of low or
// critical balances. Notification failures are logged, never propagated.
func (m *Monitor) Scan(ctx context.Context) ScanResult {
	accounts := m.accounts.List()
	result := ScanResult{Scanned: len(accounts)}

	for _, acct := range accounts {
		level := m.evaluator.Classify(acct.Balance)
		switch level {
		case LevelLow:
			result.Low++
		case LevelCritical:
			result.Critical++
		default:
			continue
		}
		if err := m.notifier.Send(ctx, ThresholdMessage(acct, level, m.evaluator.Threshold(level))); err != nil {
			m.logger.Warn("balance alert delivery failed", "account", acct.ID, "error", err)
		}
	}
	return result
}

// Below returns the active accounts whose balance is under the given
// threshold.
func (m *Monitor) Below(threshold int64) []account.Account {
	var out []account.Account
	for _, acct := range m.accounts.List() {
		if acct.Balance < threshold {
			out = append(out, acct)
		}
	}
	return out
}

// ThresholdMessage builds the holder notification for a threshold crossing.
func ThresholdMessage(acct account.Account, level Level, threshold int64) notification.Message {
	kind := notification.KindLowBalance
	if level == LevelCritical {
		kind = notification.KindCriticalBalance
	}
	return notification.Message{
		Kind:        kind,
		Destination: acct.Email,
		Subject:     fmt.Sprintf("Balance alert for account %s", acct.ID),
		Body: fmt.Sprintf(
			"Dear %s,\n\nThe balance of account %s has fallen to %d.%02d, below the threshold of %d.%02d.\nPlease deposit funds at your earliest convenience.\n",
			acct.HolderName, acct.ID,
			acct.Balance/100, abs(acct.Balance%100),
			threshold/100, abs(threshold%100)),
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
