package alert

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/storage"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) messages() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.sent...)
}

func seedAccounts(t *testing.T, balances map[string]int64) *account.Store {
	t.Helper()
	store := account.New(context.Background(), storage.NewMemory(), logging.Discard())
	for id, balance := range balances {
		_, err := store.Create(context.Background(), account.CreateInput{
			ID:             id,
			HolderName:     "Asha Rao",
			InitialBalance: balance,
			Kind:           account.KindSavings,
			Email:          "asha@example.com",
			Phone:          "9876543210",
		})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	return store
}

func TestScanCountsAndNotifies(t *testing.T) {
	accounts := seedAccounts(t, map[string]int64{
		"ACC001": 2000, // healthy
		"ACC002": 700,  // low
		"ACC003": 100,  // critical
	})
	notifier := &captureNotifier{}
	monitor := NewMonitor(accounts, Evaluator{Low: 1000, Critical: 500}, notifier, time.Hour, logging.Discard())

	result := monitor.Scan(context.Background())
	if result.Scanned != 3 || result.Low != 1 || result.Critical != 1 {
		t.Fatalf("unexpected scan result: %+v", result)
	}

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(msgs))
	}
	kinds := map[string]bool{}
	for _, msg := range msgs {
		kinds[msg.Kind] = true
	}
	if !kinds[notification.KindLowBalance] || !kinds[notification.KindCriticalBalance] {
		t.Fatalf("expected one low and one critical notification, got %+v", kinds)
	}
}

func TestBelow(t *testing.T) {
	accounts := seedAccounts(t, map[string]int64{
		"ACC001": 2000,
		"ACC002": 700,
		"ACC003": 100,
	})
	monitor := NewMonitor(accounts, Evaluator{Low: 1000, Critical: 500}, &captureNotifier{}, time.Hour, logging.Discard())

	below := monitor.Below(1000)
	if len(below) != 2 {
		t.Fatalf("expected 2 accounts below 1000, got %d", len(below))
	}
	below = monitor.Below(500)
	if len(below) != 1 || below[0].ID != "ACC003" {
		t.Fatalf("expected only ACC003 below 500, got %+v", below)
	}
}

func TestMonitorLifecycle(t *testing.T) {
	accounts := seedAccounts(t, nil)
	monitor := NewMonitor(accounts, Evaluator{Low: 1000, Critical: 500}, &captureNotifier{}, time.Hour, logging.Discard())

	if monitor.Running() {
		t.Fatalf("monitor should not run before Start")
	}
	if err := monitor.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !monitor.Running() {
		t.Fatalf("monitor should run after Start")
	}
	if err := monitor.Start(); err == nil {
		t.Fatalf("second Start must fail")
	}

	monitor.Stop()
	if monitor.Running() {
		t.Fatalf("monitor should stop after Stop")
	}
	monitor.Stop() // idempotent
}

func TestThresholdMessage(t *testing.T) {
	acct := account.Account{
		ID:         "ACC001",
		HolderName: "Asha Rao",
		Balance:    12345,
		Email:      "asha@example.com",
	}

	msg := ThresholdMessage(acct, LevelCritical, 50000)
	if msg.Kind != notification.KindCriticalBalance {
		t.Fatalf("expected critical kind, got %s", msg.Kind)
	}
	if msg.Destination != "asha@example.com" {
		t.Fatalf("unexpected destination %s", msg.Destination)
	}
	if !strings.Contains(msg.Body, "123.45") || !strings.Contains(msg.Body, "500.00") {
		t.Fatalf("amounts not rendered in body: %q", msg.Body)
	}
	if !strings.Contains(msg.Subject, "ACC001") {
		t.Fatalf("subject missing account id: %q", msg.Subject)
	}
}
