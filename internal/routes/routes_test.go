package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/alert"
	"github.com/corebank/corebank/internal/config"
	"github.com/corebank/corebank/internal/ledger"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/report"
	"github.com/corebank/corebank/internal/storage"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := logging.Discard()
	mem := storage.NewMemory()
	accounts := account.New(context.Background(), mem, logger)
	notifier := notification.NewLoggerNotifier(logger)
	m := metrics.New()
	evaluator := alert.Evaluator{Low: 100_000, Critical: 50_000}
	engine := ledger.NewEngine(50_000, accounts, mem, evaluator, notifier, m, logger)
	monitor := alert.NewMonitor(accounts, evaluator, notifier, time.Hour, logger)
	reports := report.NewService(accounts, engine)

	app := fiber.New()
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppName:           "CoreBank",
			MinimumBalance:    50_000,
			LowThreshold:      100_000,
			CriticalThreshold: 50_000,
			IdempotencyTTL:    time.Hour,
		},
		Logger:   logger,
		Accounts: accounts,
		Engine:   engine,
		Monitor:  monitor,
		Reports:  reports,
		Metrics:  m,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	return resp.StatusCode, payload
}

func createAccount(t *testing.T, app *fiber.App, id string, balance int64) {
	t.Helper()
	body := `{"id":"` + id + `","holder_name":"Asha Rao","initial_balance":` + strconv.FormatInt(balance, 10) +
		`,"kind":"SAVINGS","email":"asha@example.com","phone":"9876543210"}`
	code, payload := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", body)
	if code != fiber.StatusCreated {
		t.Fatalf("create %s: status %d payload %v", id, code, payload)
	}
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	createAccount(t, app, "ACC001", 150_000)

	code, payload := doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/ACC001", "")
	if code != fiber.StatusOK {
		t.Fatalf("get account: status %d", code)
	}
	if payload["id"] != "ACC001" || payload["balance"].(float64) != 150_000 {
		t.Fatalf("unexpected account payload: %v", payload)
	}

	code, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/accounts",
		`{"id":"ACC001","holder_name":"Asha Rao","initial_balance":0,"kind":"SAVINGS","email":"asha@example.com","phone":"9876543210"}`)
	if code != fiber.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", code)
	}

	code, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/accounts/ACC001", "")
	if code != fiber.StatusOK {
		t.Fatalf("close account: status %d", code)
	}
	code, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/ACC001", "")
	if code != fiber.StatusNotFound {
		t.Fatalf("closed account: expected 404, got %d", code)
	}
}

func TestMoneyMovementOverHTTP(t *testing.T) {
	app := newTestApp(t)

	createAccount(t, app, "ACC001", 150_000)
	createAccount(t, app, "ACC002", 100_000)

	code, payload := doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/deposit",
		`{"account_id":"ACC001","amount":50000}`)
	if code != fiber.StatusCreated {
		t.Fatalf("deposit: status %d payload %v", code, payload)
	}
	if payload["balance_after"].(float64) != 200_000 {
		t.Fatalf("unexpected deposit payload: %v", payload)
	}

	code, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/withdraw",
		`{"account_id":"ACC001","amount":500000}`)
	if code != fiber.StatusUnprocessableEntity {
		t.Fatalf("over-withdraw: expected 422, got %d", code)
	}

	code, payload = doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/transfer",
		`{"from_account_id":"ACC001","to_account_id":"ACC002","amount":100000}`)
	if code != fiber.StatusCreated {
		t.Fatalf("transfer: status %d payload %v", code, payload)
	}
	if payload["debit"] == nil || payload["credit"] == nil {
		t.Fatalf("transfer payload missing legs: %v", payload)
	}

	code, payload = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/ACC001/transactions", "")
	if code != fiber.StatusOK {
		t.Fatalf("history: status %d", code)
	}
	if payload["count"].(float64) != 2 {
		t.Fatalf("expected 2 transactions, got %v", payload["count"])
	}

	code, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/deposit",
		`{"account_id":"ACC001","amount":-5}`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("negative deposit: expected 400, got %d", code)
	}

	code, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/deposit",
		`{"account_id":"ZZZ999","amount":100}`)
	if code != fiber.StatusNotFound {
		t.Fatalf("unknown account: expected 404, got %d", code)
	}
}

func TestAlertAndReportRoutes(t *testing.T) {
	app := newTestApp(t)

	createAccount(t, app, "ACC001", 150_000)
	createAccount(t, app, "ACC002", 30_000)

	code, payload := doJSON(t, app, fiber.MethodPost, "/api/v1/alerts/scan", "")
	if code != fiber.StatusOK {
		t.Fatalf("scan: status %d", code)
	}
	if payload["scanned"].(float64) != 2 || payload["critical"].(float64) != 1 {
		t.Fatalf("unexpected scan result: %v", payload)
	}

	code, payload = doJSON(t, app, fiber.MethodGet, "/api/v1/alerts/low-balance", "")
	if code != fiber.StatusOK {
		t.Fatalf("low balance: status %d", code)
	}
	if payload["threshold"].(float64) != 100_000 {
		t.Fatalf("unexpected threshold: %v", payload)
	}

	code, payload = doJSON(t, app, fiber.MethodGet, "/api/v1/reports/summary", "")
	if code != fiber.StatusOK {
		t.Fatalf("summary: status %d", code)
	}
	if payload["total_accounts"].(float64) != 2 || payload["total_balance"].(float64) != 180_000 {
		t.Fatalf("unexpected summary: %v", payload)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/reports/accounts.csv", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("csv export: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("csv export: status %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "ACC001") {
		t.Fatalf("csv missing account row:\n%s", raw)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("metrics: status %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "accounts_active") {
		t.Fatalf("metrics output missing gauge:\n%s", raw)
	}
}
