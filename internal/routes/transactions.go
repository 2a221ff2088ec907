package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/ledger"
)

// RegisterTransactionRoutes wires the money-moving endpoints on the guarded
// router and the read-only history endpoints on the plain one.
func RegisterTransactionRoutes(guarded, reads fiber.Router, h *ledger.Handler) {
	guarded.Post("/transactions/deposit", h.Deposit)
	guarded.Post("/transactions/withdraw", h.Withdraw)
	guarded.Post("/transactions/transfer", h.Transfer)

	reads.Get("/transactions", h.Recent)
	reads.Get("/accounts/:accountId/transactions", h.History)
}
