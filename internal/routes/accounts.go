package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/account"
)

// RegisterAccountRoutes wires the account lifecycle endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/:accountId", h.Get)
	r.Delete("/accounts/:accountId", h.Close)
}
