package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterAlertRoutes wires the balance alert endpoints: an on-demand scan
// and threshold listings.
func RegisterAlertRoutes(r fiber.Router, d Deps) {
	r.Post("/alerts/scan", func(c *fiber.Ctx) error {
		result := d.Monitor.Scan(c.UserContext())
		return c.Status(http.StatusOK).JSON(result)
	})

	r.Get("/alerts/low-balance", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"threshold": d.Cfg.LowThreshold,
			"accounts":  d.Monitor.Below(d.Cfg.LowThreshold),
		})
	})

	r.Get("/alerts/critical-balance", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"threshold": d.Cfg.CriticalThreshold,
			"accounts":  d.Monitor.Below(d.Cfg.CriticalThreshold),
		})
	})
}
