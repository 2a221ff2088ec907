package routes

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterReportRoutes wires the read-only reporting endpoints.
func RegisterReportRoutes(r fiber.Router, d Deps) {
	r.Get("/reports/summary", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(d.Reports.Summarize())
	})

	r.Get("/reports/accounts", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		d.Reports.WriteAccountTable(&buf)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(http.StatusOK).SendString(buf.String())
	})

	r.Get("/reports/accounts.csv", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := d.Reports.ExportAccountsCSV(&buf); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="accounts.csv"`)
		return c.Status(http.StatusOK).Send(buf.Bytes())
	})

	r.Get("/reports/accounts/:accountId/statement", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := d.Reports.WriteStatement(c.UserContext(), &buf, c.Params("accountId")); err != nil {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(http.StatusOK).SendString(buf.String())
	})

	r.Get("/reports/accounts/:accountId/transactions.csv", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := d.Reports.ExportTransactionsCSV(c.UserContext(), &buf, c.Params("accountId")); err != nil {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
		return c.Status(http.StatusOK).Send(buf.Bytes())
	})
}
