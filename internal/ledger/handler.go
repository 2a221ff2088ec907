package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/storage"
)

// Handler exposes the money-moving and history endpoints.
type Handler struct {
	engine *Engine
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type movementRequest struct {
	AccountID   string `json:"account_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type transferRequest struct {
	FromID      string `json:"from_account_id"`
	ToID        string `json:"to_account_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Deposit credits an account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := h.engine.Deposit(c.UserContext(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(tx)
}

// Withdraw debits an account subject to the minimum balance floor.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := h.engine.Withdraw(c.UserContext(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(tx)
}

// Transfer moves funds between two accounts atomically.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	debit, credit, err := h.engine.Transfer(c.UserContext(), req.FromID, req.ToID, req.Amount, req.Description)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"debit":  debit,
		"credit": credit,
	})
}

// History returns an account's transactions, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	txs, err := h.engine.History(c.UserContext(), accountID)
	if err != nil {
		return mapError(err)
	}
	count, err := h.engine.Count(c.UserContext(), accountID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id":   accountID,
		"count":        count,
		"transactions": txs,
	})
}

// Recent returns the most recent transactions across all accounts.
func (h *Handler) Recent(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	txs, err := h.engine.Recent(c.UserContext(), limit)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": txs})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSameAccount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "backing store unavailable")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
