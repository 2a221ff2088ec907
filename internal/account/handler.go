package account

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/storage"
	"github.com/corebank/corebank/internal/validation"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	store    *Store
	notifier notification.Notifier
	metrics  *metrics.Metrics
}

// NewHandler builds an account HTTP handler.
func NewHandler(store *Store, notifier notification.Notifier, m *metrics.Metrics) *Handler {
	return &Handler{store: store, notifier: notifier, metrics: m}
}

type createRequest struct {
	ID             string `json:"id"`
	HolderName     string `json:"holder_name"`
	InitialBalance int64  `json:"initial_balance"`
	Kind           string `json:"kind"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// Create opens a new account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acct, err := h.store.Create(c.UserContext(), CreateInput{
		ID:             req.ID,
		HolderName:     req.HolderName,
		InitialBalance: req.InitialBalance,
		Kind:           kind,
		Email:          req.Email,
		Phone:          req.Phone,
	})
	if err != nil {
		return mapError(err)
	}

	h.metrics.SetActiveAccounts(len(h.store.List()))

	// Welcome note is best effort, like every other notification.
	_ = h.notifier.Send(c.UserContext(), notification.Message{
		Kind:        notification.KindAccountOpened,
		Destination: acct.Email,
		Subject:     fmt.Sprintf("Welcome, account %s is ready", acct.ID),
		Body:        fmt.Sprintf("Dear %s,\n\nYour %s account %s has been opened.\n", acct.HolderName, acct.Kind, acct.ID),
	})

	return c.Status(http.StatusCreated).JSON(acct)
}

// Get returns a single active account.
func (h *Handler) Get(c *fiber.Ctx) error {
	acct, err := h.store.Get(c.Params("accountId"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(acct)
}

// List returns all active accounts.
func (h *Handler) List(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.store.List())
}

// Close retires an account.
func (h *Handler) Close(c *fiber.Ctx) error {
	id := c.Params("accountId")
	if err := h.store.Close(c.UserContext(), id); err != nil {
		return mapError(err)
	}
	h.metrics.SetActiveAccounts(len(h.store.List()))
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": id, "status": StatusClosed})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicate):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "backing store unavailable")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
