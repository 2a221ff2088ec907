package account

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the category of an account. Categories carry no behavior in the
// ledger core beyond display.
type Kind string

const (
	KindSavings      Kind = "SAVINGS"
	KindCurrent      Kind = "CURRENT"
	KindFixedDeposit Kind = "FIXED_DEPOSIT"
	KindSalary       Kind = "SALARY"
)

// ParseKind maps a user-supplied category to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindSavings:
		return KindSavings, nil
	case KindCurrent:
		return KindCurrent, nil
	case KindFixedDeposit:
		return KindFixedDeposit, nil
	case KindSalary:
		return KindSalary, nil
	default:
		return "", fmt.Errorf("unknown account kind %q", s)
	}
}

// Status is the lifecycle state of an account. Closed accounts are excluded
// from every mutation but their rows remain queryable for reporting.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Account is a ledger account. Balance is in minor units.
type Account struct {
	ID         string    `json:"id"`
	HolderName string    `json:"holder_name"`
	Balance    int64     `json:"balance"`
	Kind       Kind      `json:"kind"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
