// Package validation holds the pure input checks applied before any value
// reaches the account store or the ledger engine. Each function normalizes
// its input first and reports failures wrapped in ErrInvalid so callers can
// match the whole class with errors.Is.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid is the sentinel wrapped by every validation failure.
var ErrInvalid = errors.New("validation failed")

var (
	accountIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3,6}$`)
	namePattern      = regexp.MustCompile(`^[A-Za-z][A-Za-z\s]{2,49}$`)
	emailPattern     = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern     = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	phoneStrip       = regexp.MustCompile(`[\s-]`)
)

// AccountID normalizes (trim, uppercase) and validates an account identifier:
// a three letter prefix followed by 3-6 digits, e.g. ACC001.
func AccountID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !accountIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: account id must be 3 letters followed by 3-6 digits (e.g. ACC001)", ErrInvalid)
	}
	return id, nil
}

// HolderName normalizes a holder name to title case word by word and
// validates it: 3-50 characters, letters and spaces only, starting with a
// letter.
func HolderName(name string) (string, error) {
	name = titleCase(name)
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: holder name must be 3-50 letters and spaces, starting with a letter", ErrInvalid)
	}
	return name, nil
}

// Email normalizes (trim, lowercase) and validates a contact email address.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: email must look like user@domain.tld", ErrInvalid)
	}
	return email, nil
}

// Phone strips whitespace and dashes then validates a contact phone number:
// exactly 10 digits with the first in [6-9].
func Phone(phone string) (string, error) {
	phone = phoneStrip.ReplaceAllString(strings.TrimSpace(phone), "")
	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%w: phone must be 10 digits starting with 6-9", ErrInvalid)
	}
	return phone, nil
}

// InitialBalance validates the opening balance of a new account, which may be
// zero but never negative. Amounts are minor units.
func InitialBalance(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: initial balance must be non-negative", ErrInvalid)
	}
	return nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}
