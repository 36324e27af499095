// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists indicates that the account with the given id already exists.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrNegativeBalance indicates that the balance would be below zero.
	ErrNegativeBalance = errors.New("negative balance")
)

// Account holds the balance of a single named account.
type Account struct {
	ID      string          `json:"account_id"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountNotFoundError names the account ids that could not be resolved.
type AccountNotFoundError struct {
	IDs []string
}

func (e *AccountNotFoundError) Error() string {
	return "account " + strings.Join(e.IDs, ", ") + " not found"
}

// Is reports ErrAccountNotFound as the matching sentinel.
func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
