package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates that the transfer amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the origin account balance is lower than the amount.
	ErrInsufficientFunds = errors.New("insufficient amount in origin account")
	// ErrTransferNotCompleted indicates that the accounts could not be locked in time.
	ErrTransferNotCompleted = errors.New("transfer can not be performed")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
	// ErrInvalidStatusTransition indicates an attempt to leave a terminal status.
	ErrInvalidStatusTransition = errors.New("invalid transfer status transition")
)

// Status is the lifecycle state of a transfer.
type Status int

// Transfer statuses. Completed and Error are terminal.
const (
	StatusCreated Status = iota
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsTerminal returns true for statuses a transfer never leaves.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusCreated, StatusCompleted, StatusError:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "CREATED":
		*s = StatusCreated
	case "COMPLETED":
		*s = StatusCompleted
	case "ERROR":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", text)
	}

	return nil
}

// TransferRequest is the input data for a transfer between two accounts.
type TransferRequest struct {
	FromAccountID string          `json:"from"`
	ToAccountID   string          `json:"to"`
	Amount        decimal.Decimal `json:"amount"` // must be positive
}

// Transfer holds a transfer attempt and its outcome.
type Transfer struct {
	ID        string          `json:"id"`
	Request   TransferRequest `json:"transfer"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
