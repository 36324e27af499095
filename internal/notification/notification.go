// Package notification delivers "transfer completed" messages to account holders.
package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-transfers/internal/domain"
)

// Messages sent to both sides of a completed transfer.
const (
	MessageSent     = "Money sent"
	MessageReceived = "Money received"
)

// Sink consumes notifications about transfers.
type Sink interface {
	Notify(ctx context.Context, account domain.Account, message string) error
}

// LogSink writes every notification as a structured log event.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink writing to logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notification").Logger()}
}

// Notify logs the message for the account.
func (s *LogSink) Notify(ctx context.Context, account domain.Account, message string) error {
	s.logger.Info().
		Str("account_id", account.ID).
		Str("balance", account.Balance.String()).
		Msg(message)

	return nil
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, account domain.Account, message string) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, account domain.Account, message string) error {
	return f(ctx, account, message)
}
