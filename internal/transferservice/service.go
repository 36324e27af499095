// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/internal/metrics"
	"github.com/go-petr/pet-transfers/internal/notification"
	"github.com/go-petr/pet-transfers/pkg/errorspkg"
)

// AccountStore provides the balance access needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type AccountStore interface {
	Get(ctx context.Context, id string) (domain.Account, error)
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error)
}

// Ledger records transfer attempts and their outcome.
type Ledger interface {
	Create(ctx context.Context, req domain.TransferRequest) (domain.Transfer, error)
	Get(ctx context.Context, id string) (domain.Transfer, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (domain.Transfer, error)
	List(ctx context.Context) []domain.Transfer
	Clear(ctx context.Context)
}

// Locker gives exclusive access to a pair of accounts for the duration of fn.
type Locker interface {
	WithPair(ctx context.Context, idA, idB string, fn func() error) error
}

// Notifier is told about both sides of every completed transfer.
type Notifier interface {
	Notify(ctx context.Context, account domain.Account, message string) error
}

// Service facilitates transfer service layer logic.
type Service struct {
	accounts AccountStore
	ledger   Ledger
	locker   Locker
	notifier Notifier
	metrics  metrics.Collector
}

// New return transfer service struct to manage transfer bussines logic.
func New(as AccountStore, l Ledger, lk Locker, n Notifier, mc metrics.Collector) *Service {
	if mc == nil {
		mc = metrics.NoOpCollector{}
	}

	return &Service{
		accounts: as,
		ledger:   l,
		locker:   lk,
		notifier: n,
		metrics:  mc,
	}
}

// Transfer moves req.Amount from one account to the other and returns the
// recorded transfer in its terminal status.
//
// Every request with a positive amount is recorded in the ledger. A failed
// transfer leaves both balances untouched, its ledger entry has status Error
// and the returned error matches one of domain.ErrAccountNotFound,
// domain.ErrInsufficientFunds or domain.ErrTransferNotCompleted.
func (s *Service) Transfer(ctx context.Context, req domain.TransferRequest) (domain.Transfer, error) {
	start := time.Now()
	l := zerolog.Ctx(ctx).With().
		Str("from", req.FromAccountID).
		Str("to", req.ToAccountID).
		Str("amount", req.Amount.String()).
		Logger()

	if !req.Amount.IsPositive() {
		l.Info().Err(domain.ErrInvalidAmount).Send()
		s.metrics.RecordTransfer(metrics.OutcomeInvalidAmount, time.Since(start))

		return domain.Transfer{}, domain.ErrInvalidAmount
	}

	t, err := s.ledger.Create(ctx, req)
	if err != nil {
		l.Error().Err(err).Msg("cannot record transfer")
		s.metrics.RecordTransfer(metrics.OutcomeInternal, time.Since(start))

		return domain.Transfer{}, errorspkg.ErrInternal
	}

	l = l.With().Str("transfer_id", t.ID).Logger()
	l.Info().Msg("transfer started")

	from, to, err := s.execute(l.WithContext(ctx), req)

	status := domain.StatusCompleted
	if err != nil {
		status = domain.StatusError
	}

	t = s.finish(ctx, l, t.ID, status)
	s.metrics.RecordTransfer(outcome(err), time.Since(start))

	if err != nil {
		l.Info().Err(err).Msg("transfer failed")
		return t, err
	}

	s.notify(ctx, l, from, to)
	l.Info().Msg("transfer ended")

	return t, nil
}

// execute resolves both accounts and moves the amount while holding their locks.
func (s *Service) execute(ctx context.Context, req domain.TransferRequest) (domain.Account, domain.Account, error) {
	if err := s.resolve(ctx, req); err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	var (
		from, to domain.Account
		moveErr  error
	)

	lockErr := s.locker.WithPair(ctx, req.FromAccountID, req.ToAccountID, func() error {
		from, to, moveErr = s.move(ctx, req)
		return nil
	})
	if lockErr != nil {
		return domain.Account{}, domain.Account{}, fmt.Errorf("%w: %v", domain.ErrTransferNotCompleted, lockErr)
	}

	return from, to, moveErr
}

// resolve checks that both accounts exist, naming every missing one.
func (s *Service) resolve(ctx context.Context, req domain.TransferRequest) error {
	ids := []string{req.FromAccountID}
	if req.ToAccountID != req.FromAccountID {
		ids = append(ids, req.ToAccountID)
	}

	var missing []string

	for _, id := range ids {
		_, err := s.accounts.Get(ctx, id)

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrAccountNotFound):
			missing = append(missing, id)
		default:
			return err
		}
	}

	if len(missing) > 0 {
		return &domain.AccountNotFoundError{IDs: missing}
	}

	return nil
}

// move must only be called while both account locks are held.
func (s *Service) move(ctx context.Context, req domain.TransferRequest) (domain.Account, domain.Account, error) {
	l := zerolog.Ctx(ctx)

	from, err := s.accounts.Get(ctx, req.FromAccountID)
	if err != nil {
		return domain.Account{}, domain.Account{}, storeErr(req.FromAccountID, err)
	}

	debited := from.Balance.Sub(req.Amount)
	if debited.IsNegative() {
		return domain.Account{}, domain.Account{}, domain.ErrInsufficientFunds
	}

	from, err = s.accounts.SetBalance(ctx, from.ID, debited)
	if err != nil {
		return domain.Account{}, domain.Account{}, storeErr(from.ID, err)
	}

	to, err := s.accounts.Get(ctx, req.ToAccountID)
	if err == nil {
		to, err = s.accounts.SetBalance(ctx, to.ID, to.Balance.Add(req.Amount))
	}

	if err != nil {
		if _, rerr := s.accounts.SetBalance(ctx, from.ID, from.Balance.Add(req.Amount)); rerr != nil {
			l.Error().Err(rerr).Str("account_id", from.ID).Msg("cannot restore debited balance")
		}

		return domain.Account{}, domain.Account{}, storeErr(req.ToAccountID, err)
	}

	if from.ID == to.ID {
		from = to
	}

	return from, to, nil
}

// finish records the terminal status. A ledger that refuses it is corrupt.
func (s *Service) finish(ctx context.Context, l zerolog.Logger, id string, status domain.Status) domain.Transfer {
	t, err := s.ledger.SetStatus(ctx, id, status)
	if err != nil {
		l.Error().Err(err).Stringer("status", status).Msg("cannot finish transfer")
		panic(fmt.Sprintf("transfer %s: set status %v: %v", id, status, err))
	}

	return t
}

func (s *Service) notify(ctx context.Context, l zerolog.Logger, from, to domain.Account) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Notify(ctx, from, notification.MessageSent); err != nil {
		l.Warn().Err(err).Str("account_id", from.ID).Msg("cannot notify origin account")
	}

	if err := s.notifier.Notify(ctx, to, notification.MessageReceived); err != nil {
		l.Warn().Err(err).Str("account_id", to.ID).Msg("cannot notify destination account")
	}
}

// Get returns the transfer with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.Transfer, error) {
	return s.ledger.Get(ctx, id)
}

// List returns all recorded transfers.
func (s *Service) List(ctx context.Context) []domain.Transfer {
	return s.ledger.List(ctx)
}

// Clear removes all recorded transfers.
func (s *Service) Clear(ctx context.Context) {
	s.ledger.Clear(ctx)
}

func storeErr(id string, err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return &domain.AccountNotFoundError{IDs: []string{id}}
	}

	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCompleted
	case errors.Is(err, domain.ErrAccountNotFound):
		return metrics.OutcomeAccountNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return metrics.OutcomeInsufficient
	case errors.Is(err, domain.ErrTransferNotCompleted):
		return metrics.OutcomeNotCompleted
	default:
		return metrics.OutcomeInternal
	}
}
