// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates and returns the account with the given id and opening balance.
func (s *Service) Create(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error) {
	if balance.IsNegative() {
		zerolog.Ctx(ctx).Info().Str("account_id", id).Err(domain.ErrNegativeBalance).Send()
		return domain.Account{}, domain.ErrNegativeBalance
	}

	account, err := s.repo.Create(ctx, id, balance)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return account, &domain.AccountNotFoundError{IDs: []string{id}}
	}

	if err != nil {
		return account, err
	}

	return account, nil
}
