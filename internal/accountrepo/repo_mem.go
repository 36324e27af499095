// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/internal/domain"
)

// RepoMem keeps account balances in memory.
//
// Every method is safe for concurrent use on a single account. Keeping two
// accounts consistent with each other is left to the caller.
type RepoMem struct {
	mu       sync.RWMutex
	accounts map[string]decimal.Decimal
}

// NewRepoMem returns an empty account RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[string]decimal.Decimal),
	}
}

// Create creates the account and then returns it.
func (r *RepoMem) Create(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if balance.IsNegative() {
		l.Info().Str("account_id", id).Err(domain.ErrNegativeBalance).Send()
		return domain.Account{}, domain.ErrNegativeBalance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; ok {
		l.Info().Str("account_id", id).Err(domain.ErrAccountAlreadyExists).Send()
		return domain.Account{}, domain.ErrAccountAlreadyExists
	}

	r.accounts[id] = balance

	return domain.Account{ID: id, Balance: balance}, nil
}

// Get returns the account with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	balance, ok := r.accounts[id]
	r.mu.RUnlock()

	if !ok {
		zerolog.Ctx(ctx).Debug().Str("account_id", id).Err(domain.ErrAccountNotFound).Send()
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return domain.Account{ID: id, Balance: balance}, nil
}

// SetBalance replaces the balance of an existing account and returns the changed account.
func (r *RepoMem) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if balance.IsNegative() {
		l.Error().Str("account_id", id).Str("balance", balance.String()).Err(domain.ErrNegativeBalance).Send()
		return domain.Account{}, domain.ErrNegativeBalance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		l.Error().Str("account_id", id).Err(domain.ErrAccountNotFound).Send()
		return domain.Account{}, domain.ErrAccountNotFound
	}

	r.accounts[id] = balance

	return domain.Account{ID: id, Balance: balance}, nil
}

// List returns all accounts ordered by id.
func (r *RepoMem) List(ctx context.Context) []domain.Account {
	r.mu.RLock()
	accounts := make([]domain.Account, 0, len(r.accounts))

	for id, balance := range r.accounts {
		accounts = append(accounts, domain.Account{ID: id, Balance: balance})
	}
	r.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})

	return accounts
}

// Clear removes all accounts.
func (r *RepoMem) Clear(ctx context.Context) {
	r.mu.Lock()
	r.accounts = make(map[string]decimal.Decimal)
	r.mu.Unlock()
}
