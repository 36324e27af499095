// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-transfers/internal/domain"
)

// RepoMem is the in-memory ledger of transfer attempts.
//
// Entries are only ever added, and an entry's status moves once from
// Created to a terminal status.
type RepoMem struct {
	mu        sync.RWMutex
	transfers map[string]domain.Transfer
	order     []string
	now       func() time.Time
}

// NewRepoMem returns an empty transfer RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		transfers: make(map[string]domain.Transfer),
		now:       time.Now,
	}
}

// Create records the request under a fresh id with status Created and returns the transfer.
func (r *RepoMem) Create(ctx context.Context, req domain.TransferRequest) (domain.Transfer, error) {
	now := r.now().UTC()

	t := domain.Transfer{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    domain.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transfers[t.ID]; ok {
		zerolog.Ctx(ctx).Error().Str("transfer_id", t.ID).Msg("duplicate transfer id")
		return domain.Transfer{}, fmt.Errorf("duplicate transfer id %s", t.ID)
	}

	r.transfers[t.ID] = t
	r.order = append(r.order, t.ID)

	return t, nil
}

// Get returns the transfer with the given id.
func (r *RepoMem) Get(ctx context.Context, id string) (domain.Transfer, error) {
	r.mu.RLock()
	t, ok := r.transfers[id]
	r.mu.RUnlock()

	if !ok {
		zerolog.Ctx(ctx).Debug().Str("transfer_id", id).Err(domain.ErrTransferNotFound).Send()
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return t, nil
}

// SetStatus moves the transfer to a terminal status and returns the changed transfer.
func (r *RepoMem) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transfers[id]
	if !ok {
		l.Error().Str("transfer_id", id).Err(domain.ErrTransferNotFound).Send()
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	if t.Status.IsTerminal() || !status.IsTerminal() {
		l.Error().Str("transfer_id", id).
			Stringer("from", t.Status).
			Stringer("to", status).
			Err(domain.ErrInvalidStatusTransition).Send()

		return t, domain.ErrInvalidStatusTransition
	}

	t.Status = status
	t.UpdatedAt = r.now().UTC()
	r.transfers[id] = t

	return t, nil
}

// List returns a snapshot of all transfers in the order they were recorded.
func (r *RepoMem) List(ctx context.Context) []domain.Transfer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transfers := make([]domain.Transfer, 0, len(r.order))
	for _, id := range r.order {
		transfers = append(transfers, r.transfers[id])
	}

	return transfers
}

// Clear removes all transfers.
func (r *RepoMem) Clear(ctx context.Context) {
	r.mu.Lock()
	r.transfers = make(map[string]domain.Transfer)
	r.order = nil
	r.mu.Unlock()
}
