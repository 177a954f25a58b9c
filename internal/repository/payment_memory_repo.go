package repository

import (
	"context"
	"sync"

	"github.com/GTDGit/gtd_paygate/internal/models"
)

// MemoryPaymentRepository is the in-process payment store. A single RWMutex
// serializes writers, so a reader never sees a record mid-update.
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*models.PaymentRecord
}

// NewMemoryPaymentRepository creates an empty store.
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[string]*models.PaymentRecord)}
}

func (r *MemoryPaymentRepository) Insert(_ context.Context, rec *models.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[rec.ID]; ok {
		return ErrDuplicateID
	}
	r.payments[rec.ID] = rec.Clone()
	return nil
}

func (r *MemoryPaymentRepository) GetByID(_ context.Context, id string) (*models.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Update runs fn on a copy under the write lock and stores it only if fn succeeds.
func (r *MemoryPaymentRepository) Update(_ context.Context, id string, fn PaymentMutation) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.payments[id] = next
	return next.Clone(), nil
}

// Len returns the number of stored payments.
func (r *MemoryPaymentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}
