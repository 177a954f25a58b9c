package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/repository"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

const (
	minCardLength = 13
	maxCardLength = 19
	minCVVLength  = 3
	maxCVVLength  = 4

	transactionRefPrefix = "TX-"
)

// PaymentLedger owns payment records and enforces the payment state machine.
// Atomicity of each write is delegated to the repository.
type PaymentLedger struct {
	repo  repository.PaymentRepository
	now   func() time.Time
	newID func() string
}

// NewPaymentLedger constructs a PaymentLedger over repo.
func NewPaymentLedger(repo repository.PaymentRepository) *PaymentLedger {
	return &PaymentLedger{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// ValidatePaymentInput checks presence of every field, then card and CVV length
// in characters.
func ValidatePaymentInput(in *models.PaymentInput) error {
	if in == nil || in.Amount == nil || in.CardNumber == "" || in.CVV == "" || in.ExpiryDate == "" || in.Currency == "" {
		return utils.ErrMissingPaymentFields
	}
	if n := utf8.RuneCountInString(in.CardNumber); n < minCardLength || n > maxCardLength {
		return utils.ErrInvalidCardNumber
	}
	if n := utf8.RuneCountInString(in.CVV); n < minCVVLength || n > maxCVVLength {
		return utils.ErrInvalidCVV
	}
	return nil
}

// TransactionReference derives the human facing reference from a payment id.
func TransactionReference(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return transactionRefPrefix + id
}

// Create validates in, asks policy for a decision and stores the new record.
func (l *PaymentLedger) Create(ctx context.Context, in *models.PaymentInput, policy DecisionPolicy, actor string) (*models.PaymentRecord, error) {
	if err := ValidatePaymentInput(in); err != nil {
		return nil, err
	}

	status, err := policy.Decide(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("decision policy: %w", err)
	}
	switch status {
	case models.PaymentApproved, models.PaymentRejected, models.PaymentPending:
	default:
		return nil, fmt.Errorf("decision policy returned unsupported status %q", status)
	}

	id := l.newID()
	now := l.now()
	rec := &models.PaymentRecord{
		ID:                   id,
		Amount:               *in.Amount,
		Currency:             in.Currency,
		CardNumber:           utils.MaskCardNumber(in.CardNumber),
		Status:               status,
		CreatedAt:            now,
		LastUpdated:          now,
		TransactionReference: TransactionReference(id),
		ProcessedBy:          actor,
	}

	if err := l.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return rec.Clone(), nil
}

// Get returns a snapshot of the payment.
func (l *PaymentLedger) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	rec, err := l.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", id, err)
	}
	return rec, nil
}

// Transition moves the payment to target if the state machine allows it and
// records actor as reverser or canceller. On ErrInvalidTransition the record is unchanged.
func (l *PaymentLedger) Transition(ctx context.Context, id string, target models.PaymentStatus, actor string) (*models.PaymentRecord, error) {
	rec, err := l.repo.Update(ctx, id, func(rec *models.PaymentRecord) error {
		if !rec.Status.CanTransitionTo(target) {
			return utils.ErrInvalidTransition
		}
		rec.Status = target
		rec.LastUpdated = l.now()
		switch target {
		case models.PaymentReversed:
			rec.ReversedBy = &actor
		case models.PaymentCancelled:
			rec.CancelledBy = &actor
		}
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, utils.ErrPaymentNotFound
	case errors.Is(err, utils.ErrInvalidTransition):
		return nil, utils.ErrInvalidTransition
	case err != nil:
		return nil, fmt.Errorf("transition payment %s: %w", id, err)
	}
	return rec, nil
}
