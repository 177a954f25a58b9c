package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_paygate/internal/cache"
	"github.com/GTDGit/gtd_paygate/internal/metrics"
	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/sse"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

// PaymentService contains business logic for payments.
type PaymentService struct {
	ledger      *PaymentLedger
	policy      DecisionPolicy
	idempotency cache.IdempotencyStore
	notifier    sse.PaymentNotifier
}

// NewPaymentService constructs a PaymentService. idempotency may be nil to
// disable Idempotency-Key handling.
func NewPaymentService(
	ledger *PaymentLedger,
	policy DecisionPolicy,
	idempotency cache.IdempotencyStore,
	notifier sse.PaymentNotifier,
) *PaymentService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &PaymentService{
		ledger:      ledger,
		policy:      policy,
		idempotency: idempotency,
		notifier:    notifier,
	}
}

// CreatePaymentResult is the outcome of CreatePayment.
type CreatePaymentResult struct {
	Payment *models.PaymentRecord
	// Decision is the status the payment was created with. For a replay it
	// can differ from Payment.Status once the payment was reversed or cancelled.
	Decision models.PaymentStatus
	// Replayed is true when the payment was returned for a repeated Idempotency-Key.
	Replayed bool
}

// CreatePayment validates and records a payment approval request for principal.
func (s *PaymentService) CreatePayment(ctx context.Context, in *models.PaymentInput, principal *models.Principal, idempotencyKey string) (*CreatePaymentResult, error) {
	scopedKey := ""
	if idempotencyKey != "" && s.idempotency != nil {
		scopedKey = principal.ClientID + ":" + idempotencyKey
		if res := s.replay(ctx, scopedKey); res != nil {
			metrics.IncPayment("create", "replayed")
			return res, nil
		}
	}

	rec, err := s.ledger.Create(ctx, in, s.policy, principal.ClientID)
	if err != nil {
		metrics.IncPayment("create", outcomeOf(err))
		return nil, err
	}

	if scopedKey != "" {
		entry := cache.IdempotencyEntry{PaymentID: rec.ID, Status: string(rec.Status)}
		if _, err := s.idempotency.SetNX(ctx, scopedKey, entry); err != nil {
			log.Warn().Err(err).Str("payment_id", rec.ID).Msg("Failed to store idempotency key")
		}
	}

	metrics.IncPayment("create", string(rec.Status))
	log.Info().
		Str("payment_id", rec.ID).
		Str("status", string(rec.Status)).
		Str("client_id", principal.ClientID).
		Msg("Payment created")
	s.notifier.NotifyPaymentCreated(rec)

	return &CreatePaymentResult{Payment: rec, Decision: rec.Status}, nil
}

// replay returns the payment already created for key, if any. Store failures
// are logged and treated as a miss.
func (s *PaymentService) replay(ctx context.Context, key string) *CreatePaymentResult {
	entry, found, err := s.idempotency.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Idempotency lookup failed")
		return nil
	}
	if !found {
		return nil
	}
	rec, err := s.ledger.Get(ctx, entry.PaymentID)
	if err != nil {
		log.Warn().Err(err).Str("payment_id", entry.PaymentID).Msg("Idempotency key points to unreadable payment")
		return nil
	}
	decision := models.PaymentStatus(entry.Status)
	if decision == "" {
		decision = rec.Status
	}
	return &CreatePaymentResult{Payment: rec, Decision: decision, Replayed: true}
}

// GetPayment returns the payment by id.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.PaymentRecord, error) {
	return s.ledger.Get(ctx, id)
}

// ReversePayment reverses an approved payment. Requires the admin role.
func (s *PaymentService) ReversePayment(ctx context.Context, id string, principal *models.Principal) (*models.PaymentRecord, error) {
	if err := Authorize(principal.Roles, RoleAdmin); err != nil {
		log.Warn().Str("client_id", principal.ClientID).Str("payment_id", id).Msg("Reverse denied")
		metrics.IncPayment("reverse", outcomeOf(err))
		return nil, err
	}
	return s.transition(ctx, "reverse", id, models.PaymentReversed, principal, utils.ErrNotReversible)
}

// CancelPayment cancels an approved or pending payment.
func (s *PaymentService) CancelPayment(ctx context.Context, id string, principal *models.Principal) (*models.PaymentRecord, error) {
	return s.transition(ctx, "cancel", id, models.PaymentCancelled, principal, utils.ErrNotCancellable)
}

func (s *PaymentService) transition(ctx context.Context, op, id string, target models.PaymentStatus, principal *models.Principal, invalid error) (*models.PaymentRecord, error) {
	rec, err := s.ledger.Transition(ctx, id, target, principal.ClientID)
	if errors.Is(err, utils.ErrInvalidTransition) {
		err = invalid
	}
	if err != nil {
		metrics.IncPayment(op, outcomeOf(err))
		return nil, err
	}

	metrics.IncPayment(op, string(rec.Status))
	log.Info().
		Str("payment_id", rec.ID).
		Str("status", string(rec.Status)).
		Str("client_id", principal.ClientID).
		Msg("Payment status changed")
	s.notifier.NotifyPaymentStatusChanged(rec)
	return rec, nil
}

func outcomeOf(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}
