package service

import (
	"context"
	"strings"

	"github.com/GTDGit/gtd_paygate/internal/models"
)

// DecisionPolicy decides whether a validated payment request is approved.
// Implementations may return PENDING for decisions made asynchronously.
type DecisionPolicy interface {
	Decide(ctx context.Context, in *models.PaymentInput) (models.PaymentStatus, error)
}

// DecisionPolicyFunc adapts a function to DecisionPolicy.
type DecisionPolicyFunc func(ctx context.Context, in *models.PaymentInput) (models.PaymentStatus, error)

func (f DecisionPolicyFunc) Decide(ctx context.Context, in *models.PaymentInput) (models.PaymentStatus, error) {
	return f(ctx, in)
}

// rejectSuffix marks test cards the mock network declines.
const rejectSuffix = "0000"

// MockDecisionPolicy rejects cards ending in 0000 and approves everything else.
type MockDecisionPolicy struct{}

func (MockDecisionPolicy) Decide(_ context.Context, in *models.PaymentInput) (models.PaymentStatus, error) {
	if strings.HasSuffix(in.CardNumber, rejectSuffix) {
		return models.PaymentRejected, nil
	}
	return models.PaymentApproved, nil
}
