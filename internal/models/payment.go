package models

import (
    "time"

    "github.com/shopspring/decimal"
)

func init() {
    // Amounts are echoed as JSON numbers, the way clients submit them.
    decimal.MarshalJSONWithoutQuotes = true
}

type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "PENDING"
    PaymentApproved  PaymentStatus = "APPROVED"
    PaymentRejected  PaymentStatus = "REJECTED"
    PaymentReversed  PaymentStatus = "REVERSED"
    PaymentCancelled PaymentStatus = "CANCELLED"
)

// paymentTransitions lists every allowed status change. Anything absent is invalid.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
    PaymentPending:  {PaymentApproved, PaymentRejected, PaymentCancelled},
    PaymentApproved: {PaymentReversed, PaymentCancelled},
}

// CanTransitionTo reports whether a payment in status s may move to target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
    for _, next := range paymentTransitions[s] {
        if next == target {
            return true
        }
    }
    return false
}

// IsTerminal reports whether no transition leaves s.
func (s PaymentStatus) IsTerminal() bool {
    return len(paymentTransitions[s]) == 0
}

// PaymentInput is the approval request as received from the caller.
// Pointers distinguish an absent field from a zero value.
type PaymentInput struct {
    Amount     *decimal.Decimal `json:"amount"`
    CardNumber string           `json:"cardNumber"`
    CVV        string           `json:"cvv"`
    ExpiryDate string           `json:"expiryDate"`
    Currency   string           `json:"currency"`
}

// PaymentRecord is the ledger entry for one payment. The full card number and
// CVV are never stored; CardNumber holds the masked value.
type PaymentRecord struct {
    ID                   string          `db:"id" json:"id"`
    Amount               decimal.Decimal `db:"amount" json:"amount"`
    Currency             string          `db:"currency" json:"currency"`
    CardNumber           string          `db:"masked_card" json:"cardNumber"`
    Status               PaymentStatus   `db:"status" json:"status"`
    CreatedAt            time.Time       `db:"created_at" json:"timestamp"`
    LastUpdated          time.Time       `db:"last_updated" json:"lastUpdated"`
    TransactionReference string          `db:"transaction_reference" json:"transactionReference"`
    ProcessedBy          string          `db:"processed_by" json:"processedBy"`
    ReversedBy           *string         `db:"reversed_by" json:"reversedBy,omitempty"`
    CancelledBy          *string         `db:"cancelled_by" json:"cancelledBy,omitempty"`
}

// Clone returns a deep copy so callers never share pointers with the ledger.
func (p *PaymentRecord) Clone() *PaymentRecord {
    cp := *p
    if p.ReversedBy != nil {
        v := *p.ReversedBy
        cp.ReversedBy = &v
    }
    if p.CancelledBy != nil {
        v := *p.CancelledBy
        cp.CancelledBy = &v
    }
    return &cp
}
