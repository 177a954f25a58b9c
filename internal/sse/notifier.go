package sse

import (
	"github.com/GTDGit/gtd_paygate/internal/models"
)

// PaymentNotifier is the interface services use to emit payment events.
type PaymentNotifier interface {
	NotifyPaymentCreated(p *models.PaymentRecord)
	NotifyPaymentStatusChanged(p *models.PaymentRecord)
}

// HubNotifier publishes payment events to admin streams through a Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPaymentCreated(p *models.PaymentRecord) {
	n.hub.Publish(newPaymentEvent(EventPaymentCreated, p))
}

func (n *HubNotifier) NotifyPaymentStatusChanged(p *models.PaymentRecord) {
	n.hub.Publish(newPaymentEvent(EventPaymentStatusChanged, p))
}

// newPaymentEvent snapshots p. OccurredAt is the record's last update, so a
// creation event carries the creation time.
func newPaymentEvent(eventType EventType, p *models.PaymentRecord) *PaymentEvent {
	return &PaymentEvent{
		Event:                eventType,
		PaymentID:            p.ID,
		TransactionReference: p.TransactionReference,
		Status:               string(p.Status),
		Amount:               p.Amount,
		Currency:             p.Currency,
		ProcessedBy:          p.ProcessedBy,
		ReversedBy:           p.ReversedBy,
		CancelledBy:          p.CancelledBy,
		OccurredAt:           p.LastUpdated,
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyPaymentCreated(p *models.PaymentRecord)       {}
func (n *NopNotifier) NotifyPaymentStatusChanged(p *models.PaymentRecord) {}
