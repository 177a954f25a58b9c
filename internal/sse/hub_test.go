package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_paygate/internal/models"
)

func reversedPayment() *models.PaymentRecord {
	actor := "client1"
	return &models.PaymentRecord{
		ID:          "p1",
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
		CardNumber:  "************1111",
		Status:      models.PaymentReversed,
		ReversedBy:  &actor,
		ProcessedBy: "client1",
		LastUpdated: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHubNotifierPublishesToSubscribers(t *testing.T) {
	hub := NewHub()
	notifier := NewHubNotifier(hub)
	sub := hub.Subscribe("client1")
	defer hub.Unsubscribe(sub)

	notifier.NotifyPaymentStatusChanged(reversedPayment())

	require.Len(t, sub.Events, 1)
	data := <-sub.Events
	assert.NotContains(t, string(data), "1111")

	var event PaymentEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventPaymentStatusChanged, event.Event)
	assert.Equal(t, "p1", event.PaymentID)
	assert.Equal(t, "REVERSED", event.Status)
	assert.True(t, event.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), event.OccurredAt.UTC())
	require.NotNil(t, event.ReversedBy)
	assert.Equal(t, "client1", *event.ReversedBy)
}

func TestHubCountsDroppedEventsForSlowStreams(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe("client1")
	defer hub.Unsubscribe(slow)

	event := newPaymentEvent(EventPaymentCreated, reversedPayment())
	for i := 0; i < subscriberBuffer+3; i++ {
		hub.Publish(event)
	}

	assert.Len(t, slow.Events, subscriberBuffer)
	assert.Equal(t, int64(3), slow.Dropped())
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("client1")
	assert.Equal(t, 1, hub.SubscriberCount())
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "client1", sub.ClientID)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	_, ok := <-sub.Events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Publishing with nobody listening is a no-op.
	hub.Publish(newPaymentEvent(EventPaymentCreated, reversedPayment()))
}
