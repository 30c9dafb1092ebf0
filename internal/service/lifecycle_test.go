package service

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidEvent(eventID string) *models.PaymentStatusChangedEvent {
	return &models.PaymentStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   eventID,
			EventType: models.EventTypePaymentStatusChanged,
			Timestamp: time.Now(),
		},
		PaymentID: "PAY1",
		OrderID:   "o1",
		Shop:      "Pa Ple Kitchen",
		Status:    models.PaymentStatusPaid,
		Amount:    160,
	}
}

func TestPaidPaymentMovesOrderIntoKitchenQueue(t *testing.T) {
	orders := newFakeOrderStore()
	orders.orders["o1"] = &models.Order{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPendingPayment}
	publisher := &fakePublisher{}
	lifecycle := NewOrderLifecycle(orders, newFakeEventStore(), publisher)

	require.NoError(t, lifecycle.HandlePaymentStatusChanged(context.Background(), paidEvent("ev1")))

	order, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	require.Len(t, publisher.orderChanges, 1)
	assert.Equal(t, models.OrderStatusPending, publisher.orderChanges[0].Status)
}

func TestDuplicateEventIsSkipped(t *testing.T) {
	orders := newFakeOrderStore()
	orders.orders["o1"] = &models.Order{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPendingPayment}
	publisher := &fakePublisher{}
	lifecycle := NewOrderLifecycle(orders, newFakeEventStore(), publisher)

	require.NoError(t, lifecycle.HandlePaymentStatusChanged(context.Background(), paidEvent("ev1")))
	require.NoError(t, lifecycle.HandlePaymentStatusChanged(context.Background(), paidEvent("ev1")))

	assert.Equal(t, 1, orders.statusWrites)
	assert.Len(t, publisher.orderChanges, 1)
}

func TestFailedPaymentLeavesOrderUntouched(t *testing.T) {
	orders := newFakeOrderStore()
	orders.orders["o1"] = &models.Order{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPendingPayment}
	lifecycle := NewOrderLifecycle(orders, newFakeEventStore(), &fakePublisher{})

	event := paidEvent("ev2")
	event.Status = models.PaymentStatusFailed
	require.NoError(t, lifecycle.HandlePaymentStatusChanged(context.Background(), event))

	order, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, 0, orders.statusWrites)
}

func TestPaidEventForAlreadyQueuedOrderIsIdempotent(t *testing.T) {
	orders := newFakeOrderStore()
	orders.orders["o1"] = &models.Order{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPreparing}
	publisher := &fakePublisher{}
	lifecycle := NewOrderLifecycle(orders, newFakeEventStore(), publisher)

	require.NoError(t, lifecycle.HandlePaymentStatusChanged(context.Background(), paidEvent("ev3")))

	order, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Empty(t, publisher.orderChanges)
}
