package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLifecycle reacts to payment confirmations: a paid payment moves its
// order out of pending_payment and into the kitchen queue. A failed
// payment leaves the order where it is; the retry path may still rescue
// it.
type OrderLifecycle struct {
	orders    OrderStore
	events    EventStore
	publisher Publisher
	logger    *zap.Logger
}

// NewOrderLifecycle creates a lifecycle handler
func NewOrderLifecycle(orders OrderStore, events EventStore, publisher Publisher) *OrderLifecycle {
	return &OrderLifecycle{
		orders:    orders,
		events:    events,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// HandlePaymentStatusChanged processes one payment change event, at most
// once per event id
func (l *OrderLifecycle) HandlePaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	ctx, span := util.StartSpan(ctx, "OrderLifecycle.HandlePaymentStatusChanged")
	defer span.End()

	processed, err := l.events.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		l.logger.Debug("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if event.Status == models.PaymentStatusPaid {
		order, err := l.orders.GetOrderByID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load order for payment: %w", err)
		}

		if order.Status == models.OrderStatusPendingPayment {
			if err := l.orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending); err != nil {
				return fmt.Errorf("failed to move order to pending: %w", err)
			}

			l.logger.Info("Order entered kitchen queue",
				zap.String("order_id", order.ID),
				zap.String("payment_id", event.PaymentID))

			statusEvent := &models.OrderStatusChangedEvent{
				BaseEvent: models.BaseEvent{
					EventID:   uuid.New().String(),
					EventType: models.EventTypeOrderStatusChanged,
					Timestamp: event.Timestamp,
				},
				OrderID: order.ID,
				Shop:    order.Shop,
				Status:  models.OrderStatusPending,
			}
			if err := l.publisher.PublishOrderStatusChanged(ctx, statusEvent); err != nil {
				l.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
			}
		}
	}

	if err := l.events.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		l.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	return nil
}
