package worker

import (
	"context"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/realtime"
	"storefront-service/internal/service"

	"go.uber.org/zap"
)

// ChangeWorker consumes the change topic and fans events out to the
// in-process feed, the order lifecycle and the catalog cache
type ChangeWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewChangeWorker creates a new change worker
func NewChangeWorker(
	consumer *broker.Consumer,
	feed *realtime.Feed,
	lifecycle *service.OrderLifecycle,
	payments *service.PaymentService,
	catalog *service.Catalog,
	logger *zap.Logger,
) *ChangeWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderSubmitted(func(ctx context.Context, event *models.OrderSubmittedEvent) error {
		feed.NotifyOrders(event.Shop)
		return nil
	})

	eventHandler.OnOrderStatusChanged(func(ctx context.Context, event *models.OrderStatusChangedEvent) error {
		feed.NotifyOrders(event.Shop)
		return nil
	})

	eventHandler.OnPaymentStatusChanged(func(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
		if err := lifecycle.HandlePaymentStatusChanged(ctx, event); err != nil {
			logger.Error("Failed to apply payment status change",
				zap.String("payment_id", event.PaymentID),
				zap.Error(err))
			return err
		}

		// Fan the fresh snapshot out to payment trackers
		snapCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		payment, err := payments.GetPayment(snapCtx, event.PaymentID)
		if err != nil || payment == nil {
			logger.Warn("Payment snapshot unavailable, dispatching event state",
				zap.String("payment_id", event.PaymentID),
				zap.Error(err))
			feed.PublishPayment(models.Payment{
				ID:      event.PaymentID,
				OrderID: event.OrderID,
				Shop:    event.Shop,
				Status:  event.Status,
				Amount:  event.Amount,
			})
			return nil
		}

		feed.PublishPayment(*payment)
		return nil
	})

	eventHandler.OnMenuChanged(func(ctx context.Context, event *models.MenuChangedEvent) error {
		catalog.Invalidate(ctx, event.Shop)
		feed.NotifyMenu(event.Shop)
		return nil
	})

	return &ChangeWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *ChangeWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting change worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ChangeWorker) Stop() error {
	w.logger.Info("Stopping change worker")
	return w.consumer.Close()
}
