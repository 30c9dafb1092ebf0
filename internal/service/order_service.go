package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
// The rejection happens before any store write.
var ErrEmptyCart = errors.New("cart is empty")

// OrderService converts cart snapshots into persisted order and payment
// records
type OrderService struct {
	orders        OrderStore
	payments      PaymentStore
	redis         *redisclient.Client
	publisher     Publisher
	paymentExpiry time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrderService creates a new order service. redis may be nil when no
// idempotency cache is configured.
func NewOrderService(
	orders OrderStore,
	payments PaymentStore,
	redis *redisclient.Client,
	publisher Publisher,
	paymentExpiry time.Duration,
) *OrderService {
	return &OrderService{
		orders:        orders,
		payments:      payments,
		redis:         redis,
		publisher:     publisher,
		paymentExpiry: paymentExpiry,
		logger:        util.GetLogger(),
		now:           time.Now,
	}
}

// CheckoutRequest carries a cart snapshot into checkout
type CheckoutRequest struct {
	Lines          []models.CartLine
	Shop           string
	CustomerName   string
	TableNumber    string
	IdempotencyKey string
}

// CheckoutResult is returned on successful checkout; the caller clears the
// cart and presents the payment flow
type CheckoutResult struct {
	OrderID     string  `json:"order_id"`
	PaymentID   string  `json:"payment_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
}

// Checkout persists an order for the cart snapshot, then a linked pending
// payment expiring after the configured window. The two writes are
// independent; a payment-write failure after the order write leaves an
// orphaned pending_payment order behind, which is surfaced but not
// reconciled here.
func (s *OrderService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if len(req.Lines) == 0 {
		util.CheckoutRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	if req.IdempotencyKey != "" && s.redis != nil {
		if paymentID, ok, err := s.redis.GetIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
			s.logger.Warn("Idempotency check failed", zap.Error(err))
		} else if ok {
			s.logger.Info("Duplicate checkout detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("payment_id", paymentID))
			if payment, err := s.payments.GetPayment(ctx, paymentID); err == nil && payment != nil {
				return &CheckoutResult{
					OrderID:     payment.OrderID,
					PaymentID:   payment.ID,
					OrderNumber: payment.OrderNumber,
					Total:       payment.Amount,
				}, nil
			}
		}
	}

	customerName := req.CustomerName
	if customerName == "" {
		customerName = "walk-in"
	}
	tableNumber := req.TableNumber
	if tableNumber == "" {
		tableNumber = "1"
	}

	now := s.now()
	order := &models.Order{
		ID:           uuid.New().String(),
		OrderNumber:  generateOrderNumber(now),
		Shop:         req.Shop,
		Total:        calculateTotal(req.Lines),
		CustomerName: customerName,
		TableNumber:  tableNumber,
		Status:       models.OrderStatusPendingPayment,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.CheckoutRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, line := range req.Lines {
		item := &models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: line.ItemID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			Shop:       line.Shop,
		}
		if err := s.orders.CreateOrderItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	payment := &models.Payment{
		ID:          generatePaymentID(now),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Shop:        order.Shop,
		Status:      models.PaymentStatusPending,
		ExpiresAt:   now.Add(s.paymentExpiry),
	}

	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		// Accepted inconsistency window: the order stays in
		// pending_payment with no payment record.
		s.logger.Error("Payment write failed after order write",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_id", payment.ID),
		zap.Float64("total", order.Total))

	if req.IdempotencyKey != "" && s.redis != nil {
		if err := s.redis.SetIdempotencyKey(ctx, req.IdempotencyKey, payment.ID, s.paymentExpiry); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	event := &models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: now,
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentID:   payment.ID,
		Shop:        order.Shop,
		Total:       order.Total,
		Items:       req.Lines,
	}
	if err := s.publisher.PublishOrderSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
	}, nil
}

// GetOrder retrieves an order and its item snapshots
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.orders.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// generateOrderNumber derives the human-display order code: ORD + yymmdd +
// hhmm + a 2-digit random suffix. Not collision-free; display only, never
// a key.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%s%02d", now.Format("0601021504"), rand.Intn(100))
}

// generatePaymentID generates the payment document id: PAY + millisecond
// epoch + 3-digit random suffix
func generatePaymentID(now time.Time) string {
	return fmt.Sprintf("PAY%d%03d", now.UnixMilli(), rand.Intn(1000))
}

func calculateTotal(lines []models.CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}
