package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPaymentNotFound is returned for operations against an absent payment
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentService owns reads and status writes on payment records. Every
// status write is published as a PaymentStatusChanged event, which is the
// transition source trackers observe.
type PaymentService struct {
	payments  PaymentStore
	publisher Publisher
	qr        *QRBuilder
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments PaymentStore, publisher Publisher, qr *QRBuilder) *PaymentService {
	return &PaymentService{
		payments:  payments,
		publisher: publisher,
		qr:        qr,
		logger:    util.GetLogger(),
	}
}

// GetPayment retrieves a payment; absent payments are nil, not an error
func (ps *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return ps.payments.GetPayment(ctx, paymentID)
}

// QRCodeURL returns the hosted QR image URL for a payment
func (ps *PaymentService) QRCodeURL(ctx context.Context, paymentID string) (string, error) {
	payment, err := ps.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", ErrPaymentNotFound
	}
	return ps.qr.ImageURL(payment.ID, payment.Amount, payment.Shop)
}

// QRCodePNG renders the payment QR code locally
func (ps *PaymentService) QRCodePNG(ctx context.Context, paymentID string) ([]byte, error) {
	payment, err := ps.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return ps.qr.PNG(payment.ID, payment.Amount, payment.Shop)
}

// MarkStatus persists a payment status written by the settlement side and
// publishes the change
func (ps *PaymentService) MarkStatus(ctx context.Context, paymentID, status string) (*models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.MarkStatus")
	defer span.End()

	if status != models.PaymentStatusPending &&
		status != models.PaymentStatusPaid &&
		status != models.PaymentStatusFailed {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}

	payment, err := ps.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	if err := ps.payments.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = status

	ps.logger.Info("Payment status updated",
		zap.String("payment_id", paymentID),
		zap.String("status", status))

	event := &models.PaymentStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentStatusChanged,
			Timestamp: time.Now(),
		},
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		Shop:      payment.Shop,
		Status:    status,
		Amount:    payment.Amount,
	}
	if err := ps.publisher.PublishPaymentStatusChanged(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentStatusChanged event", zap.Error(err))
	}

	return payment, nil
}

// RetryResult carries the refreshed payment and its regenerated QR URL
type RetryResult struct {
	Payment   *models.Payment `json:"payment"`
	QRCodeURL string          `json:"qr_code_url"`
}

// Retry resets a failed or expired payment back to pending and regenerates
// the QR payload from the current amount. Tracking is re-armed only when
// the caller starts it again.
func (ps *PaymentService) Retry(ctx context.Context, paymentID string) (*RetryResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Retry")
	defer span.End()

	payment, err := ps.MarkStatus(ctx, paymentID, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}

	// Re-fetch so the caller sees the persisted record
	payment, err = ps.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	qrURL, err := ps.qr.ImageURL(payment.ID, payment.Amount, payment.Shop)
	if err != nil {
		return nil, err
	}

	util.PaymentRetriesTotal.Inc()
	return &RetryResult{Payment: payment, QRCodeURL: qrURL}, nil
}
