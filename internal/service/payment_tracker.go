package service

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// PaymentTracker follows one payment record per Start call: every snapshot
// from the feed is mapped to the caller's callback, terminal statuses tear
// the subscription down, and an independent timer declares expiry when the
// record is still pending past the window.
type PaymentTracker struct {
	feed     PaymentFeed
	payments PaymentStore
	timeout  time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	trackers map[string]*tracking
}

// tracking is per-payment cleanup bookkeeping; no state is shared between
// trackers beyond the registry itself
type tracking struct {
	unsubscribe func()
	timer       *time.Timer
	done        bool
}

// NewPaymentTracker creates a tracker with the given expiry window
func NewPaymentTracker(feed PaymentFeed, payments PaymentStore, timeout time.Duration) *PaymentTracker {
	return &PaymentTracker{
		feed:     feed,
		payments: payments,
		timeout:  timeout,
		logger:   util.GetLogger(),
		trackers: make(map[string]*tracking),
	}
}

// Start begins tracking a payment. onChange receives each observed status
// and the record snapshot (nil for the expired notification). The terminal
// or expired notification fires exactly once; after it, no further
// callbacks are delivered. The returned stop function is an idempotent
// manual teardown.
func (t *PaymentTracker) Start(paymentID string, onChange func(status string, payment *models.Payment)) func() {
	tr := &tracking{}

	t.mu.Lock()
	// Restarting tracking for the same payment replaces the old tracker
	if old, ok := t.trackers[paymentID]; ok {
		t.teardownLocked(paymentID, old)
	}
	t.trackers[paymentID] = tr
	t.mu.Unlock()

	unsubscribe := t.feed.SubscribePayment(paymentID, func(payment models.Payment) {
		t.mu.Lock()
		if tr.done {
			t.mu.Unlock()
			return
		}
		terminal := payment.Status == models.PaymentStatusPaid ||
			payment.Status == models.PaymentStatusFailed
		if terminal {
			tr.done = true
			t.teardownLocked(paymentID, tr)
		}
		t.mu.Unlock()

		onChange(payment.Status, &payment)

		switch payment.Status {
		case models.PaymentStatusPaid:
			util.PaymentsPaidTotal.Inc()
		case models.PaymentStatusFailed:
			util.PaymentsFailedTotal.Inc()
		}
	})

	t.mu.Lock()
	tr.unsubscribe = unsubscribe
	if tr.done {
		// A terminal snapshot arrived before the handle was recorded;
		// release it here and never arm the timer
		unsubscribe()
	} else {
		tr.timer = time.AfterFunc(t.timeout, func() {
			t.mu.Lock()
			if tr.done {
				t.mu.Unlock()
				return
			}
			tr.done = true
			t.teardownLocked(paymentID, tr)
			t.mu.Unlock()

			// One re-fetch of the persisted status; only a still-pending
			// payment is declared expired. The record itself is left at
			// pending unless a retry resets it.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			payment, err := t.payments.GetPayment(ctx, paymentID)
			if err != nil {
				t.logger.Warn("Expiry re-fetch failed",
					zap.String("payment_id", paymentID), zap.Error(err))
			}
			if payment != nil && payment.Status != models.PaymentStatusPending {
				return
			}

			util.PaymentsExpiredTotal.Inc()
			t.logger.Info("Payment expired", zap.String("payment_id", paymentID))
			onChange(models.PaymentStatusExpired, payment)
		})
	}
	t.mu.Unlock()

	return func() { t.Stop(paymentID) }
}

// Stop tears down tracking for a payment; unknown ids are a no-op
func (t *PaymentTracker) Stop(paymentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.trackers[paymentID]; ok {
		tr.done = true
		t.teardownLocked(paymentID, tr)
	}
}

// teardownLocked releases a tracker's subscription and timer. Caller holds
// the mutex.
func (t *PaymentTracker) teardownLocked(paymentID string, tr *tracking) {
	if tr.unsubscribe != nil {
		tr.unsubscribe()
	}
	if tr.timer != nil {
		tr.timer.Stop()
	}
	if t.trackers[paymentID] == tr {
		delete(t.trackers, paymentID)
	}
}

// Wait tracks a payment until a terminal status, expiry, or context
// cancellation, and returns the final observed status. It backs the
// long-poll endpoint.
func (t *PaymentTracker) Wait(ctx context.Context, paymentID string) (string, *models.Payment, error) {
	type outcome struct {
		status  string
		payment *models.Payment
	}
	ch := make(chan outcome, 1)

	stop := t.Start(paymentID, func(status string, payment *models.Payment) {
		if status == models.PaymentStatusPaid ||
			status == models.PaymentStatusFailed ||
			status == models.PaymentStatusExpired {
			select {
			case ch <- outcome{status, payment}:
			default:
			}
		}
	})
	defer stop()

	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case out := <-ch:
		return out.status, out.payment, nil
	}
}
