package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService(orders *fakeOrderStore, payments *fakePaymentStore, publisher *fakePublisher) *OrderService {
	return &OrderService{
		orders:        orders,
		payments:      payments,
		publisher:     publisher,
		paymentExpiry: 30 * time.Minute,
		logger:        util.GetLogger(),
		now:           func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) },
	}
}

func testLines() []models.CartLine {
	return []models.CartLine{
		{ItemID: "1", Name: "Pad Thai", UnitPrice: 60, Quantity: 2, Shop: "Pa Ple Kitchen"},
		{ItemID: "3", Name: "Som Tam", UnitPrice: 40, Quantity: 1, Shop: "Pa Ple Kitchen"},
	}
}

func TestCheckoutEmptyCartRejectedBeforeWrites(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestOrderService(orders, newFakePaymentStore(), &fakePublisher{})

	_, err := svc.Checkout(context.Background(), &CheckoutRequest{Shop: "Pa Ple Kitchen"})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, orders.createCalls)
}

func TestCheckoutCreatesOrderAndPendingPayment(t *testing.T) {
	orders := newFakeOrderStore()
	payments := newFakePaymentStore()
	publisher := &fakePublisher{}
	svc := newTestOrderService(orders, payments, publisher)

	result, err := svc.Checkout(context.Background(), &CheckoutRequest{
		Lines:        testLines(),
		Shop:         "Pa Ple Kitchen",
		CustomerName: "Somchai",
		TableNumber:  "4",
	})
	require.NoError(t, err)

	assert.Equal(t, 160.0, result.Total)

	order, err := orders.GetOrderByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, "Somchai", order.CustomerName)
	assert.Equal(t, "4", order.TableNumber)
	assert.Equal(t, 160.0, order.Total)

	items, err := orders.GetOrderItemsByOrderID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	payment, err := payments.GetPayment(context.Background(), result.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, result.OrderID, payment.OrderID)
	assert.Equal(t, result.OrderNumber, payment.OrderNumber)
	assert.Equal(t, 160.0, payment.Amount)
	assert.Equal(t, time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), payment.ExpiresAt)

	require.Len(t, publisher.submitted, 1)
	assert.Equal(t, result.OrderID, publisher.submitted[0].OrderID)
	assert.Equal(t, result.PaymentID, publisher.submitted[0].PaymentID)
}

func TestCheckoutDefaultsCustomerAndTable(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestOrderService(orders, newFakePaymentStore(), &fakePublisher{})

	result, err := svc.Checkout(context.Background(), &CheckoutRequest{
		Lines: testLines(),
		Shop:  "Pa Ple Kitchen",
	})
	require.NoError(t, err)

	order, err := orders.GetOrderByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "walk-in", order.CustomerName)
	assert.Equal(t, "1", order.TableNumber)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	number := generateOrderNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^ORD\d{12}$`), number)
	assert.Equal(t, "ORD2506011230", number[:13])
}

func TestGeneratePaymentIDFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	id := generatePaymentID(now)

	assert.Regexp(t, regexp.MustCompile(`^PAY\d+$`), id)
	assert.Contains(t, id, "PAY1748781000000")
}

func TestCalculateTotal(t *testing.T) {
	assert.Equal(t, 160.0, calculateTotal(testLines()))
	assert.Equal(t, 0.0, calculateTotal(nil))
}

func TestGetOrderReturnsItems(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestOrderService(orders, newFakePaymentStore(), &fakePublisher{})

	result, err := svc.Checkout(context.Background(), &CheckoutRequest{
		Lines: testLines(),
		Shop:  "Pa Ple Kitchen",
	})
	require.NoError(t, err)

	order, items, err := svc.GetOrder(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, result.OrderNumber, order.OrderNumber)
	assert.Len(t, items, 2)
}
