package service

import (
	"context"

	"storefront-service/internal/models"
)

// MenuStore is the slice of the store the catalog and kitchen menu
// management depend on.
type MenuStore interface {
	ListMenuItems(ctx context.Context, shop, category string) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	SetMenuItemAvailability(ctx context.Context, id string, available bool) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// ShopStore lists active shops
type ShopStore interface {
	ListShops(ctx context.Context) ([]models.Shop, error)
}

// OrderStore persists orders and their item snapshots
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error)
	ListOrdersByShop(ctx context.Context, shop string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// PaymentStore persists payment records keyed by explicit id
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
}

// EventStore records processed event ids for consumer idempotency
type EventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Publisher emits domain change events
type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
	PublishMenuChanged(ctx context.Context, event *models.MenuChangedEvent) error
}

// MenuCache is the shared cache layer in front of MenuStore
type MenuCache interface {
	GetMenu(ctx context.Context, shop, category string) ([]models.MenuItem, bool, error)
	SetMenu(ctx context.Context, shop, category string, items []models.MenuItem) error
	InvalidateMenu(ctx context.Context, shop string) error
}

// PaymentFeed is the subscription source payment trackers observe
type PaymentFeed interface {
	SubscribePayment(paymentID string, fn func(models.Payment)) func()
}
