package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KitchenService drives the operator screen: a loaded order list filtered
// by status, operator status transitions, and menu item management.
type KitchenService struct {
	orders    OrderStore
	menu      MenuStore
	publisher Publisher
	logger    *zap.Logger

	mu     sync.Mutex
	shop   string
	loaded []models.Order
	filter string
}

// NewKitchenService creates a kitchen service with the pending filter
// active
func NewKitchenService(orders OrderStore, menu MenuStore, publisher Publisher) *KitchenService {
	return &KitchenService{
		orders:    orders,
		menu:      menu,
		publisher: publisher,
		logger:    util.GetLogger(),
		filter:    models.OrderStatusPending,
	}
}

// SetShop switches the kitchen to another shop and drops the loaded list
func (k *KitchenService) SetShop(shop string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.shop != shop {
		k.shop = shop
		k.loaded = nil
	}
}

// SetFilter selects which order statuses Filtered returns
func (k *KitchenService) SetFilter(status string) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPreparing,
		models.OrderStatusCompleted, "all":
	default:
		return fmt.Errorf("invalid filter status: %s", status)
	}

	k.mu.Lock()
	k.filter = status
	k.mu.Unlock()
	return nil
}

// Refresh reloads the shop's orders from the store. The realtime path
// calls this on every change notification; there is no incremental
// diffing.
func (k *KitchenService) Refresh(ctx context.Context) error {
	k.mu.Lock()
	shop := k.shop
	k.mu.Unlock()

	orders, err := k.orders.ListOrdersByShop(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	k.mu.Lock()
	k.loaded = orders
	k.mu.Unlock()
	return nil
}

// Filtered applies the active status filter to the loaded list. It is a
// pure predicate over loaded orders; no store round-trip.
func (k *KitchenService) Filtered() []models.Order {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.filter == "all" {
		out := make([]models.Order, len(k.loaded))
		copy(out, k.loaded)
		return out
	}

	out := make([]models.Order, 0, len(k.loaded))
	for _, order := range k.loaded {
		if order.Status == k.filter {
			out = append(out, order)
		}
	}
	return out
}

// UpdateStatus persists an operator-driven status change and publishes it.
// The status value must be known, but any transition is allowed so
// operators can correct mistakes (completed back to preparing and so on).
func (k *KitchenService) UpdateStatus(ctx context.Context, orderID, status string) error {
	ctx, span := util.StartSpan(ctx, "KitchenService.UpdateStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status: %s", status)
	}

	order, err := k.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := k.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	util.KitchenStatusUpdatesTotal.WithLabelValues(status).Inc()
	k.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		Shop:    order.Shop,
		Status:  status,
	}
	if err := k.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		k.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}

// CreateMenuItem adds a menu item for the kitchen's shop
func (k *KitchenService) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if !models.ValidCategory(item.Category) || item.Category == models.CategoryAll {
		return fmt.Errorf("invalid menu category: %s", item.Category)
	}
	if item.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := k.menu.CreateMenuItem(ctx, item); err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	k.publishMenuChanged(ctx, item.ID, item.Shop)
	return nil
}

// UpdateMenuItem updates a menu item's mutable fields
func (k *KitchenService) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := k.menu.UpdateMenuItem(ctx, item); err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	k.publishMenuChanged(ctx, item.ID, item.Shop)
	return nil
}

// SetMenuItemAvailability toggles an item on or off the storefront
func (k *KitchenService) SetMenuItemAvailability(ctx context.Context, id string, available bool) error {
	item, err := k.menu.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if err := k.menu.SetMenuItemAvailability(ctx, id, available); err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	k.publishMenuChanged(ctx, id, item.Shop)
	return nil
}

// DeleteMenuItem removes a menu item
func (k *KitchenService) DeleteMenuItem(ctx context.Context, id string) error {
	item, err := k.menu.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if err := k.menu.DeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	k.publishMenuChanged(ctx, id, item.Shop)
	return nil
}

func (k *KitchenService) publishMenuChanged(ctx context.Context, itemID, shop string) {
	event := &models.MenuChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeMenuChanged,
			Timestamp: time.Now(),
		},
		MenuItemID: itemID,
		Shop:       shop,
	}
	if err := k.publisher.PublishMenuChanged(ctx, event); err != nil {
		k.logger.Error("Failed to publish MenuChanged event", zap.Error(err))
	}
}
