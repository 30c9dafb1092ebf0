package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront-service/internal/models"
)

// In-memory store and publisher doubles shared across the package tests.

type fakeOrderStore struct {
	mu            sync.Mutex
	orders        map[string]*models.Order
	items         []models.OrderItem
	listErr       error
	createErr     error
	createCalls   int
	statusWrites  int
	listBackstore []models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderStore) CreateOrderItem(_ context.Context, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s not found", id)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) GetOrderItemsByOrderID(_ context.Context, orderID string) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderItem
	for _, item := range f.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListOrdersByShop(_ context.Context, shop string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Order, 0, len(f.listBackstore))
	for _, order := range f.listBackstore {
		if shop == "" || order.Shop == shop {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusWrites++
	if order, ok := f.orders[orderID]; ok {
		order.Status = status
	}
	return nil
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
	getErr   error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	payment, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentStore) UpdatePaymentStatus(_ context.Context, paymentID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return errors.New("payment not found")
	}
	payment.Status = status
	return nil
}

type fakeMenuStore struct {
	mu        sync.Mutex
	items     map[string]*models.MenuItem
	listErr   error
	listCalls int
	deleted   []string
}

func newFakeMenuStore() *fakeMenuStore {
	return &fakeMenuStore{items: make(map[string]*models.MenuItem)}
}

func (f *fakeMenuStore) ListMenuItems(_ context.Context, shop, category string) ([]models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.MenuItem
	for _, item := range f.items {
		if item.Shop != shop || !item.Available {
			continue
		}
		if category != models.CategoryAll && item.Category != category {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeMenuStore) GetMenuItem(_ context.Context, id string) (*models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (f *fakeMenuStore) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeMenuStore) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return errors.New("menu item not found")
	}
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeMenuStore) SetMenuItemAvailability(_ context.Context, id string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return errors.New("menu item not found")
	}
	item.Available = available
	return nil
}

func (f *fakeMenuStore) DeleteMenuItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeShopStore struct {
	shops   []models.Shop
	listErr error
}

func (f *fakeShopStore) ListShops(_ context.Context) ([]models.Shop, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.shops, nil
}

type fakeMenuCache struct {
	mu         sync.Mutex
	entries    map[string][]models.MenuItem
	setCalls   int
	getErr     error
	invalidate []string
}

func newFakeMenuCache() *fakeMenuCache {
	return &fakeMenuCache{entries: make(map[string][]models.MenuItem)}
}

func (f *fakeMenuCache) GetMenu(_ context.Context, shop, category string) ([]models.MenuItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	items, ok := f.entries[shop+":"+category]
	return items, ok, nil
}

func (f *fakeMenuCache) SetMenu(_ context.Context, shop, category string, items []models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.entries[shop+":"+category] = items
	return nil
}

func (f *fakeMenuCache) InvalidateMenu(_ context.Context, shop string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.entries {
		delete(f.entries, key)
	}
	f.invalidate = append(f.invalidate, shop)
	return nil
}

type fakeEventStore struct {
	mu        sync.Mutex
	processed map[string]string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{processed: make(map[string]string)}
}

func (f *fakeEventStore) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.processed[eventID]
	return ok, nil
}

func (f *fakeEventStore) MarkEventProcessed(_ context.Context, eventID, eventType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[eventID] = eventType
	return nil
}

type fakePublisher struct {
	mu             sync.Mutex
	submitted      []*models.OrderSubmittedEvent
	orderChanges   []*models.OrderStatusChangedEvent
	paymentChanges []*models.PaymentStatusChangedEvent
	menuChanges    []*models.MenuChangedEvent
}

func (f *fakePublisher) PublishOrderSubmitted(_ context.Context, event *models.OrderSubmittedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, event)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderChanges = append(f.orderChanges, event)
	return nil
}

func (f *fakePublisher) PublishPaymentStatusChanged(_ context.Context, event *models.PaymentStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentChanges = append(f.paymentChanges, event)
	return nil
}

func (f *fakePublisher) PublishMenuChanged(_ context.Context, event *models.MenuChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menuChanges = append(f.menuChanges, event)
	return nil
}
