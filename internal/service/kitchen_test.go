package service

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedKitchenOrders(orders *fakeOrderStore) {
	orders.listBackstore = []models.Order{
		{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPending},
		{ID: "o2", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPreparing},
		{ID: "o3", Shop: "Pa Ple Kitchen", Status: models.OrderStatusCompleted},
		{ID: "o4", Shop: "Pa Ple Kitchen", Status: models.OrderStatusPending},
	}
}

func TestKitchenFilterDefaultsToPending(t *testing.T) {
	orders := newFakeOrderStore()
	seedKitchenOrders(orders)
	kitchen := NewKitchenService(orders, newFakeMenuStore(), &fakePublisher{})
	kitchen.SetShop("Pa Ple Kitchen")
	require.NoError(t, kitchen.Refresh(context.Background()))

	filtered := kitchen.Filtered()
	require.Len(t, filtered, 2)
	for _, order := range filtered {
		assert.Equal(t, models.OrderStatusPending, order.Status)
	}
}

func TestKitchenFilterAll(t *testing.T) {
	orders := newFakeOrderStore()
	seedKitchenOrders(orders)
	kitchen := NewKitchenService(orders, newFakeMenuStore(), &fakePublisher{})
	kitchen.SetShop("Pa Ple Kitchen")
	require.NoError(t, kitchen.Refresh(context.Background()))

	require.NoError(t, kitchen.SetFilter("all"))
	assert.Len(t, kitchen.Filtered(), 4)
}

func TestKitchenFilterRejectsUnknownStatus(t *testing.T) {
	kitchen := NewKitchenService(newFakeOrderStore(), newFakeMenuStore(), &fakePublisher{})
	assert.Error(t, kitchen.SetFilter("bogus"))
	assert.Error(t, kitchen.SetFilter(models.OrderStatusPendingPayment))
}

func TestKitchenSetShopDropsLoadedList(t *testing.T) {
	orders := newFakeOrderStore()
	seedKitchenOrders(orders)
	kitchen := NewKitchenService(orders, newFakeMenuStore(), &fakePublisher{})
	kitchen.SetShop("Pa Ple Kitchen")
	require.NoError(t, kitchen.Refresh(context.Background()))
	require.NoError(t, kitchen.SetFilter("all"))
	require.NotEmpty(t, kitchen.Filtered())

	kitchen.SetShop("Pa Mit Noodles")
	assert.Empty(t, kitchen.Filtered())
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	orders := newFakeOrderStore()
	kitchen := NewKitchenService(orders, newFakeMenuStore(), &fakePublisher{})

	err := kitchen.UpdateStatus(context.Background(), "o1", "shipped")
	assert.Error(t, err)
	assert.Equal(t, 0, orders.statusWrites)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	orders := newFakeOrderStore()
	orders.orders["o1"] = &models.Order{ID: "o1", Shop: "Pa Ple Kitchen", Status: models.OrderStatusCompleted}
	publisher := &fakePublisher{}
	kitchen := NewKitchenService(orders, newFakeMenuStore(), publisher)

	// Operators can walk a finished order back for correction
	require.NoError(t, kitchen.UpdateStatus(context.Background(), "o1", models.OrderStatusPreparing))

	order, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)

	require.Len(t, publisher.orderChanges, 1)
	assert.Equal(t, "o1", publisher.orderChanges[0].OrderID)
	assert.Equal(t, models.OrderStatusPreparing, publisher.orderChanges[0].Status)
	assert.WithinDuration(t, time.Now(), publisher.orderChanges[0].Timestamp, time.Minute)
}

func TestCreateMenuItemValidatesCategory(t *testing.T) {
	kitchen := NewKitchenService(newFakeOrderStore(), newFakeMenuStore(), &fakePublisher{})

	err := kitchen.CreateMenuItem(context.Background(), &models.MenuItem{Name: "X", Category: "starter", Shop: "Pa Ple Kitchen"})
	assert.Error(t, err)

	err = kitchen.CreateMenuItem(context.Background(), &models.MenuItem{Name: "X", Category: models.CategoryAll, Shop: "Pa Ple Kitchen"})
	assert.Error(t, err)
}

func TestCreateMenuItemAssignsIDAndPublishes(t *testing.T) {
	menu := newFakeMenuStore()
	publisher := &fakePublisher{}
	kitchen := NewKitchenService(newFakeOrderStore(), menu, publisher)

	item := &models.MenuItem{Name: "Khao Soi", Price: 65, Category: models.CategoryNoodle, Shop: "Pa Mit Noodles", Available: true}
	require.NoError(t, kitchen.CreateMenuItem(context.Background(), item))

	assert.NotEmpty(t, item.ID)
	require.Len(t, publisher.menuChanges, 1)
	assert.Equal(t, "Pa Mit Noodles", publisher.menuChanges[0].Shop)
	assert.WithinDuration(t, time.Now(), publisher.menuChanges[0].Timestamp, time.Minute)
}

func TestSetMenuItemAvailabilityPublishes(t *testing.T) {
	menu := newFakeMenuStore()
	menu.items["1"] = &models.MenuItem{ID: "1", Name: "Pad Thai", Category: models.CategoryFood, Shop: "Pa Ple Kitchen", Available: true}
	publisher := &fakePublisher{}
	kitchen := NewKitchenService(newFakeOrderStore(), menu, publisher)

	require.NoError(t, kitchen.SetMenuItemAvailability(context.Background(), "1", false))

	item, err := menu.GetMenuItem(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, item.Available)
	assert.Len(t, publisher.menuChanges, 1)
}

func TestDeleteMenuItemPublishes(t *testing.T) {
	menu := newFakeMenuStore()
	menu.items["1"] = &models.MenuItem{ID: "1", Name: "Pad Thai", Category: models.CategoryFood, Shop: "Pa Ple Kitchen"}
	publisher := &fakePublisher{}
	kitchen := NewKitchenService(newFakeOrderStore(), menu, publisher)

	require.NoError(t, kitchen.DeleteMenuItem(context.Background(), "1"))

	assert.Equal(t, []string{"1"}, menu.deleted)
	assert.Len(t, publisher.menuChanges, 1)
}
