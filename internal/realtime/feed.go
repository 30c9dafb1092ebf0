// Package realtime fans change notifications out to in-process subscribers.
// Subscriptions return an unsubscribe handle the owner must invoke on
// teardown; a handle left uninvoked keeps its callback live.
package realtime

import (
	"sync"

	"storefront-service/internal/models"
)

type Feed struct {
	mu          sync.Mutex
	nextID      int64
	paymentSubs map[string]map[int64]func(models.Payment)
	orderSubs   map[string]map[int64]func()
	menuSubs    map[string]map[int64]func()
}

// NewFeed creates an empty change feed
func NewFeed() *Feed {
	return &Feed{
		paymentSubs: make(map[string]map[int64]func(models.Payment)),
		orderSubs:   make(map[string]map[int64]func()),
		menuSubs:    make(map[string]map[int64]func()),
	}
}

// SubscribePayment registers a callback for snapshots of one payment
// document. The returned handle deregisters it; invoking the handle more
// than once is a no-op.
func (f *Feed) SubscribePayment(paymentID string, fn func(models.Payment)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.paymentSubs[paymentID] == nil {
		f.paymentSubs[paymentID] = make(map[int64]func(models.Payment))
	}
	f.paymentSubs[paymentID][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if subs, ok := f.paymentSubs[paymentID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(f.paymentSubs, paymentID)
			}
		}
	}
}

// SubscribeOrders registers a callback fired whenever any order belonging
// to the shop changes. Subscribers reload the full list; the feed carries
// no diffs.
func (f *Feed) SubscribeOrders(shop string, fn func()) func() {
	return f.subscribeKeyed(f.orderSubs, shop, fn)
}

// SubscribeMenu registers a callback fired whenever the shop's menu changes
func (f *Feed) SubscribeMenu(shop string, fn func()) func() {
	return f.subscribeKeyed(f.menuSubs, shop, fn)
}

func (f *Feed) subscribeKeyed(subs map[string]map[int64]func(), key string, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if subs[key] == nil {
		subs[key] = make(map[int64]func())
	}
	subs[key][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if m, ok := subs[key]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(subs, key)
			}
		}
	}
}

// PublishPayment dispatches a payment snapshot to its subscribers
func (f *Feed) PublishPayment(payment models.Payment) {
	f.mu.Lock()
	callbacks := make([]func(models.Payment), 0, len(f.paymentSubs[payment.ID]))
	for _, fn := range f.paymentSubs[payment.ID] {
		callbacks = append(callbacks, fn)
	}
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(payment)
	}
}

// NotifyOrders tells a shop's order subscribers that something changed
func (f *Feed) NotifyOrders(shop string) {
	f.notifyKeyed(f.orderSubs, shop)
}

// NotifyMenu tells a shop's menu subscribers that something changed
func (f *Feed) NotifyMenu(shop string) {
	f.notifyKeyed(f.menuSubs, shop)
}

func (f *Feed) notifyKeyed(subs map[string]map[int64]func(), key string) {
	f.mu.Lock()
	callbacks := make([]func(), 0, len(subs[key]))
	for _, fn := range subs[key] {
		callbacks = append(callbacks, fn)
	}
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
