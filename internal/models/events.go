package models

import "time"

// Event types
const (
	EventTypeOrderSubmitted       = "ORDER_SUBMITTED"
	EventTypeOrderStatusChanged   = "ORDER_STATUS_CHANGED"
	EventTypePaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
	EventTypeMenuChanged          = "MENU_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent published when checkout persists a new order
type OrderSubmittedEvent struct {
	BaseEvent
	OrderID     string     `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	PaymentID   string     `json:"payment_id"`
	Shop        string     `json:"shop"`
	Total       float64    `json:"total"`
	Items       []CartLine `json:"items"`
}

// OrderStatusChangedEvent published on every order status mutation,
// whether by the kitchen workflow or by payment confirmation
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Shop    string `json:"shop"`
	Status  string `json:"status"`
}

// PaymentStatusChangedEvent published on every payment status write.
// This is the transition source payment trackers observe.
type PaymentStatusChangedEvent struct {
	BaseEvent
	PaymentID string  `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Shop      string  `json:"shop"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
}

// MenuChangedEvent published when the kitchen mutates a menu item
type MenuChangedEvent struct {
	BaseEvent
	MenuItemID string `json:"menu_item_id"`
	Shop       string `json:"shop"`
}
