package models

import "time"

// Shop represents a vendor; menu items and orders are partitioned by its name
type Shop struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	ImageURL     string    `db:"image_url" json:"image_url,omitempty"`
	OpeningHours string    `db:"opening_hours" json:"opening_hours,omitempty"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MenuItem represents an item in a shop's catalog
type MenuItem struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	Shop        string    `db:"shop" json:"shop"`
	Available   bool      `db:"available" json:"available"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is one (item, quantity) pair in a session cart. Item fields are a
// snapshot captured at add time; later catalog changes do not affect them.
type CartLine struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Shop      string  `json:"shop"`
}

// Order represents a submitted cart; immutable after creation except status
type Order struct {
	ID           string    `db:"id" json:"id"`
	OrderNumber  string    `db:"order_number" json:"order_number"`
	Shop         string    `db:"shop" json:"shop"`
	Total        float64   `db:"total" json:"total"`
	CustomerName string    `db:"customer_name" json:"customer_name"`
	TableNumber  string    `db:"table_number" json:"table_number"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is a persisted cart line snapshot belonging to an order
type OrderItem struct {
	ID         int64   `db:"id" json:"id"`
	OrderID    string  `db:"order_id" json:"order_id"`
	MenuItemID string  `db:"menu_item_id" json:"menu_item_id"`
	Name       string  `db:"name" json:"name"`
	UnitPrice  float64 `db:"unit_price" json:"unit_price"`
	Quantity   int     `db:"quantity" json:"quantity"`
	Shop       string  `db:"shop" json:"shop"`
}

// Payment represents the settlement record linked to one order
type Payment struct {
	ID          string    `db:"id" json:"id"`
	OrderID     string    `db:"order_id" json:"order_id"`
	OrderNumber string    `db:"order_number" json:"order_number"`
	Amount      float64   `db:"amount" json:"amount"`
	Shop        string    `db:"shop" json:"shop"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
}

// Order statuses
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPending        = "pending"
	OrderStatusPreparing      = "preparing"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Payment statuses. Expired is never persisted; the tracking timer declares
// it for a payment still pending past its window.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
	PaymentStatusExpired = "expired"
)

// Menu categories
const (
	CategoryAll     = "all"
	CategoryFood    = "food"
	CategoryNoodle  = "noodle"
	CategoryDessert = "dessert"
	CategoryDrink   = "drink"
	CategoryIsan    = "isan"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPending, OrderStatusPreparing,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known menu category
func ValidCategory(c string) bool {
	switch c {
	case CategoryAll, CategoryFood, CategoryNoodle, CategoryDessert,
		CategoryDrink, CategoryIsan:
		return true
	}
	return false
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
