package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of a room-service order
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusPlaced:         "Your order has been received and is awaiting confirmation.",
	OrderStatusPreparing:      "Your order is currently being prepared. Please wait patiently.",
	OrderStatusOutForDelivery: "Your order is out for delivery! It will arrive soon.",
	OrderStatusDelivered:      "Your order has been delivered. Enjoy!",
	OrderStatusCancelled:      "Your order has been cancelled. Please contact concierge for further assistance.",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusText[s]
	return ok
}

// Describe returns the guest-facing explanation of the status.
func (s OrderStatus) Describe() string {
	if text, ok := orderStatusText[s]; ok {
		return text
	}
	return "Status unavailable. Please contact concierge."
}

// Order is a guest order delivered to a room
type Order struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	RoomNumber         string      `db:"room_number" json:"room_number"`
	Subtotal           float64     `db:"subtotal" json:"subtotal"`
	DiscountCode       *string     `db:"discount_code" json:"discount_code"`
	DiscountPercentage float64     `db:"discount_percentage" json:"discount_percentage"`
	Total              float64     `db:"total" json:"total"`
	Status             OrderStatus `db:"status" json:"status"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`

	// Not stored directly in the database
	Lines []OrderLine `db:"-" json:"lines,omitempty"`
}

// OrderLine is one ordered item with the unit price resolved at order time
type OrderLine struct {
	OrderID        uuid.UUID `db:"order_id" json:"order_id"`
	LineNo         int       `db:"line_no" json:"line_no"`
	ItemID         int       `db:"item_id" json:"item_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPrice      float64   `db:"unit_price" json:"unit_price"`
	RedemptionCode string    `db:"redemption_code" json:"redemption_code"`

	// Not stored directly in the database
	Name string `db:"-" json:"name"`
}

// Amount is the line total at full precision.
func (l OrderLine) Amount() float64 {
	return l.UnitPrice * float64(l.Quantity)
}
