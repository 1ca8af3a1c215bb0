package models

import (
	"strings"
	"time"
)

// Order statuses. Status is monotonic: once delivered an order is never
// reverted in normal flow.
const (
	OrderStatusActive    = "active"
	OrderStatusDelivered = "delivered"
)

// OrderIDPrefix is prepended to the assigned order number for
// client-supplied document ids (e.g. ALF-10001).
const OrderIDPrefix = "ALF-"

// Checkpoint is a single timeline entry on an order. Time is a client-stamped
// RFC3339 string: the backend's server timestamp sentinel cannot be used
// inside array elements, and ordering relies on insertion order anyway.
type Checkpoint struct {
	ID   string `firestore:"id" json:"id"`
	Text string `firestore:"text" json:"text"`
	Time string `firestore:"time" json:"time"`
}

// Order is the canonical shipment record.
type Order struct {
	ID            string       `firestore:"id" json:"id"`
	OrderNumber   int          `firestore:"orderNumber" json:"orderNumber"`
	Customer      string       `firestore:"customer" json:"customer"`
	CustomerLower string       `firestore:"customerLower" json:"-"`
	Origin        string       `firestore:"origin" json:"origin"`
	Destination   string       `firestore:"destination" json:"destination"`
	Items         string       `firestore:"items" json:"items,omitempty"`
	Status        string       `firestore:"status" json:"status"`
	Checkpoints   []Checkpoint `firestore:"checkpoints" json:"checkpoints"`
	CreatedAt     time.Time    `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	DeliveredAt   *time.Time   `firestore:"deliveredAt" json:"deliveredAt,omitempty"`
}

// PublicOrder is the sanitized projection mirrored to a publicly readable
// document. It must never carry fields outside this allow-list.
type PublicOrder struct {
	ID          string       `firestore:"id" json:"id"`
	OrderNumber int          `firestore:"orderNumber" json:"orderNumber"`
	Customer    string       `firestore:"customer" json:"customer"`
	Origin      string       `firestore:"origin" json:"origin"`
	Destination string       `firestore:"destination" json:"destination"`
	Status      string       `firestore:"status" json:"status"`
	Checkpoints []Checkpoint `firestore:"checkpoints" json:"checkpoints"`
	CreatedAt   time.Time    `firestore:"createdAt" json:"createdAt"`
	DeliveredAt *time.Time   `firestore:"deliveredAt" json:"deliveredAt,omitempty"`
}

// PublicView builds the mirror projection from the canonical order.
func (o *Order) PublicView() *PublicOrder {
	return &PublicOrder{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Customer:    o.Customer,
		Origin:      o.Origin,
		Destination: o.Destination,
		Status:      o.Status,
		Checkpoints: o.Checkpoints,
		CreatedAt:   o.CreatedAt,
		DeliveredAt: o.DeliveredAt,
	}
}

// NormalizeCustomer keeps the precomputed lowercase search field consistent
// with the display name.
func (o *Order) NormalizeCustomer() {
	o.CustomerLower = strings.ToLower(o.Customer)
}

// CreateOrderRequest represents the admin create-order form.
type CreateOrderRequest struct {
	Customer    string `json:"customer" validate:"required,max=120"`
	Origin      string `json:"origin" validate:"required,max=200"`
	Destination string `json:"destination" validate:"required,max=200"`
	Items       string `json:"items" validate:"max=1000"`
}

// AddCheckpointRequest carries a single new timeline entry.
type AddCheckpointRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// Search types accepted by the admin order search.
const (
	SearchByCustomer = "customer"
	SearchByID       = "id"
)
