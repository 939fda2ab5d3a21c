package order

import (
	"context"
	"time"
)

const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
)

// NextStatus advances the fulfilment state machine. Delivered is terminal
// and any unrecognized value collapses to Delivered.
func NextStatus(status string) string {
	switch status {
	case StatusProcessing:
		return StatusShipped
	case StatusShipped:
		return StatusDelivered
	default:
		return StatusDelivered
	}
}

type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	PinCode string `json:"pin_code"`
}

type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Photo     string  `json:"photo"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	UserName        string       `json:"user_name,omitempty"`
	ShippingInfo    ShippingInfo `json:"shipping_info"`
	Items           []Item       `json:"order_items"`
	Subtotal        float64      `json:"subtotal"`
	Tax             float64      `json:"tax"`
	ShippingCharges float64      `json:"shipping_charges"`
	Discount        float64      `json:"discount"`
	Total           float64      `json:"total"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
}

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, bool, error)
	ByUser(ctx context.Context, userID string) ([]Order, error)
	All(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
