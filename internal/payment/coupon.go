package payment

import "context"

type Coupon struct {
	ID     string  `json:"id"`
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type CouponStore interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, c Coupon) error
	ByCode(ctx context.Context, code string) (Coupon, bool, error)
	All(ctx context.Context) ([]Coupon, error)
	// Delete reports whether the coupon existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// IntentProvider is the payment-gateway collaborator: amount in, client
// secret out.
type IntentProvider interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (string, error)
}
