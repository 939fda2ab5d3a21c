package cache

import "context"

// Event describes a completed mutation. The flags are independent and
// combine; ids scope the per-entity keys.
type Event struct {
	Product bool
	Order   bool
	Admin   bool

	UserID     string
	OrderID    string
	ProductIDs []string
}

// Invalidator maps mutation events to the deterministic key-set to purge.
// It runs synchronously after every successful mutation, before the response
// is written.
type Invalidator struct {
	cache Cache
}

func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

func (inv *Invalidator) Invalidate(ctx context.Context, ev Event) error {
	return inv.cache.Delete(ctx, Keys(ev)...)
}

// Keys expands an event into its invalidation key-set.
func Keys(ev Event) []Key {
	var keys []Key

	if ev.Product {
		keys = append(keys, LatestProducts, Categories, AllProducts)
		for _, id := range ev.ProductIDs {
			keys = append(keys, ProductKey(id))
		}
	}

	if ev.Order {
		keys = append(keys, AllOrders)
		if ev.UserID != "" {
			keys = append(keys, MyOrders(ev.UserID))
		}
		if ev.OrderID != "" {
			keys = append(keys, OrderKey(ev.OrderID))
		}
	}

	if ev.Admin {
		keys = append(keys, AdminStats, AdminPieCharts, AdminBarCharts, AdminLineCharts)
	}

	return keys
}
