package catalog

import (
	"context"
	"errors"
	"time"
)

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
}

// StockReduction is one order line item applied to inventory.
type StockReduction struct {
	ProductID string
	Quantity  int
}

// SearchQuery filters the public product listing. Zero values mean "no
// constraint".
type SearchQuery struct {
	Search   string
	Category string
	MaxPrice float64
	Sort     string // "asc" | "dsc" by price
	Page     int
	Limit    int
}

// ErrNotFound is returned when a referenced product does not exist.
var ErrNotFound = errors.New("product not found")

type Store interface {
	Ping(ctx context.Context) error

	Latest(ctx context.Context, limit int) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	All(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	// Search returns one page of matches plus the total match count.
	Search(ctx context.Context, q SearchQuery) ([]Product, int, error)

	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error

	// ReduceStock applies the reductions in input order. If any product is
	// missing it fails with ErrNotFound and applies nothing.
	ReduceStock(ctx context.Context, items []StockReduction) error
}
