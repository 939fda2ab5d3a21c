package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemStore(t *testing.T) *MemStore {
	t.Helper()
	ctx := context.Background()

	s := NewMemStore()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []Product{
		{ID: "p1", Name: "Mechanical Keyboard", Price: 90, Stock: 10, Category: "electronics"},
		{ID: "p2", Name: "Wireless Mouse", Price: 25, Stock: 5, Category: "electronics"},
		{ID: "p3", Name: "Coffee Mug", Price: 8, Stock: 40, Category: "kitchen"},
		{ID: "p4", Name: "Mouse Pad", Price: 12, Stock: 0, Category: "electronics"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	return s
}

func TestMemStore_Latest(t *testing.T) {
	s := seedMemStore(t)

	got, err := s.Latest(context.Background(), 2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p4" || got[1].ID != "p3" {
		t.Fatalf("latest = %v", ids(got))
	}
}

func TestMemStore_Categories(t *testing.T) {
	s := seedMemStore(t)

	got, err := s.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 2 || got[0] != "electronics" || got[1] != "kitchen" {
		t.Fatalf("categories = %v", got)
	}
}

func TestMemStore_Search(t *testing.T) {
	s := seedMemStore(t)
	ctx := context.Background()

	got, total, err := s.Search(ctx, SearchQuery{Search: "mouse", Page: 1, Limit: 8})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("name search: total=%d got=%v", total, ids(got))
	}

	got, total, err = s.Search(ctx, SearchQuery{Category: "electronics", MaxPrice: 30, Sort: "asc", Page: 1, Limit: 8})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || got[0].ID != "p4" || got[1].ID != "p2" {
		t.Fatalf("filter+sort: total=%d got=%v", total, ids(got))
	}

	got, total, err = s.Search(ctx, SearchQuery{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 4 || len(got) != 1 {
		t.Fatalf("paging: total=%d page2=%v", total, ids(got))
	}

	got, _, err = s.Search(ctx, SearchQuery{Page: 5, Limit: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("past-the-end page = %v", ids(got))
	}
}

func TestMemStore_ReduceStock(t *testing.T) {
	s := seedMemStore(t)
	ctx := context.Background()

	err := s.ReduceStock(ctx, []StockReduction{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	p1, _, _ := s.Get(ctx, "p1")
	p2, _, _ := s.Get(ctx, "p2")
	if p1.Stock != 7 || p2.Stock != 3 {
		t.Fatalf("stocks = %d, %d, want 7, 3", p1.Stock, p2.Stock)
	}
}

func TestMemStore_ReduceStock_MissingProductAppliesNothing(t *testing.T) {
	s := seedMemStore(t)
	ctx := context.Background()

	err := s.ReduceStock(ctx, []StockReduction{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "ghost", Quantity: 1},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	p1, _, _ := s.Get(ctx, "p1")
	if p1.Stock != 10 {
		t.Fatalf("p1 stock = %d, earlier items must not stay applied", p1.Stock)
	}
}

func TestMemStore_ReduceStock_NoFloor(t *testing.T) {
	s := seedMemStore(t)
	ctx := context.Background()

	if err := s.ReduceStock(ctx, []StockReduction{{ProductID: "p2", Quantity: 9}}); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	p2, _, _ := s.Get(ctx, "p2")
	if p2.Stock != -4 {
		t.Fatalf("stock = %d, negative stock is permitted", p2.Stock)
	}
}

func ids(ps []Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
