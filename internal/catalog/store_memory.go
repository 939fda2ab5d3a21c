package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Product{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Latest(ctx context.Context, limit int) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.allLocked()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, p := range s.m {
		seen[p.Category] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) All(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.allLocked()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}

func (s *MemStore) Search(ctx context.Context, q SearchQuery) ([]Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.MaxPrice > 0 && p.Price > q.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}

	switch q.Sort {
	case "asc":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "dsc":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	}

	total := len(matched)

	skip := (q.Page - 1) * q.Limit
	if skip >= total {
		return []Product{}, total, nil
	}
	matched = matched[skip:]
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func (s *MemStore) Create(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = p
	return nil
}

func (s *MemStore) Update(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[p.ID]; !ok {
		return ErrNotFound
	}
	s.m[p.ID] = p
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemStore) ReduceStock(ctx context.Context, items []StockReduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before touching anything, so a missing
	// product never leaves sibling items half-applied.
	for _, it := range items {
		if _, ok := s.m[it.ProductID]; !ok {
			return fmt.Errorf("reduce stock %s: %w", it.ProductID, ErrNotFound)
		}
	}

	for _, it := range items {
		p := s.m[it.ProductID]
		p.Stock -= it.Quantity
		s.m[it.ProductID] = p
	}
	return nil
}

func (s *MemStore) allLocked() []Product {
	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	return out
}
