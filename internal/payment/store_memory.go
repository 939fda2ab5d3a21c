package payment

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Coupon
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Coupon{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, c Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = c
	return nil
}

func (s *MemStore) ByCode(ctx context.Context, code string) (Coupon, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.m {
		if c.Code == code {
			return c, true, nil
		}
	}
	return Coupon{}, false, nil
}

func (s *MemStore) All(ctx context.Context) ([]Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Coupon, 0, len(s.m))
	for _, c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return false, nil
	}
	delete(s.m, id)
	return true, nil
}
