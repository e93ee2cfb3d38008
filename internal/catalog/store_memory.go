package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemStore is a non-durable Store for local runs and tests.
type MemStore struct {
	mu     sync.RWMutex
	m      map[int64]Product
	nextID int64
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[int64]Product{}, nextID: 1}
}

func (s *MemStore) Init(ctx context.Context) error { return nil }

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Insert(ctx context.Context, in ProductInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.m[id] = toProduct(id, in)
	return id, nil
}

func (s *MemStore) Update(ctx context.Context, id int64, in ProductInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return 0, nil
	}
	s.m[id] = toProduct(id, in)
	return 1, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return 0, nil
	}
	delete(s.m, id)
	return 1, nil
}

func toProduct(id int64, in ProductInput) Product {
	p := Product{ID: id}
	if in.Name.Valid {
		v := in.Name.String
		p.Name = &v
	}
	if in.Price.Valid {
		v := in.Price.Float64
		p.Price = &v
	}
	if in.Quantity.Valid {
		v := in.Quantity.Int64
		p.Quantity = &v
	}
	if in.Description.Valid {
		v := in.Description.String
		p.Description = &v
	}
	return p
}
