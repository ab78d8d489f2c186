package brand

import (
	"context"
	"fmt"
	"sync"
)

// Store persists brands and the active brand selection.
type Store interface {
	// Name identifies the backend in logs.
	Name() string
	// List returns all brands, default brand first, then by name.
	List(ctx context.Context) ([]Brand, error)
	// Get returns the brand with id or ErrBrandNotFound.
	Get(ctx context.Context, id string) (Brand, error)
	// Save inserts or replaces a brand.
	Save(ctx context.Context, b Brand) error
	// Delete removes a brand or returns ErrBrandNotFound.
	Delete(ctx context.Context, id string) error
	// Active returns the active brand ID, or "" when none is set.
	Active(ctx context.Context) (string, error)
	// SetActive records the active brand ID.
	SetActive(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	brands map[string]Brand
	active string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{brands: make(map[string]Brand)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) List(_ context.Context) ([]Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b.Clone())
	}
	sortBrands(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brands[id]
	if !ok {
		return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, b Brand) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[b.ID] = b.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	delete(s.brands, id)
	if s.active == id {
		s.active = ""
	}
	return nil
}

func (s *MemoryStore) Active(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	s.active = id
	return nil
}

func (s *MemoryStore) Close() error { return nil }
