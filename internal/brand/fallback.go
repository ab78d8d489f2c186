package brand

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// FallbackStore serves from a primary store and falls back to a secondary one
// when the primary fails. Domain errors (not found, invalid brand) are answers,
// not failures, and are returned as-is.
//
// Successful primary writes are mirrored to the secondary so that a later
// fallback read sees them. Once a write has landed only on the secondary, the
// store is degraded: the primary is no longer consulted, so brands written
// during the outage stay visible even if the primary comes back. Writes made
// while degraded are not copied to the primary.
type FallbackStore struct {
	primary   Store
	secondary Store
	logger    hclog.Logger
	degraded  atomic.Bool
}

// NewFallbackStore composes primary and secondary.
func NewFallbackStore(primary, secondary Store, logger hclog.Logger) *FallbackStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger.Named("store"),
	}
}

func (s *FallbackStore) Name() string {
	return s.primary.Name() + "+" + s.secondary.Name()
}

// Degraded reports whether a write has fallen back to the secondary store.
func (s *FallbackStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *FallbackStore) List(ctx context.Context) ([]Brand, error) {
	if s.Degraded() {
		return s.secondary.List(ctx)
	}
	brands, err := s.primary.List(ctx)
	if !isBackendFailure(err) {
		return brands, err
	}
	s.fallback("list", err)
	return s.secondary.List(ctx)
}

func (s *FallbackStore) Get(ctx context.Context, id string) (Brand, error) {
	if s.Degraded() {
		return s.secondary.Get(ctx, id)
	}
	b, err := s.primary.Get(ctx, id)
	if !isBackendFailure(err) {
		return b, err
	}
	s.fallback("get", err, "brand", id)
	return s.secondary.Get(ctx, id)
}

func (s *FallbackStore) Save(ctx context.Context, b Brand) error {
	return s.write(ctx, "save", func(st Store) error { return st.Save(ctx, b) }, "brand", b.ID)
}

func (s *FallbackStore) Delete(ctx context.Context, id string) error {
	return s.write(ctx, "delete", func(st Store) error { return st.Delete(ctx, id) }, "brand", id)
}

func (s *FallbackStore) Active(ctx context.Context) (string, error) {
	if s.Degraded() {
		return s.secondary.Active(ctx)
	}
	id, err := s.primary.Active(ctx)
	if !isBackendFailure(err) {
		return id, err
	}
	s.fallback("active", err)
	return s.secondary.Active(ctx)
}

func (s *FallbackStore) SetActive(ctx context.Context, id string) error {
	return s.write(ctx, "set-active", func(st Store) error { return st.SetActive(ctx, id) }, "brand", id)
}

// Close closes both stores and returns the first error.
func (s *FallbackStore) Close() error {
	return errors.Join(s.primary.Close(), s.secondary.Close())
}

func (s *FallbackStore) write(ctx context.Context, op string, fn func(Store) error, args ...any) error {
	if s.Degraded() {
		return fn(s.secondary)
	}

	err := fn(s.primary)
	if isBackendFailure(err) {
		s.fallback(op, err, args...)
		if err := fn(s.secondary); err != nil {
			return err
		}
		if s.degraded.CompareAndSwap(false, true) {
			s.logger.Warn("store degraded, serving from secondary until restart",
				"primary", s.primary.Name(), "secondary", s.secondary.Name())
		}
		return nil
	}
	if err != nil {
		return err
	}

	if mirrorErr := fn(s.secondary); mirrorErr != nil && !errors.Is(mirrorErr, ErrBrandNotFound) {
		s.logger.Debug("mirror write failed", append([]any{"op", op, "store", s.secondary.Name(), "error", mirrorErr}, args...)...)
	}
	return nil
}

func (s *FallbackStore) fallback(op string, err error, args ...any) {
	s.logger.Warn("primary store failed, falling back",
		append([]any{"op", op, "primary", s.primary.Name(), "secondary", s.secondary.Name(), "error", err}, args...)...)
}

// isBackendFailure reports whether err is a storage failure rather than a domain answer.
func isBackendFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrBrandNotFound) &&
		!errors.Is(err, ErrInvalidBrand) &&
		!errors.Is(err, context.Canceled)
}
