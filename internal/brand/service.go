package brand

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/mymoto/themekit/internal/colour"
)

// EventType identifies a brand change.
type EventType int

const (
	EventCreated EventType = iota
	EventUpdated
	EventDeleted
	EventSwitched
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	case EventSwitched:
		return "switched"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a change has been persisted.
type Event struct {
	Type  EventType
	Brand Brand
}

// Params describes a new brand.
type Params struct {
	Name         string
	PrimaryColor string
	Curve        colour.Curve
	Typography   Typography
	// Scale replaces the generated ramp when set, as for imported brands.
	Scale colour.Scale
}

// Service owns the brand set and the active brand selection.
// All changes are written through to the Store before subscribers are notified.
type Service struct {
	store  Store
	logger hclog.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	brands   map[string]Brand
	activeID string
	// revs counts committed changes per brand id.
	revs map[string]uint64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewService creates a Service over store. Call Load before use.
func NewService(store Store, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		store:  store,
		logger: logger.Named("brand"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		brands: make(map[string]Brand),
		revs:   make(map[string]uint64),
		subs:   make(map[int]chan Event),
	}
}

// Load reads brands from the store, seeds the default brand when missing and
// restores the active selection.
func (s *Service) Load(ctx context.Context) error {
	brands, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load brands: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.brands = make(map[string]Brand, len(brands))
	var defaultID string
	for _, b := range brands {
		s.brands[b.ID] = b
		s.revs[b.ID]++
		if b.IsDefault && defaultID == "" {
			defaultID = b.ID
		}
	}

	if defaultID == "" {
		def, err := s.newBrand(Params{Name: DefaultBrandName, PrimaryColor: DefaultBrandColor})
		if err != nil {
			return err
		}
		def.IsDefault = true
		if err := s.store.Save(ctx, def); err != nil {
			return fmt.Errorf("failed to seed default brand: %w", err)
		}
		s.brands[def.ID] = def
		defaultID = def.ID
		s.logger.Info("seeded default brand", "brand", def.Name, "id", def.ID)
	}

	active, err := s.store.Active(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active brand: %w", err)
	}
	if _, ok := s.brands[active]; !ok {
		if active != "" {
			s.logger.Warn("active brand no longer exists, using default", "id", active)
		}
		if err := s.store.SetActive(ctx, defaultID); err != nil {
			return fmt.Errorf("failed to set active brand: %w", err)
		}
		active = defaultID
	}
	s.activeID = active

	s.logger.Debug("brands loaded", "count", len(s.brands), "active", active, "store", s.store.Name())
	return nil
}

// List returns all brands, default first, then by name.
func (s *Service) List() []Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b.Clone())
	}
	sortBrands(out)
	return out
}

// Get returns the brand with id.
func (s *Service) Get(id string) (Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brands[id]
	if !ok {
		return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	return b.Clone(), nil
}

// Find returns the brand whose ID or name (case-insensitive) matches ref.
func (s *Service) Find(ref string) (Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.brands[ref]; ok {
		return b.Clone(), nil
	}
	for _, b := range s.brands {
		if strings.EqualFold(b.Name, ref) {
			return b.Clone(), nil
		}
	}
	return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, ref)
}

// Active returns the active brand.
func (s *Service) Active() (Brand, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brands[s.activeID]
	return b.Clone(), ok
}

// Create adds a brand and generates its scale.
func (s *Service) Create(ctx context.Context, p Params) (Brand, error) {
	s.mu.Lock()
	b, err := s.newBrand(p)
	if err == nil {
		err = s.checkNameLocked(b.ID, b.Name)
	}
	if err == nil {
		err = s.store.Save(ctx, b)
	}
	if err != nil {
		s.mu.Unlock()
		return Brand{}, err
	}
	s.brands[b.ID] = b
	s.revs[b.ID]++
	s.mu.Unlock()

	s.logger.Info("brand created", "brand", b.Name, "id", b.ID, "primary", b.PrimaryColor, "curve", b.Curve)
	s.publish(Event{Type: EventCreated, Brand: b.Clone()})
	return b.Clone(), nil
}

// Update applies fn to a copy of the brand and persists the result.
// Changing the primary colour or curve regenerates the scale, dropping step overrides.
// ID, IsDefault and CreatedAt cannot be changed.
//
// fn runs without the service lock held, so it may read from the service. If
// the brand changes while fn runs, fn is called again on the newer copy.
func (s *Service) Update(ctx context.Context, id string, fn func(*Brand) error) (Brand, error) {
	for {
		s.mu.RLock()
		current, ok := s.brands[id]
		rev := s.revs[id]
		s.mu.RUnlock()
		if !ok {
			return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
		}

		next := current.Clone()
		if err := fn(&next); err != nil {
			return Brand{}, err
		}
		next.ID = current.ID
		next.IsDefault = current.IsDefault
		next.CreatedAt = current.CreatedAt

		if normalised, err := colour.NormaliseHex(next.PrimaryColor); err == nil {
			next.PrimaryColor = normalised
		}
		if next.PrimaryColor != current.PrimaryColor || next.Curve != current.Curve {
			next.Scale = nil
		}

		s.mu.Lock()
		if _, ok := s.brands[id]; !ok {
			s.mu.Unlock()
			return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
		}
		if s.revs[id] != rev {
			s.mu.Unlock()
			s.logger.Debug("brand changed during update, retrying", "id", id)
			continue
		}
		b, err := s.commitLocked(ctx, next)
		s.mu.Unlock()
		if err != nil {
			return Brand{}, err
		}

		s.logger.Info("brand updated", "brand", b.Name, "id", b.ID)
		s.publish(Event{Type: EventUpdated, Brand: b.Clone()})
		return b.Clone(), nil
	}
}


// SetStep overwrites one step of the brand's cached scale.
func (s *Service) SetStep(ctx context.Context, id string, step int, hex string) (Brand, error) {
	if step < 1 || step > colour.StepCount {
		return Brand{}, fmt.Errorf("%w: step %d outside 1..%d", colour.ErrInvalidStepCount, step, colour.StepCount)
	}
	c, err := colour.ParseHex(hex)
	if err != nil {
		return Brand{}, err
	}

	return s.Update(ctx, id, func(b *Brand) error {
		if b.Scale == nil {
			b.Scale = colour.GenerateRamp(b.Primary(), b.Curve)
		}
		b.Scale[step] = c
		return nil
	})
}

// Regenerate discards step overrides and rebuilds the scale from the primary colour.
func (s *Service) Regenerate(ctx context.Context, id string) (Brand, error) {
	return s.Update(ctx, id, func(b *Brand) error {
		b.Scale = nil
		return nil
	})
}

// Delete removes a brand. Deleting the active brand activates the default brand.
// If the store cannot record the new active brand, the default is still used
// in memory and the store error is returned.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	b, ok := s.brands[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	if b.IsDefault {
		s.mu.Unlock()
		return ErrDefaultBrandDelete
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.brands, id)
	s.revs[id]++

	var (
		switched  *Brand
		activeErr error
	)
	if s.activeID == id {
		s.activeID = ""
		if def, ok := s.defaultLocked(); ok {
			s.activeID = def.ID
			switched = &def
			if err := s.store.SetActive(ctx, def.ID); err != nil {
				activeErr = fmt.Errorf("brand deleted but failed to store default as active: %w", err)
				s.logger.Warn("failed to store active brand", "id", def.ID, "error", err)
			}
		}
	}
	s.mu.Unlock()

	s.logger.Info("brand deleted", "brand", b.Name, "id", id)
	s.publish(Event{Type: EventDeleted, Brand: b})
	if switched != nil {
		s.publish(Event{Type: EventSwitched, Brand: switched.Clone()})
	}
	return activeErr
}

// Switch makes the brand with id active.
func (s *Service) Switch(ctx context.Context, id string) (Brand, error) {
	s.mu.Lock()
	b, ok := s.brands[id]
	if !ok {
		s.mu.Unlock()
		return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	if err := s.store.SetActive(ctx, id); err != nil {
		s.mu.Unlock()
		return Brand{}, err
	}
	s.activeID = id
	s.mu.Unlock()

	s.logger.Info("switched brand", "brand", b.Name, "id", id)
	s.publish(Event{Type: EventSwitched, Brand: b.Clone()})
	return b.Clone(), nil
}

// Subscribe returns a channel receiving change events and a cancel function.
// Events are dropped for a subscriber whose buffer is full.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("subscriber is not keeping up, dropping event", "subscriber", id, "event", ev.Type.String())
		}
	}
}

// newBrand builds a validated brand with a generated scale.
func (s *Service) newBrand(p Params) (Brand, error) {
	primary, err := colour.NormaliseHex(p.PrimaryColor)
	if err != nil {
		return Brand{}, fmt.Errorf("%w: primary colour: %w", ErrInvalidBrand, err)
	}
	if p.Curve == "" {
		p.Curve = colour.CurveLinear
	}

	now := s.now()
	b := Brand{
		ID:           s.newID(),
		Name:         strings.TrimSpace(p.Name),
		PrimaryColor: primary,
		Curve:        p.Curve,
		Typography:   p.Typography.withDefaults(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.Scale = colour.GenerateRamp(b.Primary(), b.Curve)
	if p.Scale != nil {
		b.Scale = p.Scale.Clone()
	}

	if err := b.Validate(); err != nil {
		return Brand{}, err
	}
	return b, nil
}

// commitLocked validates, regenerates a missing scale, persists and caches b.
func (s *Service) commitLocked(ctx context.Context, b Brand) (Brand, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Typography = b.Typography.withDefaults()
	if err := s.checkNameLocked(b.ID, b.Name); err != nil {
		return Brand{}, err
	}
	if b.Scale == nil {
		if _, err := colour.ParseHex(b.PrimaryColor); err == nil {
			b.Scale = colour.GenerateRamp(b.Primary(), b.Curve)
		}
	}
	b.UpdatedAt = s.now()

	if err := b.Validate(); err != nil {
		return Brand{}, err
	}
	if err := s.store.Save(ctx, b); err != nil {
		return Brand{}, err
	}
	s.brands[b.ID] = b
	s.revs[b.ID]++
	return b, nil
}

// checkNameLocked rejects a name already used by another brand.
func (s *Service) checkNameLocked(id, name string) error {
	for _, other := range s.brands {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return fmt.Errorf("%w: a brand named %q already exists", ErrInvalidBrand, name)
		}
	}
	return nil
}

func (s *Service) defaultLocked() (Brand, bool) {
	for _, b := range s.brands {
		if b.IsDefault {
			return b, true
		}
	}
	return Brand{}, false
}
