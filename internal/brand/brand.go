// Package brand manages brand themes: a base colour, its generated ramp and a type scale,
// persisted through a Store.
package brand

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mymoto/themekit/internal/colour"
)

var (
	// ErrBrandNotFound is returned when no brand has the requested ID.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrInvalidBrand is returned when a brand fails validation.
	ErrInvalidBrand = errors.New("invalid brand")

	// ErrDefaultBrandDelete is returned when deleting the default brand.
	ErrDefaultBrandDelete = errors.New("the default brand cannot be deleted")
)

// Default brand seeded into an empty store.
const (
	DefaultBrandName  = "MyMoto"
	DefaultBrandColor = "#e11d48"
)

// Brand is a named theme.
type Brand struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	PrimaryColor string       `json:"primaryColor"`
	Curve        colour.Curve `json:"curve"`
	IsDefault    bool         `json:"isDefault"`
	Typography   Typography   `json:"typography"`
	// Scale caches the ramp generated from PrimaryColor and Curve.
	// Individual steps may carry overrides set through Service.SetStep.
	Scale     colour.Scale `json:"scale,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Validate checks the brand's fields.
func (b Brand) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBrand)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBrand)
	}
	if _, err := colour.ParseHex(b.PrimaryColor); err != nil {
		return fmt.Errorf("%w: primary colour: %w", ErrInvalidBrand, err)
	}
	if !b.Curve.Valid() {
		return fmt.Errorf("%w: unknown curve %q", ErrInvalidBrand, b.Curve)
	}
	if err := b.Typography.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBrand, err)
	}
	if b.Scale != nil {
		if err := b.Scale.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBrand, err)
		}
	}
	return nil
}

// Primary returns the parsed primary colour.
func (b Brand) Primary() colour.RGB {
	rgb, _ := colour.ParseHex(b.PrimaryColor)
	return rgb
}

// Ramp returns the cached scale, generating it when absent.
func (b Brand) Ramp() colour.Scale {
	if b.Scale != nil {
		return b.Scale.Clone()
	}
	return colour.GenerateRamp(b.Primary(), b.Curve)
}

// Clone returns a deep copy of the brand.
func (b Brand) Clone() Brand {
	b.Scale = b.Scale.Clone()
	return b
}

// sortBrands orders the default brand first, then by name.
func sortBrands(brands []Brand) {
	slices.SortStableFunc(brands, func(a, b Brand) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
