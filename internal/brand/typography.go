package brand

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Typography is a modular type scale: every size is BaseSize multiplied by a power of Ratio.
type Typography struct {
	FontFamily string  `json:"fontFamily"`
	BaseSize   float64 `json:"baseSize"`
	Ratio      float64 `json:"ratio"`
}

// TypeSize is one named step of a type scale, in pixels.
type TypeSize struct {
	Name string  `json:"name"`
	Px   float64 `json:"px"`
}

// typeSteps maps step names to their exponent of the ratio.
var typeSteps = []struct {
	name     string
	exponent int
}{
	{"xs", -2},
	{"sm", -1},
	{"base", 0},
	{"lg", 1},
	{"xl", 2},
	{"2xl", 3},
	{"3xl", 4},
	{"4xl", 5},
}

// Named ratio presets.
var ratioPresets = map[string]float64{
	"minor-second":     1.067,
	"major-second":     1.125,
	"minor-third":      1.2,
	"major-third":      1.25,
	"perfect-fourth":   1.333,
	"augmented-fourth": 1.414,
	"perfect-fifth":    1.5,
	"golden":           1.618,
}

// DefaultTypography returns a 16px major-third scale.
func DefaultTypography() Typography {
	return Typography{
		FontFamily: "Inter, system-ui, sans-serif",
		BaseSize:   16,
		Ratio:      ratioPresets["major-third"],
	}
}

// ParseRatio accepts a preset name (e.g. "perfect-fourth") or a number greater than 1.
func ParseRatio(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := ratioPresets[s]; ok {
		return r, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown type scale ratio %q", s)
	}
	if !finite(r) || r <= 1 {
		return 0, fmt.Errorf("type scale ratio must be greater than 1, got %v", r)
	}
	return r, nil
}

// Validate checks the scale parameters.
func (t Typography) Validate() error {
	if !finite(t.BaseSize) || t.BaseSize <= 0 {
		return fmt.Errorf("typography base size must be positive, got %v", t.BaseSize)
	}
	if !finite(t.Ratio) || t.Ratio <= 1 {
		return fmt.Errorf("typography ratio must be greater than 1, got %v", t.Ratio)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sizes returns the named sizes from smallest to largest, rounded to 0.01px.
func (t Typography) Sizes() []TypeSize {
	sizes := make([]TypeSize, 0, len(typeSteps))
	for _, step := range typeSteps {
		px := t.BaseSize * math.Pow(t.Ratio, float64(step.exponent))
		sizes = append(sizes, TypeSize{
			Name: step.name,
			Px:   math.Round(px*100) / 100,
		})
	}
	return sizes
}

// withDefaults fills zero fields from DefaultTypography.
func (t Typography) withDefaults() Typography {
	def := DefaultTypography()
	if t.FontFamily == "" {
		t.FontFamily = def.FontFamily
	}
	if t.BaseSize == 0 {
		t.BaseSize = def.BaseSize
	}
	if t.Ratio == 0 {
		t.Ratio = def.Ratio
	}
	return t
}
