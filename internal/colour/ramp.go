package colour

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// StepCount is the number of steps in a generated ramp.
const StepCount = 12

// Curve names a lightness distribution across ramp steps.
type Curve string

const (
	CurveLinear           Curve = "linear"
	CurveExponential      Curve = "exponential"
	CurveLogarithmic      Curve = "logarithmic"
	CurveEmphasizeMiddle  Curve = "emphasizeMiddle"
	CurveEmphasizeEnds    Curve = "emphasizeEnds"
	CurveAccessibilityAA  Curve = "accessibility-AA"
	CurveAccessibilityAAA Curve = "accessibility-AAA"
)

// Curves returns every supported curve in display order.
func Curves() []Curve {
	return []Curve{
		CurveLinear,
		CurveExponential,
		CurveLogarithmic,
		CurveEmphasizeMiddle,
		CurveEmphasizeEnds,
		CurveAccessibilityAA,
		CurveAccessibilityAAA,
	}
}

// Valid reports whether c is one of the supported curves.
func (c Curve) Valid() bool {
	return slices.Contains(Curves(), c)
}

// ParseCurve resolves a curve name case-insensitively.
// An empty name selects CurveLinear.
func ParseCurve(name string) (Curve, error) {
	if name == "" {
		return CurveLinear, nil
	}
	for _, c := range Curves() {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown curve %q (valid: %s)", name, curveNames())
}

func curveNames() string {
	names := make([]string, 0, len(Curves()))
	for _, c := range Curves() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// Lightness bounds of the smooth curves.
const (
	rampLightest = 0.98
	rampRange    = 0.85
)

// CurveLightness returns the target lightness for step (1-based) of a ramp with
// totalSteps steps. Step 1 is the lightest end.
// Unrecognised curves use the linear distribution.
func CurveLightness(step, totalSteps int, curve Curve) (float64, error) {
	if totalSteps < 2 {
		return 0, fmt.Errorf("%w: need at least 2 steps, got %d", ErrInvalidStepCount, totalSteps)
	}
	if step < 1 || step > totalSteps {
		return 0, fmt.Errorf("%w: step %d outside 1..%d", ErrInvalidStepCount, step, totalSteps)
	}

	t := float64(step-1) / float64(totalSteps-1)
	return clamp01(lightnessAt(t, curve)), nil
}

// lightnessAt maps a normalised position t in [0, 1] to lightness.
func lightnessAt(t float64, curve Curve) float64 {
	switch curve {
	case CurveExponential:
		return rampLightest - rampRange*math.Pow(t, 1.8)
	case CurveLogarithmic:
		return rampLightest - rampRange*math.Pow(t, 0.7)
	case CurveEmphasizeMiddle:
		return rampLightest - rampRange*(0.5-0.5*math.Cos(t*math.Pi))
	case CurveEmphasizeEnds:
		return rampLightest - rampRange*4*t*t*(1-t)
	case CurveAccessibilityAA:
		switch {
		case t < 0.3:
			return 0.95 - 0.4*t
		case t > 0.7:
			return 0.35 - 0.3*(t-0.7)
		default:
			return 0.75 - 0.7*(t-0.3)
		}
	case CurveAccessibilityAAA:
		switch {
		case t < 0.3:
			return 0.97 - 0.3*t
		case t > 0.7:
			return 0.3 - 0.25*(t-0.7)
		default:
			return 0.77 - 0.8*(t-0.3)
		}
	default:
		return rampLightest - rampRange*t
	}
}

// GenerateRamp builds a StepCount-step scale from base.
// Only the hue and saturation of base are kept; each step's lightness comes from curve.
func GenerateRamp(base RGB, curve Curve) Scale {
	h, s, _ := rgbToHSL(base)

	scale := make(Scale, StepCount)
	for step := 1; step <= StepCount; step++ {
		t := float64(step-1) / float64(StepCount-1)
		scale[step] = HSLToRGB(h, s, clamp01(lightnessAt(t, curve)))
	}
	return scale
}

// GenerateRampHex parses base and builds its scale.
func GenerateRampHex(base string, curve Curve) (Scale, error) {
	rgb, err := ParseHex(base)
	if err != nil {
		return nil, err
	}
	return GenerateRamp(rgb, curve), nil
}

// Scale maps a ramp step (1 = lightest) to its colour.
type Scale map[int]RGB

// Steps returns the scale's steps in ascending order.
func (s Scale) Steps() []int {
	steps := make([]int, 0, len(s))
	for step := range s {
		steps = append(steps, step)
	}
	slices.Sort(steps)
	return steps
}

// Get returns the colour at step.
func (s Scale) Get(step int) (RGB, bool) {
	c, ok := s[step]
	return c, ok
}

// Hex returns the scale as step to hex string.
func (s Scale) Hex() map[int]string {
	out := make(map[int]string, len(s))
	for step, c := range s {
		out[step] = c.Hex()
	}
	return out
}

// Clone returns a copy of the scale.
func (s Scale) Clone() Scale {
	if s == nil {
		return nil
	}
	out := make(Scale, len(s))
	for step, c := range s {
		out[step] = c
	}
	return out
}

// Validate checks that the scale holds exactly steps 1..StepCount.
func (s Scale) Validate() error {
	if len(s) != StepCount {
		return fmt.Errorf("%w: scale has %d steps, want %d", ErrInvalidStepCount, len(s), StepCount)
	}
	for step := 1; step <= StepCount; step++ {
		if _, ok := s[step]; !ok {
			return fmt.Errorf("%w: scale is missing step %d", ErrInvalidStepCount, step)
		}
	}
	return nil
}

// String returns a human-readable listing of the scale.
func (s Scale) String() string {
	if len(s) == 0 {
		return "Empty scale"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scale with %d steps:\n", len(s))
	for _, step := range s.Steps() {
		c := s[step]
		fmt.Fprintf(&b, "  %2d: %s (%s)\n", step, c.Hex(), c.String())
	}
	return b.String()
}
