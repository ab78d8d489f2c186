package colour

import (
	"math"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c RGB) float64 {
	r := gammaCorrect(float64(c.R) / 255.0)
	g := gammaCorrect(float64(c.G) / 255.0)
	b := gammaCorrect(float64(c.B) / 255.0)

	return 0.2126*r + 0.7152*g + 0.0722*b
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
// The result does not depend on argument order.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 RGB) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// ContrastRatioHex is ContrastRatio over hex strings.
func ContrastRatioHex(a, b string) (float64, error) {
	ca, err := ParseHex(a)
	if err != nil {
		return 0, err
	}
	cb, err := ParseHex(b)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(ca, cb), nil
}

// HueDistance calculates the angular distance between two hues on the color wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Abs(normaliseHue(h1) - normaliseHue(h2))
	if diff > 180 {
		diff = 360 - diff // Handle wraparound
	}
	return diff
}

// rgbToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func rgbToHSL(rgb RGB) (h, s, l float64) {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	// Lightness.
	l = (maxVal + minVal) / 2.0

	// Achromatic.
	if delta == 0 {
		return 0, 0, l
	}

	// Saturation.
	if l > 0.5 {
		s = delta / (2.0 - maxVal - minVal)
	} else {
		s = delta / (maxVal + minVal)
	}

	// Hue.
	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}

	h *= 60
	return h, s, l
}

// HSLToRGB converts HSL to RGB colour space.
// h is hue in degrees and wraps, s is saturation (0-1), l is lightness (0-1).
// Out of range s and l are clamped and NaN components are treated as 0.
func HSLToRGB(h, s, l float64) RGB {
	h = normaliseHue(h)
	s = clamp01(s)
	l = clamp01(l)

	if s == 0 {
		// Achromatic (grey).
		v := toChannel(l)
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return RGB{
		R: toChannel(hueToRGB(p, q, h+120)),
		G: toChannel(hueToRGB(p, q, h)),
		B: toChannel(hueToRGB(p, q, h-120)),
	}
}

// hueToRGB is a helper for HSL to RGB conversion.
// It traces the trapezoidal channel profile over the hue circle in 60° segments.
func hueToRGB(p, q, t float64) float64 {
	t = normaliseHue(t)

	if t < 60 {
		return p + (q-p)*t/60
	}
	if t < 180 {
		return q
	}
	if t < 240 {
		return p + (q-p)*(240-t)/60
	}
	return p
}

// normaliseHue wraps a hue into [0, 360). Non-finite hues become 0.
func normaliseHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// toChannel rounds a [0, 1] component to the nearest 8-bit value.
func toChannel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// clamp01 limits v to [0, 1]; NaN becomes 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// EnsureContrast adjusts the lightness of fg, keeping its hue and saturation,
// until it reaches minContrast against bg.
// It first moves away from the background (lighter on dark backgrounds, darker on light ones),
// then tries the opposite direction. The bool reports whether the target was met;
// when it was not, the highest-contrast candidate seen is returned.
func EnsureContrast(fg, bg RGB, minContrast float64) (RGB, bool) {
	const stepSize = 0.01

	if ContrastRatio(fg, bg) >= minContrast {
		return fg, true
	}

	h, s, l := rgbToHSL(fg)
	best := fg
	bestRatio := ContrastRatio(fg, bg)

	directions := []float64{-stepSize, stepSize}
	if Luminance(bg) < 0.18 {
		directions = []float64{stepSize, -stepSize}
	}

	for _, d := range directions {
		for i := 1; ; i++ {
			target := l + float64(i)*d
			last := target <= 0 || target >= 1
			candidate := HSLToRGB(h, s, clamp01(target))
			ratio := ContrastRatio(candidate, bg)
			if ratio >= minContrast {
				return candidate, true
			}
			if ratio > bestRatio {
				best, bestRatio = candidate, ratio
			}
			if last {
				break
			}
		}
	}

	return best, false
}
