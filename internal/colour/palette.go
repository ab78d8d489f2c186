// Package colour provides colour conversion, ramp generation and WCAG contrast checks.
package colour

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidColorFormat is returned when a string is not a 6-digit hex colour.
	ErrInvalidColorFormat = errors.New("invalid colour format")

	// ErrInvalidStepCount is returned when a ramp is requested with fewer than two steps
	// or a step outside the ramp.
	ErrInvalidStepCount = errors.New("invalid step count")

	// ErrInvalidLevel is returned for an unrecognised accessibility level.
	ErrInvalidLevel = errors.New("invalid accessibility level")
)

// RGB represents a colour in RGB format.
// It serialises as a lowercase "#rrggbb" string.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// HSL converts the colour to HSL colour space.
func (rgb RGB) HSL() HSL {
	h, s, l := rgbToHSL(rgb)
	return HSL{H: h, S: s, L: l}
}

// MarshalText implements encoding.TextMarshaler.
func (rgb RGB) MarshalText() ([]byte, error) {
	return []byte(rgb.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (rgb *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*rgb = parsed
	return nil
}

// ParseHex parses a 6-digit hex colour, with or without a leading '#'.
// Input is case-insensitive.
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(digits) != 6 {
		return RGB{}, fmt.Errorf("%w: %q (want 6 hex digits)", ErrInvalidColorFormat, s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// MustParseHex is like ParseHex but panics on malformed input.
// Intended for package-level colour constants.
func MustParseHex(s string) RGB {
	rgb, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return rgb
}

// NormaliseHex returns the canonical lowercase "#rrggbb" form of s.
func NormaliseHex(s string) (string, error) {
	rgb, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return rgb.Hex(), nil
}

// HSL is a colour in HSL space.
// H is in degrees [0, 360), S and L are in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String returns the HSL colour as "hsl(h, s%, l%)".
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%.1f, %.1f%%, %.1f%%)", c.H, c.S*100, c.L*100)
}

// RGB converts the HSL value back to RGB.
func (c HSL) RGB() RGB {
	return HSLToRGB(c.H, c.S, c.L)
}

// HexToHSL parses a hex colour and converts it to HSL.
func HexToHSL(s string) (HSL, error) {
	rgb, err := ParseHex(s)
	if err != nil {
		return HSL{}, err
	}
	return rgb.HSL(), nil
}

// HSLToHex converts HSL to a lowercase "#rrggbb" string.
func HSLToHex(h, s, l float64) string {
	return HSLToRGB(h, s, l).Hex()
}
