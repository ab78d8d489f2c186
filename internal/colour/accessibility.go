package colour

import (
	"fmt"
	"strings"
)

// WCAG 2.0 minimum contrast ratios for normal text.
const (
	MinContrastAA  = 4.5
	MinContrastAAA = 7.0
)

// Level is a WCAG conformance level.
type Level string

const (
	LevelAA  Level = "AA"
	LevelAAA Level = "AAA"
)

// ParseLevel resolves a level name case-insensitively. An empty name selects LevelAA.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "AA":
		return LevelAA, nil
	case "AAA":
		return LevelAAA, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: AA, AAA)", ErrInvalidLevel, name)
	}
}

// MinRatio returns the contrast ratio required by the level.
// Anything other than LevelAAA is treated as AA.
func (l Level) MinRatio() float64 {
	if l == LevelAAA {
		return MinContrastAAA
	}
	return MinContrastAA
}

// MeetsAccessibilityStandard reports whether fg on bg reaches the level's contrast ratio.
func MeetsAccessibilityStandard(fg, bg RGB, level Level) bool {
	return ContrastRatio(fg, bg) >= level.MinRatio()
}

// MeetsAccessibilityStandardHex is MeetsAccessibilityStandard over hex strings.
func MeetsAccessibilityStandardHex(fg, bg string, level Level) (bool, error) {
	ratio, err := ContrastRatioHex(fg, bg)
	if err != nil {
		return false, err
	}
	return ratio >= level.MinRatio(), nil
}

// ContrastResult is the contrast between two colours and its WCAG compliance.
type ContrastResult struct {
	Foreground RGB     `json:"foreground"`
	Background RGB     `json:"background"`
	Ratio      float64 `json:"ratio"`
	AA         bool    `json:"aa"`
	AAA        bool    `json:"aaa"`
}

// Contrast evaluates fg against bg.
func Contrast(fg, bg RGB) ContrastResult {
	ratio := ContrastRatio(fg, bg)
	return ContrastResult{
		Foreground: fg,
		Background: bg,
		Ratio:      ratio,
		AA:         ratio >= MinContrastAA,
		AAA:        ratio >= MinContrastAAA,
	}
}

// String returns the result as "fg on bg: 4.54:1 (AA pass, AAA fail)".
func (r ContrastResult) String() string {
	return fmt.Sprintf("%s on %s: %.2f:1 (AA %s, AAA %s)",
		r.Foreground.Hex(), r.Background.Hex(), r.Ratio, passFail(r.AA), passFail(r.AAA))
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

// ContrastMatrix evaluates every step of scale against each background, keyed by step.
func ContrastMatrix(scale Scale, backgrounds ...RGB) map[int][]ContrastResult {
	out := make(map[int][]ContrastResult, len(scale))
	for _, step := range scale.Steps() {
		results := make([]ContrastResult, 0, len(backgrounds))
		for _, bg := range backgrounds {
			results = append(results, Contrast(scale[step], bg))
		}
		out[step] = results
	}
	return out
}
