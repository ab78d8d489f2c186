package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mymoto/themekit/internal/colour"
)

// errCheckFailed marks a colour pair below the requested level.
var errCheckFailed = errors.New("contrast check failed")

var (
	// Check command flags
	checkLevel string
	checkFix   bool

	// Convert command flags
	convertHSL string
)

func newContrastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contrast <color> <color>",
		Short: "Show the WCAG contrast ratio of two colours",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parsePair(args)
			if err != nil {
				return err
			}
			res := colour.Contrast(a, b)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ratio: %.2f:1\n", res.Ratio)
			fmt.Fprintf(out, "AA  (%.1f:1): %s\n", colour.MinContrastAA, passFail(res.AA))
			fmt.Fprintf(out, "AAA (%.1f:1): %s\n", colour.MinContrastAAA, passFail(res.AAA))
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <foreground> <background>",
		Short: "Check a text colour against a background",
		Long: `Check whether a foreground colour is readable on a background at a WCAG level.

The command fails when the pair is below the level. With --fix it suggests the
closest foreground of the same hue that passes.

Examples:
  themekit check "#777777" "#ffffff"
  themekit check "#e11d48" "#000000" --level AAA --fix`,
		Args: cobra.ExactArgs(2),
		RunE: runCheck,
	}
	cmd.Flags().StringVarP(&checkLevel, "level", "l", "AA", "WCAG level (AA, AAA)")
	cmd.Flags().BoolVar(&checkFix, "fix", false, "suggest a compliant foreground colour")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	fg, bg, err := parsePair(args)
	if err != nil {
		return err
	}
	level, err := colour.ParseLevel(checkLevel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res := colour.Contrast(fg, bg)
	if colour.MeetsAccessibilityStandard(fg, bg, level) {
		fmt.Fprintf(out, "PASS %s: %.2f:1 (minimum %.1f:1)\n", level, res.Ratio, level.MinRatio())
		return nil
	}

	fmt.Fprintf(out, "FAIL %s: %.2f:1 (minimum %.1f:1)\n", level, res.Ratio, level.MinRatio())
	if checkFix {
		fixed, ok := colour.EnsureContrast(fg, bg, level.MinRatio())
		if ok {
			fmt.Fprintf(out, "suggested foreground: %s (%.2f:1)\n", fixed.Hex(), colour.ContrastRatio(fixed, bg))
		} else {
			fmt.Fprintf(out, "no foreground of this hue reaches %s on %s; closest is %s (%.2f:1)\n",
				level, bg.Hex(), fixed.Hex(), colour.ContrastRatio(fixed, bg))
		}
	}
	return fmt.Errorf("%w: %s on %s", errCheckFailed, fg.Hex(), bg.Hex())
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [hex]",
		Short: "Convert between hex and HSL",
		Long: `Convert a hex colour to RGB and HSL, or an HSL triple to hex.

Saturation and lightness accept fractions (0.65) or percentages (65%).

Examples:
  themekit convert "#3a7bd5"
  themekit convert --hsl 215,65%,53%`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConvert,
	}
	cmd.Flags().StringVar(&convertHSL, "hsl", "", "HSL triple h,s,l to convert to hex")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if convertHSL != "" {
		if len(args) > 0 {
			return fmt.Errorf("give either a hex colour or --hsl, not both")
		}
		hsl, err := parseHSL(convertHSL)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, colour.HSLToHex(hsl.H, hsl.S, hsl.L))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("a hex colour or --hsl is required")
	}
	c, err := colour.ParseHex(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "hex: %s\nrgb: %s\nhsl: %s\n", c.Hex(), c, c.HSL())
	return nil
}

func parsePair(args []string) (colour.RGB, colour.RGB, error) {
	a, err := colour.ParseHex(args[0])
	if err != nil {
		return colour.RGB{}, colour.RGB{}, err
	}
	b, err := colour.ParseHex(args[1])
	if err != nil {
		return colour.RGB{}, colour.RGB{}, err
	}
	return a, b, nil
}

// parseHSL reads "h,s,l" where s and l are fractions or percentages.
func parseHSL(s string) (colour.HSL, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colour.HSL{}, fmt.Errorf("invalid HSL %q: want h,s,l", s)
	}

	values := make([]float64, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		percent := strings.HasSuffix(part, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(part, "%"), 64)
		if err != nil {
			return colour.HSL{}, fmt.Errorf("invalid HSL %q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return colour.HSL{}, fmt.Errorf("invalid HSL %q: components must be finite", s)
		}
		if i > 0 && (percent || v > 1) {
			v /= 100
		}
		values[i] = v
	}
	return colour.HSL{H: values[0], S: values[1], L: values[2]}, nil
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
