package colour

import (
	"strings"
	"testing"
)

func TestColourPreview(t *testing.T) {
	got := ColourPreview(RGB{R: 255}, 4)
	want := "\033[48;2;255;0;0m    \033[0m"
	if got != want {
		t.Errorf("ColourPreview() = %q, want %q", got, want)
	}

	if got := ColourPreview(RGB{}, 0); !strings.Contains(got, strings.Repeat(" ", defaultWidth)) {
		t.Errorf("ColourPreview() with zero width should use default width, got %q", got)
	}
}

func TestReadableText(t *testing.T) {
	tests := []struct {
		bg   string
		want RGB
	}{
		{bg: "#ffffff", want: black},
		{bg: "#000000", want: white},
		{bg: "#ffff00", want: black},
		{bg: "#1e3a8a", want: white},
	}

	for _, tt := range tests {
		t.Run(tt.bg, func(t *testing.T) {
			if got := ReadableText(MustParseHex(tt.bg)); got != tt.want {
				t.Errorf("ReadableText(%s) = %s, want %s", tt.bg, got.Hex(), tt.want.Hex())
			}
		})
	}
}

func TestColourPreviewWithText(t *testing.T) {
	got := ColourPreviewWithText(RGB{R: 255, G: 255, B: 255}, "ab", 6)
	if !strings.Contains(got, "\033[38;2;0;0;0m  ab  ") {
		t.Errorf("ColourPreviewWithText() = %q, want black centred text", got)
	}

	got = ColourPreviewWithText(RGB{}, "truncated", 4)
	if !strings.Contains(got, "trun\033[0m") {
		t.Errorf("ColourPreviewWithText() = %q, want truncated text", got)
	}
}

func TestFormatScale(t *testing.T) {
	scale := GenerateRamp(MustParseHex("#3a7bd5"), CurveLinear)

	plain := FormatScale(scale, false)
	lines := strings.Split(strings.TrimSuffix(plain, "\n"), "\n")
	if len(lines) != StepCount {
		t.Fatalf("FormatScale() produced %d lines, want %d", len(lines), StepCount)
	}
	if want := " 1  " + scale[1].Hex(); lines[0] != want {
		t.Errorf("first line = %q, want %q", lines[0], want)
	}
	if strings.Contains(plain, "\033[") {
		t.Error("FormatScale() without preview should not emit escape codes")
	}

	if !strings.Contains(FormatScale(scale, true), ansiBgPrefix) {
		t.Error("FormatScale() with preview should emit swatches")
	}
}
