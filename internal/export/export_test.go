package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
)

func testBrand() brand.Brand {
	return brand.Brand{
		ID:           "b1",
		Name:         "Sport Line",
		PrimaryColor: "#e11d48",
		Curve:        colour.CurveLinear,
		Typography:   brand.DefaultTypography(),
		Scale:        colour.GenerateRamp(colour.MustParseHex("#e11d48"), colour.CurveLinear),
		CreatedAt:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "css", want: FormatCSS},
		{input: "Tailwind", want: FormatTailwind},
		{input: " json ", want: FormatJSON},
		{input: "png", want: FormatPNG},
		{input: "scss", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{format: FormatCSS, want: "sport-line.css"},
		{format: FormatJSON, want: "sport-line.json"},
		{format: FormatTailwind, want: "tailwind.config.js"},
		{format: FormatPNG, want: "sport-line-swatches.png"},
	}
	for _, tt := range tests {
		if got := FileName("Sport Line", tt.format); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}
	if got := Slug("  "); got != "brand" {
		t.Errorf("Slug(blank) = %q, want brand", got)
	}
}

func TestGenerateCSS(t *testing.T) {
	b := testBrand()
	file, err := Generate(b, FormatCSS)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	content := string(file.Data)
	expected := []string{
		":root {",
		"--brand-1: " + b.Scale[1].Hex() + ";",
		"--brand-12: " + b.Scale[12].Hex() + ";",
		"--brand-primary: #e11d48;",
		"--brand-primary-foreground: #ffffff;",
		"--font-family-brand: 'Inter', sans-serif;",
		"--font-size-base: 16px;",
		"--font-size-3xl: 39.06px;",
	}
	for _, want := range expected {
		if !strings.Contains(content, want) {
			t.Errorf("CSS missing %q\n%s", want, content)
		}
	}
	if strings.Count(content, "--brand-") != 14 {
		t.Errorf("CSS should declare 12 steps plus primary and foreground, got:\n%s", content)
	}
}

func TestGenerateTailwind(t *testing.T) {
	b := testBrand()
	file, err := Generate(b, FormatTailwind)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if file.Name != "tailwind.config.js" {
		t.Errorf("Name = %q", file.Name)
	}

	content := string(file.Data)
	expected := []string{
		"module.exports = {",
		"DEFAULT: '#e11d48',",
		"25: '" + b.Scale[1].Hex() + "',",
		"500: '" + b.Scale[7].Hex() + "',",
		"950: '" + b.Scale[12].Hex() + "',",
		"brand: ['Inter', 'sans-serif'],",
		"'xl': '25px',",
	}
	for _, want := range expected {
		if !strings.Contains(content, want) {
			t.Errorf("config missing %q\n%s", want, content)
		}
	}
}

func TestGenerateEscapesBrandText(t *testing.T) {
	b := testBrand()
	b.Name = "Acme */ body { display: none } /*\nmodule.exports = 1;"
	b.Typography.FontFamily = `Font\`

	css, err := Generate(b, FormatCSS)
	if err != nil {
		t.Fatalf("Generate(css) error = %v", err)
	}
	lines := strings.Split(string(css.Data), "\n")
	if strings.Count(lines[0], "*/") != 1 || !strings.HasSuffix(lines[0], "*/") {
		t.Errorf("css header comment closes early: %q", lines[0])
	}
	if strings.Contains(string(css.Data), "\nbody") || !strings.HasPrefix(lines[1], ":root {") {
		t.Errorf("brand name leaked out of the css comment:\n%s", css.Data)
	}
	if !strings.Contains(string(css.Data), `--font-family-brand: 'Font\\', sans-serif;`) {
		t.Errorf("font family not escaped:\n%s", css.Data)
	}

	tw, err := Generate(b, FormatTailwind)
	if err != nil {
		t.Fatalf("Generate(tailwind) error = %v", err)
	}
	lines = strings.Split(string(tw.Data), "\n")
	if !strings.HasPrefix(lines[1], "// Acme") || !strings.HasPrefix(lines[2], "module.exports = {") {
		t.Errorf("brand name leaked out of the js comment:\n%s", tw.Data)
	}
	if !strings.Contains(string(tw.Data), `brand: ['Font\\', 'sans-serif'],`) {
		t.Errorf("font family not escaped:\n%s", tw.Data)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Inter", want: `'Inter'`},
		{in: "O'Brien Sans", want: `'O\'Brien Sans'`},
		{in: `Font\`, want: `'Font\\'`},
		{in: "Two\nLines", want: `'Two Lines'`},
		{in: "Sep\u2028arated", want: `'Sep arated'`},
	}

	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "MyMoto", want: "MyMoto"},
		{in: "a */ b", want: "a  b"},
		{in: "a **// b", want: "a  b"},
		{in: "one\r\ntwo", want: "one  two"},
	}

	for _, tt := range tests {
		if got := comment(tt.in); got != tt.want {
			t.Errorf("comment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateFillsMissingScale(t *testing.T) {
	b := testBrand()
	b.Scale = nil

	file, err := Generate(b, FormatCSS)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := colour.GenerateRamp(colour.MustParseHex("#e11d48"), colour.CurveLinear)[6].Hex()
	if !strings.Contains(string(file.Data), "--brand-6: "+want) {
		t.Errorf("generated scale not used:\n%s", file.Data)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	b := testBrand()
	if _, err := Generate(b, Format("scss")); err == nil {
		t.Error("Generate() with an unknown format should fail")
	}

	delete(b.Scale, 4)
	if _, err := Generate(b, FormatCSS); err == nil {
		t.Error("Generate() with an incomplete scale should fail")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	b := testBrand()
	b.Scale[6] = colour.MustParseHex("#123456")

	file, err := Generate(b, FormatJSON)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.Contains(file.Data, []byte(`"primaryColor": "#e11d48"`)) {
		t.Errorf("JSON missing primary colour:\n%s", file.Data)
	}

	for _, compress := range []bool{false, true} {
		data := file.Data
		if compress {
			compressed, err := CompressFile(file)
			if err != nil {
				t.Fatalf("CompressFile() error = %v", err)
			}
			if compressed.Name != "sport-line.json.xz" {
				t.Errorf("compressed name = %q", compressed.Name)
			}
			if !bytes.HasPrefix(compressed.Data, xzMagic) {
				t.Fatal("compressed data lacks the xz header")
			}
			data = compressed.Data
		}

		doc, err := ReadDocument(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("ReadDocument(compressed=%v) error = %v", compress, err)
		}
		if doc.Name != "Sport Line" || doc.Curve != colour.CurveLinear {
			t.Errorf("ReadDocument() = %+v", doc)
		}
		if doc.Scale[6].Hex() != "#123456" {
			t.Errorf("ReadDocument() step 6 = %s, want #123456", doc.Scale[6].Hex())
		}

		params := doc.Params()
		if params.PrimaryColor != "#e11d48" || params.Typography != b.Typography || len(params.Scale) != colour.StepCount {
			t.Errorf("Params() = %+v", params)
		}
	}
}

func TestDocumentContrast(t *testing.T) {
	doc := NewDocument(testBrand())
	if len(doc.Contrast) != colour.StepCount {
		t.Fatalf("Contrast has %d entries, want %d", len(doc.Contrast), colour.StepCount)
	}

	first, last := doc.Contrast[0], doc.Contrast[colour.StepCount-1]
	if first.Step != 1 || last.Step != colour.StepCount {
		t.Errorf("steps = %d..%d, want 1..%d", first.Step, last.Step, colour.StepCount)
	}
	// The lightest step reads on black, the darkest on white.
	if !first.OnBlack.AA || first.OnWhite.AA {
		t.Errorf("step 1 contrast = %+v / %+v", first.OnWhite, first.OnBlack)
	}
	if !last.OnWhite.AA || last.OnBlack.AA {
		t.Errorf("step 12 contrast = %+v / %+v", last.OnWhite, last.OnBlack)
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "{nope"},
		{name: "wrong version", input: `{"version": 2, "primaryColor": "#ffffff"}`},
		{name: "bad colour", input: `{"version": 1, "primaryColor": "red"}`},
		{name: "too large", input: `{"version": 1, "name": "` + strings.Repeat("x", MaxDocumentSize) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadDocument(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadDocument() should fail")
			}
		})
	}
}

func TestSwatches(t *testing.T) {
	b := testBrand()
	file, err := Generate(b, FormatPNG)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if got := img.Bounds(); got.Dx() != SwatchSize*colour.StepCount || got.Dy() != SwatchSize {
		t.Fatalf("bounds = %v, want %dx%d", got, SwatchSize*colour.StepCount, SwatchSize)
	}

	for i, step := range b.Scale.Steps() {
		r, g, bl, _ := img.At(i*SwatchSize+4, SwatchSize/2).RGBA()
		want := b.Scale[step]
		if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
			t.Errorf("tile %d = #%02x%02x%02x, want %s", step, r>>8, g>>8, bl>>8, want.Hex())
		}
	}

	// Labels draw ink inside the first tile.
	inked := false
	for x := 0; x < SwatchSize && !inked; x++ {
		for y := SwatchSize - 22; y < SwatchSize-6; y++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			c := b.Scale[1]
			if uint8(r>>8) != c.R || uint8(g>>8) != c.G || uint8(bl>>8) != c.B {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("no label drawn on the first swatch")
	}

	if _, err := Swatches(colour.Scale{}); err == nil {
		t.Error("Swatches() with an empty scale should fail")
	}
}
