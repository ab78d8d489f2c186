// Package export renders brands into files consumed by web and design tooling.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
)

//go:embed *.tmpl
var templates embed.FS

const (
	cssTemplate      = "css.tmpl"
	tailwindTemplate = "tailwind.config.js.tmpl"
)

// Format is an export target.
type Format string

const (
	FormatCSS      Format = "css"
	FormatTailwind Format = "tailwind"
	FormatJSON     Format = "json"
	FormatPNG      Format = "png"
)

// Formats lists every export format.
func Formats() []Format {
	return []Format{FormatCSS, FormatTailwind, FormatJSON, FormatPNG}
}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if !lo.Contains(Formats(), f) {
		return "", fmt.Errorf("invalid format: %s (must be one of %s)", name,
			strings.Join(lo.Map(Formats(), func(f Format, _ int) string { return string(f) }), ", "))
	}
	return f, nil
}

// tailwindKeys maps ramp steps onto Tailwind shade keys, lightest first.
var tailwindKeys = map[int]string{
	1: "25", 2: "50", 3: "100", 4: "200", 5: "300", 6: "400",
	7: "500", 8: "600", 9: "700", 10: "800", 11: "900", 12: "950",
}

// File is a rendered export.
type File struct {
	Name string
	Data []byte
}

// Generate renders b in the given format with the embedded templates.
func Generate(b brand.Brand, format Format) (File, error) {
	return NewGenerator(nil, "", nil).Generate(b, format)
}

// Generate renders b in the given format.
func (g *Generator) Generate(b brand.Brand, format Format) (File, error) {
	if b.Scale == nil {
		b.Scale = b.Ramp()
	}
	if err := b.Scale.Validate(); err != nil {
		return File{}, fmt.Errorf("brand %s has an invalid scale: %w", b.Name, err)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSS:
		data, err = g.render(cssTemplate, b)
	case FormatTailwind:
		data, err = g.render(tailwindTemplate, b)
	case FormatJSON:
		data, err = MarshalDocument(NewDocument(b))
	case FormatPNG:
		data, err = Swatches(b.Scale)
	default:
		return File{}, fmt.Errorf("invalid format: %s", format)
	}
	if err != nil {
		return File{}, err
	}
	return File{Name: FileName(b.Name, format), Data: data}, nil
}

// FileName is the default output name for a brand export.
func FileName(brandName string, format Format) string {
	slug := Slug(brandName)
	switch format {
	case FormatTailwind:
		return "tailwind.config.js"
	case FormatPNG:
		return slug + "-swatches.png"
	default:
		return slug + "." + string(format)
	}
}

// Slug turns a brand name into a file and identifier friendly form.
func Slug(name string) string {
	slug := lo.KebabCase(name)
	if slug == "" {
		return "brand"
	}
	return slug
}

type stepData struct {
	Step int
	Key  string
	Hex  string
}

type templateData struct {
	Name       string
	Primary    string
	FontFamily string
	Steps      []stepData
	Sizes      []brand.TypeSize
}

func newTemplateData(b brand.Brand) templateData {
	return templateData{
		Name:       b.Name,
		Primary:    b.PrimaryColor,
		FontFamily: b.Typography.FontFamily,
		Steps: lo.Map(b.Scale.Steps(), func(step int, _ int) stepData {
			return stepData{Step: step, Key: tailwindKeys[step], Hex: b.Scale[step].Hex()}
		}),
		Sizes: b.Typography.Sizes(),
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"px": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64) + "px"
		},
		"quote":   quote,
		"comment": comment,
		"readable": func(hex string) (string, error) {
			c, err := colour.ParseHex(hex)
			if err != nil {
				return "", err
			}
			return colour.ReadableText(c).Hex(), nil
		},
	}
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, "'", `\'`, "\r", " ", "\n", " ", "\u2028", " ", "\u2029", " ")

// quote renders s as a single-quoted string literal valid in both CSS and JS.
func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}

// comment makes s safe inside a /* */ or // comment.
func comment(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "\u2028", " ", "\u2029", " ").Replace(s)
	for strings.Contains(s, "*/") {
		s = strings.ReplaceAll(s, "*/", "")
	}
	return s
}

func (g *Generator) render(name string, b brand.Brand) ([]byte, error) {
	content, err := g.loadTemplate(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTemplateData(b)); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
