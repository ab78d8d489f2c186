package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/colour"
)

// DocumentVersion is the current JSON export version.
const DocumentVersion = 1

// MaxDocumentSize bounds how much is read from an import, after decompression.
const MaxDocumentSize = 4 << 20

var (
	white = colour.RGB{R: 255, G: 255, B: 255}
	black = colour.RGB{}
)

// xzMagic starts every xz stream.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Document is the JSON form of a brand, with contrast data for each step.
type Document struct {
	Version      int              `json:"version"`
	Name         string           `json:"name"`
	PrimaryColor string           `json:"primaryColor"`
	Curve        colour.Curve     `json:"curve"`
	Typography   brand.Typography `json:"typography"`
	FontSizes    []brand.TypeSize `json:"fontSizes"`
	Scale        colour.Scale     `json:"scale"`
	Contrast     []StepContrast   `json:"contrast"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// StepContrast reports how a ramp step reads against white and black.
type StepContrast struct {
	Step    int                   `json:"step"`
	OnWhite colour.ContrastResult `json:"onWhite"`
	OnBlack colour.ContrastResult `json:"onBlack"`
}

// NewDocument describes b.
func NewDocument(b brand.Brand) Document {
	scale := b.Scale
	if scale == nil {
		scale = b.Ramp()
	}

	matrix := colour.ContrastMatrix(scale, white, black)
	contrast := make([]StepContrast, 0, len(matrix))
	for _, step := range scale.Steps() {
		contrast = append(contrast, StepContrast{
			Step:    step,
			OnWhite: matrix[step][0],
			OnBlack: matrix[step][1],
		})
	}

	return Document{
		Version:      DocumentVersion,
		Name:         b.Name,
		PrimaryColor: b.PrimaryColor,
		Curve:        b.Curve,
		Typography:   b.Typography,
		FontSizes:    b.Typography.Sizes(),
		Scale:        scale,
		Contrast:     contrast,
		UpdatedAt:    b.UpdatedAt,
	}
}

// Params converts an imported document into brand creation parameters.
func (d Document) Params() brand.Params {
	return brand.Params{
		Name:         d.Name,
		PrimaryColor: d.PrimaryColor,
		Curve:        d.Curve,
		Typography:   d.Typography,
		Scale:        d.Scale,
	}
}

// MarshalDocument encodes d as indented JSON.
func MarshalDocument(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadDocument decodes a JSON export, transparently decompressing xz input.
func ReadDocument(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br

	if head, _ := br.Peek(len(xzMagic)); bytes.Equal(head, xzMagic) {
		xzr, err := xz.NewReader(br)
		if err != nil {
			return Document{}, fmt.Errorf("failed to create xz reader: %w", err)
		}
		src = xzr
	}

	data, err := io.ReadAll(newLimitedReader(src, MaxDocumentSize))
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return Document{}, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if _, err := colour.ParseHex(doc.PrimaryColor); err != nil {
		return Document{}, fmt.Errorf("document primary colour: %w", err)
	}
	return doc, nil
}

// Compress wraps data in an xz stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressFile compresses f and appends .xz to its name.
func CompressFile(f File) (File, error) {
	data, err := Compress(f.Data)
	if err != nil {
		return File{}, err
	}
	return File{Name: f.Name + ".xz", Data: data}, nil
}

// errSizeLimit is returned once a limited reader is exhausted.
var errSizeLimit = errors.New("document size limit exceeded")

// limitedReader fails instead of truncating once its budget is spent.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func newLimitedReader(r io.Reader, maxBytes int64) *limitedReader {
	return &limitedReader{r: r, remaining: maxBytes}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// Allow a clean EOF exactly at the limit.
		var probe [1]byte
		if n, err := l.r.Read(probe[:]); n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, errSizeLimit
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
