package brand

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// FileName is the document FileStore keeps under its directory.
const FileName = "brands.json"

const fileVersion = 1

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version int     `json:"version"`
	Active  string  `json:"active,omitempty"`
	Brands  []Brand `json:"brands"`
}

// FileStore is a Store backed by a single JSON document.
// It is the local fallback for the hosted store.
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Afero
	path string
}

// NewFileStore creates a FileStore writing dir/brands.json on fs.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{
		fs:   afero.Afero{Fs: fs},
		path: filepath.Join(dir, FileName),
	}
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) List(_ context.Context) ([]Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sortBrands(doc.Brands)
	return doc.Brands, nil
}

func (s *FileStore) Get(_ context.Context, id string) (Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Brand{}, err
	}
	b, ok := lo.Find(doc.Brands, func(b Brand) bool { return b.ID == id })
	if !ok {
		return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	return b, nil
}

func (s *FileStore) Save(_ context.Context, b Brand) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	_, idx, found := lo.FindIndexOf(doc.Brands, func(existing Brand) bool { return existing.ID == b.ID })
	if found {
		doc.Brands[idx] = b
	} else {
		doc.Brands = append(doc.Brands, b)
	}
	return s.store(doc)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	kept := lo.Reject(doc.Brands, func(b Brand, _ int) bool { return b.ID == id })
	if len(kept) == len(doc.Brands) {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	doc.Brands = kept
	if doc.Active == id {
		doc.Active = ""
	}
	return s.store(doc)
}

func (s *FileStore) Active(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	return doc.Active, nil
}

func (s *FileStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if !lo.ContainsBy(doc.Brands, func(b Brand) bool { return b.ID == id }) {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	doc.Active = id
	return s.store(doc)
}

func (s *FileStore) Close() error { return nil }

// load reads the document. A missing file is an empty store.
func (s *FileStore) load() (fileDocument, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileDocument{Version: fileVersion}, nil
		}
		return fileDocument{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc.Version > fileVersion {
		return fileDocument{}, fmt.Errorf("%s has unsupported version %d", s.path, doc.Version)
	}
	return doc, nil
}

// store writes the document through a temporary file and rename.
func (s *FileStore) store(doc fileDocument) error {
	doc.Version = fileVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode brands: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
