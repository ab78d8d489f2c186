package brand

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mymoto/themekit/internal/colour"
)

const activeBrandKey = "active_brand"

// Postgres error codes handled explicitly.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// OpenPostgres opens a PostgreSQL connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not establish connection with database: %w", err)
	}
	return db, nil
}

// PostgresStore is a Store backed by PostgreSQL, the hosted store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the brand tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS brands (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL UNIQUE,
			primary_color TEXT NOT NULL,
			curve         TEXT NOT NULL,
			is_default    BOOLEAN NOT NULL DEFAULT FALSE,
			typography    JSONB NOT NULL,
			scale         JSONB,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS brand_settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate brand tables: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) List(ctx context.Context) ([]Brand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, primary_color, curve, is_default, typography, scale, created_at, updated_at
		FROM brands`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	sortBrands(brands)
	return brands, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Brand, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, primary_color, curve, is_default, typography, scale, created_at, updated_at
		FROM brands
		WHERE id = $1`, id)

	b, err := scanBrand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Brand{}, fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	return b, err
}

func (s *PostgresStore) Save(ctx context.Context, b Brand) error {
	if err := b.Validate(); err != nil {
		return err
	}

	typography, err := json.Marshal(b.Typography)
	if err != nil {
		return fmt.Errorf("failed to encode typography: %w", err)
	}
	// lib/pq sends []byte as bytea, so JSONB columns take strings.
	var scale any
	if b.Scale != nil {
		data, err := json.Marshal(b.Scale)
		if err != nil {
			return fmt.Errorf("failed to encode scale: %w", err)
		}
		scale = string(data)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, primary_color, curve, is_default, typography, scale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			primary_color = EXCLUDED.primary_color,
			curve = EXCLUDED.curve,
			is_default = EXCLUDED.is_default,
			typography = EXCLUDED.typography,
			scale = EXCLUDED.scale,
			updated_at = EXCLUDED.updated_at`,
		b.ID, b.Name, b.PrimaryColor, string(b.Curve), b.IsDefault, string(typography), scale, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: a brand named %q already exists", ErrInvalidBrand, b.Name)
		}
		return fmt.Errorf("failed to save brand: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Active(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM brand_settings WHERE key = $1`, activeBrandKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active brand: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brand_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, activeBrandKey, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("%w: %s", ErrBrandNotFound, id)
		}
		return fmt.Errorf("failed to set active brand: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrand(row rowScanner) (Brand, error) {
	var (
		b          Brand
		curve      string
		typography []byte
		scale      []byte
	)
	err := row.Scan(&b.ID, &b.Name, &b.PrimaryColor, &curve, &b.IsDefault, &typography, &scale, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Brand{}, err
		}
		return Brand{}, fmt.Errorf("failed to scan brand: %w", err)
	}

	b.Curve = colour.Curve(curve)
	if err := json.Unmarshal(typography, &b.Typography); err != nil {
		return Brand{}, fmt.Errorf("failed to decode typography of %s: %w", b.ID, err)
	}
	if len(scale) > 0 {
		if err := json.Unmarshal(scale, &b.Scale); err != nil {
			return Brand{}, fmt.Errorf("failed to decode scale of %s: %w", b.ID, err)
		}
	}
	return b, nil
}
