package brand

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// Backend selects a Store implementation.
type Backend string

const (
	// BackendAuto prefers the hosted store and falls back to the file store.
	BackendAuto     Backend = "auto"
	BackendPostgres Backend = "postgres"
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
)

// Options configures Open.
type Options struct {
	Backend     Backend
	DatabaseURL string
	DataDir     string
	// Fs backs the file store. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Open builds the Store selected by opts.
func Open(ctx context.Context, opts Options, logger hclog.Logger) (Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	switch opts.Backend {
	case BackendMemory:
		logger.Debug("using in-memory brand store")
		return NewMemoryStore(), nil

	case BackendFile:
		return openFile(opts, logger)

	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("store backend %q requires a database URL", opts.Backend)
		}
		return openPostgres(ctx, opts.DatabaseURL, logger)

	case BackendAuto, "":
		local, err := openFile(opts, logger)
		if err != nil {
			return nil, err
		}
		if opts.DatabaseURL == "" {
			logger.Debug("no database configured, using local brand store", "path", local.Path())
			return local, nil
		}

		hosted, err := openPostgres(ctx, opts.DatabaseURL, logger)
		if err != nil {
			logger.Warn("hosted brand store unavailable, using local store", "path", local.Path(), "error", err)
			return local, nil
		}
		logger.Debug("using hosted brand store with local fallback", "path", local.Path())
		return NewFallbackStore(hosted, local, logger), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: auto, postgres, file, memory)", opts.Backend)
	}
}

func openFile(opts Options, logger hclog.Logger) (*FileStore, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("file store requires a data directory")
	}
	store := NewFileStore(opts.Fs, opts.DataDir)
	logger.Debug("opened local brand store", "path", store.Path())
	return store, nil
}

func openPostgres(ctx context.Context, dsn string, logger hclog.Logger) (*PostgresStore, error) {
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	store := NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened hosted brand store")
	return store, nil
}
