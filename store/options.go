package store

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/viant/videostore/persist"
)

// DefaultTopK is the number of results returned when callers have no
// preference.
const DefaultTopK = 5

// BackendFactory builds the persistence backend for a storage directory. It
// runs after the directory exists.
type BackendFactory func(ctx context.Context, dir string) (persist.Backend, error)

// FileBackend is the default factory: embeddings.bin and metadata.json.
func FileBackend(_ context.Context, dir string) (persist.Backend, error) {
	return persist.NewFileBackend(dir), nil
}

// SQLiteBackend stores everything in store.sqlite.
func SQLiteBackend(ctx context.Context, dir string) (persist.Backend, error) {
	return persist.NewSQLiteBackendInDir(ctx, dir)
}

// Option configures Open.
type Option func(*options)

type options struct {
	backend BackendFactory
	logger  zerolog.Logger
}

func defaultOptions() options {
	return options{backend: FileBackend, logger: zerolog.Nop()}
}

// WithBackend selects the persistence backend.
func WithBackend(f BackendFactory) Option {
	return func(o *options) {
		if f != nil {
			o.backend = f
		}
	}
}

// WithLogger sets the logger used for lifecycle and persistence events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}
