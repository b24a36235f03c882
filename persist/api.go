package persist

import (
	"context"
	"errors"
	"fmt"
)

// ErrCorrupt reports persisted state that cannot be read back or whose parts
// disagree with each other.
var ErrCorrupt = errors.New("persist: corrupt store data")

// VideoIDKey is the metadata key every record carries.
const VideoIDKey = "video_id"

// Snapshot is the full persisted state. Metadata[i] describes Embeddings[i].
type Snapshot struct {
	Dim        int
	Embeddings [][]float32
	Metadata   []map[string]any
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.Embeddings) }

// Check verifies the snapshot invariants: parallel lengths, one dimension for
// every row and a string video_id in every record.
func (s *Snapshot) Check() error {
	if len(s.Embeddings) != len(s.Metadata) {
		return fmt.Errorf("%w: %d embeddings but %d metadata records", ErrCorrupt, len(s.Embeddings), len(s.Metadata))
	}
	if len(s.Embeddings) == 0 {
		if s.Dim != 0 {
			return fmt.Errorf("%w: empty store with dimension %d", ErrCorrupt, s.Dim)
		}
		return nil
	}
	for i, row := range s.Embeddings {
		if len(row) != s.Dim {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrCorrupt, i, len(row), s.Dim)
		}
	}
	for i, rec := range s.Metadata {
		if id, ok := rec[VideoIDKey].(string); !ok || id == "" {
			return fmt.Errorf("%w: metadata record %d has no %s", ErrCorrupt, i, VideoIDKey)
		}
	}
	return nil
}

// Backend persists snapshots. Save always writes the complete state,
// overwriting whatever was stored before.
type Backend interface {
	// Load returns the stored snapshot, or an empty one when nothing has been
	// persisted yet. Unreadable or inconsistent data yields ErrCorrupt.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored state with snap.
	Save(ctx context.Context, snap *Snapshot) error

	// Name identifies the backend kind ("files" or "sqlite").
	Name() string

	// Paths lists the files backing the store.
	Paths() []string

	// Close releases resources held by the backend.
	Close() error
}
