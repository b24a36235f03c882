package store

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/videostore/index"
	"github.com/viant/videostore/index/bruteforce"
	"github.com/viant/videostore/persist"
	"github.com/viant/videostore/vector"
)

// Result is one search hit. Index is the insertion position of the matched
// embedding.
type Result struct {
	Index      int            `json:"index"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata"`
}

// Store is the embedding store. All methods are safe for concurrent use: a
// single RWMutex serializes adds, persists and reloads, while searches share
// the read lock.
type Store struct {
	dir     string
	backend persist.Backend
	logger  zerolog.Logger

	mu         sync.RWMutex
	embeddings [][]float32
	metadata   []map[string]any
	// index holds the normalized rows and is the source of Len and Dim.
	index index.Index
}

// Open creates dir when needed and loads any persisted state from it.
func Open(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if dir == "" {
		return nil, wrap("Open", KindConfig, fmt.Errorf("empty storage directory"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("Open", KindConfig, err)
	}
	backend, err := o.backend(ctx, dir)
	if err != nil {
		return nil, wrap("Open", KindConfig, err)
	}
	s := &Store{
		dir:     dir,
		backend: backend,
		logger:  o.logger.With().Str("dir", dir).Str("backend", backend.Name()).Logger(),
		index:   bruteforce.New(),
	}
	if err := s.load(ctx); err != nil {
		_ = backend.Close()
		return nil, wrap("Open", KindLoad, err)
	}
	s.logger.Info().Int("rows", s.index.Len()).Int("dim", s.index.Dim()).Msg("store opened")
	return s, nil
}

// load replaces the in-memory state with the backend content. The caller
// holds the write lock, or has exclusive access during Open.
func (s *Store) load(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	idx := bruteforce.New()
	if err := idx.Build(snap.Embeddings); err != nil {
		return fmt.Errorf("%w: %v", persist.ErrCorrupt, err)
	}
	s.embeddings = snap.Embeddings
	s.metadata = snap.Metadata
	s.index = idx
	return nil
}

// Add appends embedding with the record {video_id, fields...} and persists
// the whole store. Invalid input is rejected before anything changes. When
// persisting fails the append is undone, so memory matches the last
// successful write.
func (s *Store) Add(ctx context.Context, videoID string, embedding []float32, fields map[string]any) error {
	if videoID == "" {
		return wrap("Add", KindValidation, ErrEmptyVideoID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := vector.Validate(embedding, s.index.Dim()); err != nil {
		return wrap("Add", KindValidation, err)
	}
	merged := make(map[string]any, len(fields)+1)
	maps.Copy(merged, fields)
	merged[persist.VideoIDKey] = videoID
	// stored in the form a reload yields, so metadata survives restarts unchanged.
	record, err := persist.NormalizeRecord(merged)
	if err != nil {
		return wrap("Add", KindValidation, fmt.Errorf("metadata is not JSON-encodable: %w", err))
	}

	vec := vector.Embedding(embedding).Clone()
	if err := s.index.Add(vec); err != nil {
		return wrap("Add", KindValidation, err)
	}
	s.embeddings = append(s.embeddings, vec)
	s.metadata = append(s.metadata, record)

	if err := s.persist(ctx); err != nil {
		s.embeddings = s.embeddings[:len(s.embeddings)-1]
		s.metadata = s.metadata[:len(s.metadata)-1]
		s.rebuildIndex()
		s.logger.Error().Err(err).Str("video_id", videoID).Msg("persist after add failed; add rolled back")
		return wrap("Add", KindPersist, err)
	}
	return nil
}

func (s *Store) rebuildIndex() {
	idx := bruteforce.New()
	// rows were validated on the way in.
	_ = idx.Build(s.embeddings)
	s.index = idx
}

// Search returns up to topK results by descending cosine similarity, ties
// broken by ascending insertion index. An empty store yields an empty slice.
func (s *Store) Search(query []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, wrap("Search", KindValidation, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index.Len() == 0 {
		return []Result{}, nil
	}
	if err := vector.Validate(query, s.index.Dim()); err != nil {
		return nil, wrap("Search", KindValidation, err)
	}
	hits, err := s.index.Query(query, topK)
	if err != nil {
		return nil, wrap("Search", KindValidation, err)
	}
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{
			Index:      h.Position,
			Similarity: h.Score,
			Metadata:   persist.CloneRecord(s.metadata[h.Position]),
		}
	}
	return out, nil
}

// Persist writes the full store to the backend, overwriting what was there.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(ctx); err != nil {
		s.logger.Error().Err(err).Msg("persist failed")
		return wrap("Persist", KindPersist, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	return s.backend.Save(ctx, &persist.Snapshot{
		Dim:        s.index.Dim(),
		Embeddings: s.embeddings,
		Metadata:   s.metadata,
	})
}

// Reload re-reads the backend. On failure the in-memory state is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("reload failed; keeping in-memory state")
		return wrap("Reload", KindLoad, err)
	}
	s.logger.Debug().Int("rows", len(s.embeddings)).Msg("store reloaded")
	return nil
}

// Len returns the number of stored embeddings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Dim returns the embedding dimension, or 0 for an empty store.
func (s *Store) Dim() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Dim()
}

// Embedding returns a copy of the i-th embedding.
func (s *Store) Embedding(i int) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.embeddings) {
		return nil, false
	}
	return vector.Embedding(s.embeddings[i]).Clone(), true
}

// Metadata returns a deep copy of the i-th metadata record.
func (s *Store) Metadata(i int) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.metadata) {
		return nil, false
	}
	return persist.CloneRecord(s.metadata[i]), true
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Backend returns the persistence backend, for inspection.
func (s *Store) Backend() persist.Backend { return s.backend }

// Close releases the backend. The store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
