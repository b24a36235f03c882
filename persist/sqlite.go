package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/viant/videostore/engine"
	"github.com/viant/videostore/vector"
)

// SQLiteFile is the database file name used inside a store directory.
const SQLiteFile = "store.sqlite"

// SQLiteBackend keeps the whole store in one SQLite database. Save replaces
// every row inside a single transaction, so readers never see a half-written
// store.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (or creates) the database at path and ensures the
// schema. The vec_cosine and vec_l2 functions are registered first so Rank
// can use them on the opened connection.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, fmt.Errorf("persist: register vector functions: %w", err)
	}
	db, err := engine.OpenFile(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: ensure schema: %w", err)
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

// NewSQLiteBackendInDir opens the backend at SQLiteFile inside dir.
func NewSQLiteBackendInDir(ctx context.Context, dir string) (*SQLiteBackend, error) {
	return NewSQLiteBackend(ctx, filepath.Join(dir, SQLiteFile))
}

// Name implements Backend.
func (s *SQLiteBackend) Name() string { return "sqlite" }

// Paths implements Backend.
func (s *SQLiteBackend) Paths() []string { return []string{s.path} }

// Load implements Backend.
func (s *SQLiteBackend) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, video_id, meta, embedding FROM embeddings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("persist: query embeddings: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{Metadata: []map[string]any{}}
	for rows.Next() {
		var (
			position int
			videoID  string
			meta     string
			blob     []byte
		)
		if err := rows.Scan(&position, &videoID, &meta, &blob); err != nil {
			return nil, fmt.Errorf("persist: scan embeddings: %w", err)
		}
		if position != snap.Len() {
			return nil, fmt.Errorf("%w: position %d found where %d was expected", ErrCorrupt, position, snap.Len())
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorrupt, position, err)
		}
		var rec map[string]any
		if err := decodeJSON([]byte(meta), &rec); err != nil || rec == nil {
			return nil, fmt.Errorf("%w: row %d: metadata is not a JSON object", ErrCorrupt, position)
		}
		if rec[VideoIDKey] != videoID {
			return nil, fmt.Errorf("%w: row %d: video_id column %q disagrees with metadata", ErrCorrupt, position, videoID)
		}
		if snap.Len() == 0 {
			snap.Dim = len(vec)
		}
		snap.Embeddings = append(snap.Embeddings, vec)
		snap.Metadata = append(snap.Metadata, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: read embeddings: %w", err)
	}
	if err := snap.Check(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save implements Backend.
func (s *SQLiteBackend) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Check(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("persist: clear embeddings: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings(position, video_id, meta, embedding) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, vec := range snap.Embeddings {
		rec := snap.Metadata[i]
		meta, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("persist: encode metadata row %d: %w", i, err)
		}
		blob, err := vector.EncodeEmbedding(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, rec[VideoIDKey], string(meta), blob); err != nil {
			return fmt.Errorf("persist: insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Ranked is one row ranked by Rank.
type Ranked struct {
	Position int     `json:"position"`
	VideoID  string  `json:"video_id"`
	Score    float64 `json:"score"`
}

// Rank orders the persisted rows by vec_cosine against query inside SQLite
// and returns the best k. It reads the database, not the in-memory store, and
// is meant for operators checking what is on disk.
func (s *SQLiteBackend) Rank(ctx context.Context, query []float32, k int) ([]Ranked, error) {
	if k <= 0 {
		return nil, fmt.Errorf("persist: k must be positive, got %d", k)
	}
	if err := vector.Validate(query, 0); err != nil {
		return nil, err
	}
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT position, video_id, vec_cosine(embedding, ?) AS score
FROM embeddings
ORDER BY score DESC, position ASC
LIMIT ?`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("persist: rank: %w", err)
	}
	defer rows.Close()

	var out []Ranked
	for rows.Next() {
		var r Ranked
		if err := rows.Scan(&r.Position, &r.VideoID, &r.Score); err != nil {
			return nil, fmt.Errorf("persist: rank: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: rank: %w", err)
	}
	return out, nil
}

// Close implements Backend.
func (s *SQLiteBackend) Close() error { return s.db.Close() }

// Ensure SQLiteBackend satisfies the Backend interface.
var _ Backend = (*SQLiteBackend)(nil)
