package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/videostore/vector"
)

const (
	// EmbeddingsFile holds the embedding matrix.
	EmbeddingsFile = "embeddings.bin"
	// MetadataFile holds the metadata records as an indented JSON array.
	MetadataFile = "metadata.json"
)

// FileBackend mirrors the store to two files in one directory. Each file is
// replaced atomically with a write-to-temp-then-rename, but the pair is not:
// a crash between the two renames leaves files with different row counts,
// which Load reports as ErrCorrupt.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory must exist.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Name implements Backend.
func (f *FileBackend) Name() string { return "files" }

// Paths implements Backend.
func (f *FileBackend) Paths() []string {
	return []string{f.embeddingsPath(), f.metadataPath()}
}

func (f *FileBackend) embeddingsPath() string { return filepath.Join(f.dir, EmbeddingsFile) }
func (f *FileBackend) metadataPath() string   { return filepath.Join(f.dir, MetadataFile) }

// Load implements Backend.
func (f *FileBackend) Load(ctx context.Context) (*Snapshot, error) {
	embData, embErr := os.ReadFile(f.embeddingsPath())
	metaData, metaErr := os.ReadFile(f.metadataPath())
	embMissing := errors.Is(embErr, os.ErrNotExist)
	metaMissing := errors.Is(metaErr, os.ErrNotExist)
	switch {
	case embErr != nil && !embMissing:
		return nil, fmt.Errorf("persist: read %s: %w", f.embeddingsPath(), embErr)
	case metaErr != nil && !metaMissing:
		return nil, fmt.Errorf("persist: read %s: %w", f.metadataPath(), metaErr)
	case embMissing && metaMissing:
		return &Snapshot{}, nil
	case embMissing:
		return nil, fmt.Errorf("%w: %s exists without %s", ErrCorrupt, MetadataFile, EmbeddingsFile)
	case metaMissing:
		return nil, fmt.Errorf("%w: %s exists without %s", ErrCorrupt, EmbeddingsFile, MetadataFile)
	}

	dim, rows, err := vector.UnmarshalMatrix(embData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, EmbeddingsFile, err)
	}
	records, err := decodeRecords(metaData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, MetadataFile, err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: %s: record %d is not an object", ErrCorrupt, MetadataFile, i)
		}
	}
	snap := &Snapshot{Dim: dim, Embeddings: rows, Metadata: records}
	if snap.Metadata == nil {
		snap.Metadata = []map[string]any{}
	}
	if err := snap.Check(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save implements Backend. The embeddings file is written first.
func (f *FileBackend) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Check(); err != nil {
		return err
	}
	embData, err := vector.MarshalMatrix(snap.Dim, snap.Embeddings)
	if err != nil {
		return err
	}
	metaData, err := MarshalMetadata(snap.Metadata)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(f.embeddingsPath(), embData); err != nil {
		return err
	}
	return writeFileAtomic(f.metadataPath(), metaData)
}

// Close implements Backend.
func (f *FileBackend) Close() error { return nil }

// MarshalMetadata renders records as a JSON array indented with two spaces
// and terminated by a newline. Object keys come out sorted, so equal records
// always produce identical bytes.
func MarshalMetadata(records []map[string]any) ([]byte, error) {
	if records == nil {
		records = []map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("persist: encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("persist: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("persist: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("persist: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("persist: replace %s: %w", path, err)
	}
	return nil
}

// Ensure FileBackend satisfies the Backend interface.
var _ Backend = (*FileBackend)(nil)
