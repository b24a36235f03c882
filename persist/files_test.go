package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Dim:        3,
		Embeddings: [][]float32{{1, 0, 0}, {0, 1, 0}},
		Metadata: []map[string]any{
			{"video_id": "a", "duration": 12.5, "frames": int64(300), "type": "visual_asset"},
			{"video_id": "b", "url": "https://example.com/b.mp4"},
		},
	}
}

func TestFileBackend_LoadEmptyDirectory(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	snap, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, 0, snap.Dim)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir)
	want := sampleSnapshot()
	require.NoError(t, b.Save(ctx, want))

	got, err := NewFileBackend(dir).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Dim, got.Dim)
	assert.Equal(t, want.Embeddings, got.Embeddings)
	assert.Equal(t, want.Metadata, got.Metadata)
}

func TestFileBackend_SaveIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir)
	require.NoError(t, b.Save(ctx, sampleSnapshot()))
	emb1, err := os.ReadFile(filepath.Join(dir, EmbeddingsFile))
	require.NoError(t, err)
	meta1, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)

	require.NoError(t, b.Save(ctx, sampleSnapshot()))
	emb2, err := os.ReadFile(filepath.Join(dir, EmbeddingsFile))
	require.NoError(t, err)
	meta2, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)

	assert.Equal(t, emb1, emb2)
	assert.Equal(t, meta1, meta2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestFileBackend_MetadataFormatting(t *testing.T) {
	dir := t.TempDir()
	snap := &Snapshot{
		Dim:        1,
		Embeddings: [][]float32{{1}},
		Metadata:   []map[string]any{{"video_id": "a", "duration": 3.0}},
	}
	require.NoError(t, NewFileBackend(dir).Save(context.Background(), snap))
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	want := "[\n  {\n    \"duration\": 3,\n    \"video_id\": \"a\"\n  }\n]\n"
	assert.Equal(t, want, string(data))
}

func TestFileBackend_EmptySnapshotFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir)
	require.NoError(t, b.Save(ctx, &Snapshot{}))
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	snap, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestFileBackend_Corruption(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata without embeddings", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte("[]"), 0o644))
		_, err := NewFileBackend(dir).Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("embeddings without metadata", func(t *testing.T) {
		dir := t.TempDir()
		b := NewFileBackend(dir)
		require.NoError(t, b.Save(ctx, sampleSnapshot()))
		require.NoError(t, os.Remove(filepath.Join(dir, MetadataFile)))
		_, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		dir := t.TempDir()
		b := NewFileBackend(dir)
		require.NoError(t, b.Save(ctx, sampleSnapshot()))
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(`[{"video_id":"a"}]`), 0o644))
		_, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("garbage embeddings", func(t *testing.T) {
		dir := t.TempDir()
		b := NewFileBackend(dir)
		require.NoError(t, b.Save(ctx, sampleSnapshot()))
		require.NoError(t, os.WriteFile(filepath.Join(dir, EmbeddingsFile), []byte("not a matrix at all"), 0o644))
		_, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		b := NewFileBackend(dir)
		require.NoError(t, b.Save(ctx, sampleSnapshot()))
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte("{"), 0o644))
		_, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("missing video id", func(t *testing.T) {
		dir := t.TempDir()
		b := NewFileBackend(dir)
		require.NoError(t, b.Save(ctx, sampleSnapshot()))
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(`[{"video_id":"a"},{"x":1}]`), 0o644))
		_, err := b.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestFileBackend_SaveRejectsInconsistentSnapshot(t *testing.T) {
	snap := sampleSnapshot()
	snap.Metadata = snap.Metadata[:1]
	err := NewFileBackend(t.TempDir()).Save(context.Background(), snap)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileBackend_SaveIntoMissingDirectory(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "gone"))
	err := b.Save(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestFileBackend_ReadErrorIsNotReportedAsMissingPair(t *testing.T) {
	dir := t.TempDir()
	// a directory in place of the file makes the read fail with something other than not-exist.
	require.NoError(t, os.Mkdir(filepath.Join(dir, EmbeddingsFile), 0o755))

	_, err := NewFileBackend(dir).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "persist: read")
	assert.NotContains(t, err.Error(), "exists without")
}

func TestFileBackend_LoadKeepsIntegers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir)
	require.NoError(t, b.Save(ctx, sampleSnapshot()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile),
		[]byte(`[{"video_id":"a","big":9007199254740993},{"video_id":"b","tags":[1,2.5]}]`), 0o644))

	snap, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), snap.Metadata[0]["big"])
	assert.Equal(t, []any{int64(1), 2.5}, snap.Metadata[1]["tags"])
}
