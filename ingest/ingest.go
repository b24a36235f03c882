// Package ingest moves provider embeddings into a store and runs text queries
// against it.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/viant/videostore/source"
	"github.com/viant/videostore/store"
)

// ErrNoEmbeddings is returned for a ready task that carries no embeddings.
var ErrNoEmbeddings = errors.New("ingest: task has no embeddings")

// Metadata keys written for every ingested embedding.
const (
	KeyDuration = "duration"
	KeyURL      = "url"
	KeyType     = "type"
	KeyTaskID   = "task_id"
)

// Adder appends one embedding; *store.Store satisfies it.
type Adder interface {
	Add(ctx context.Context, videoID string, embedding []float32, fields map[string]any) error
}

// Searcher answers top-k queries; *store.Store satisfies it.
type Searcher interface {
	Search(query []float32, topK int) ([]store.Result, error)
}

// Options controls Task.
type Options struct {
	// VideoID recorded for every embedding; the task id when empty.
	VideoID string
	// FirstOnly stores only the first embedding of the task.
	FirstOnly bool
	Logger    *zerolog.Logger
}

// Report summarizes an ingestion.
type Report struct {
	TaskID  string
	VideoID string
	// Types lists the asset type of each stored embedding, in order.
	Types []string
}

// Added returns the number of stored embeddings.
func (r *Report) Added() int { return len(r.Types) }

// Task fetches taskID from src and appends its embeddings to dst. The task
// must be ready. Embeddings are added one by one; on failure the report
// lists what was stored before the error.
func Task(ctx context.Context, src source.EmbeddingSource, dst Adder, taskID string, opts Options) (*Report, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	task, err := src.Fetch(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("ingest: fetch %s: %w", taskID, err)
	}
	if err := task.Err(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if len(task.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEmbeddings, taskID)
	}
	report := &Report{TaskID: taskID, VideoID: opts.VideoID}
	if report.VideoID == "" {
		report.VideoID = taskID
	}
	embeddings := task.Embeddings
	if opts.FirstOnly {
		embeddings = embeddings[:1]
	}
	for i, named := range embeddings {
		fields := map[string]any{
			KeyDuration: task.Duration,
			KeyURL:      task.URL,
			KeyType:     named.AssetType(),
			KeyTaskID:   taskID,
		}
		if err := dst.Add(ctx, report.VideoID, named.Embedding, fields); err != nil {
			return report, fmt.Errorf("ingest: embedding %d (%s): %w", i, named.AssetType(), err)
		}
		report.Types = append(report.Types, named.AssetType())
	}
	logger.Info().
		Str("task_id", taskID).
		Str("video_id", report.VideoID).
		Int("added", report.Added()).
		Msg("task ingested")
	return report, nil
}

// SearchText embeds text with q and searches s.
func SearchText(ctx context.Context, q source.QuerySource, s Searcher, text string, topK int) ([]store.Result, error) {
	vec, err := q.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ingest: embed query: %w", err)
	}
	return s.Search(vec, topK)
}

var (
	_ Adder    = (*store.Store)(nil)
	_ Searcher = (*store.Store)(nil)
)
