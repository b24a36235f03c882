package source

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotReady reports a task that is still being processed.
	ErrNotReady = errors.New("source: task not ready")
	// ErrFailed reports a task the provider gave up on.
	ErrFailed = errors.New("source: task failed")
)

// Status is the processing state of an embedding task.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Named is one embedding of a task together with the option that produced it,
// e.g. "visual" or "audio".
type Named struct {
	Option    string
	Embedding []float32
}

// AssetType returns the metadata type recorded for the embedding, such as
// "visual_asset". An unnamed embedding is a plain "asset".
func (n Named) AssetType() string {
	if n.Option == "" {
		return "asset"
	}
	return n.Option + "_asset"
}

// Task is an embedding task as reported by a provider.
type Task struct {
	ID         string
	Status     Status
	Embeddings []Named
	// Duration of the source video in seconds.
	Duration float64
	// URL of the source video.
	URL string
}

// Err returns nil for a ready task, otherwise ErrNotReady or ErrFailed.
func (t *Task) Err() error {
	switch t.Status {
	case StatusReady:
		return nil
	case StatusFailed:
		return fmt.Errorf("%w: %s", ErrFailed, t.ID)
	default:
		return fmt.Errorf("%w: %s is %s", ErrNotReady, t.ID, t.Status)
	}
}

// EmbeddingSource fetches embedding tasks.
type EmbeddingSource interface {
	Fetch(ctx context.Context, taskID string) (*Task, error)
}

// QuerySource embeds search text into the same space as stored embeddings.
type QuerySource interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedFunc adapts a function to QuerySource.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Embed implements QuerySource.
func (f EmbedFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// Tasks is an in-memory EmbeddingSource keyed by task id, used for offline
// ingestion from exported task documents.
type Tasks map[string]*Task

// Fetch implements EmbeddingSource.
func (t Tasks) Fetch(_ context.Context, taskID string) (*Task, error) {
	task, ok := t[taskID]
	if !ok {
		return nil, fmt.Errorf("source: unknown task %q", taskID)
	}
	return task, nil
}

var (
	_ EmbeddingSource = Tasks(nil)
	_ QuerySource     = EmbedFunc(nil)
)
