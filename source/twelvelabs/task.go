package twelvelabs

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/viant/videostore/source"
)

type taskResponse struct {
	ID       string          `json:"_id"`
	Status   string          `json:"status"`
	Data     []taskEmbedding `json:"data"`
	Metadata *taskMetadata   `json:"metadata"`
}

type taskEmbedding struct {
	Embedding []float32 `json:"embedding"`
	Option    string    `json:"embedding_option"`
	Type      string    `json:"type"`
}

type taskMetadata struct {
	Duration float64 `json:"duration"`
	InputURL string  `json:"input_url"`
}

type textEmbedResponse struct {
	ModelName     string `json:"model_name"`
	TextEmbedding *struct {
		Segments []struct {
			Float []float32 `json:"float"`
		} `json:"segments"`
	} `json:"text_embedding"`
}

// DecodeTask parses an embed-v2 task document, as returned by the API or
// saved from it.
func DecodeTask(r io.Reader) (*source.Task, error) {
	var resp taskResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("twelvelabs: decode task: %w", err)
	}
	task := &source.Task{ID: resp.ID, Status: status(resp.Status)}
	if resp.Metadata != nil {
		task.Duration = resp.Metadata.Duration
		task.URL = resp.Metadata.InputURL
	}
	for _, d := range resp.Data {
		option := d.Option
		if option == "" {
			option = d.Type
		}
		task.Embeddings = append(task.Embeddings, source.Named{Option: option, Embedding: d.Embedding})
	}
	// older responses carry embeddings without a status.
	if resp.Status == "" && len(task.Embeddings) > 0 {
		task.Status = source.StatusReady
	}
	return task, nil
}

func status(s string) source.Status {
	switch s {
	case "ready", "completed":
		return source.StatusReady
	case "failed", "error":
		return source.StatusFailed
	default:
		return source.StatusProcessing
	}
}
