// Package twelvelabs reads video embedding tasks from the Twelve Labs API and
// embeds search text with the same model family.
package twelvelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viant/videostore/source"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.twelvelabs.io"
	// DefaultModel is the text embedding model used by Embed.
	DefaultModel   = "Marengo-retrieval-2.7"
	defaultTimeout = 30 * time.Second
	apiVersion     = "v1.3"
	// maxErrorBody caps how much of an error response ends up in the message.
	maxErrorBody = 512
)

// ErrMissingAPIKey is returned by New without an API key.
var ErrMissingAPIKey = errors.New("twelvelabs: missing API key")

// APIError is a non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twelvelabs: API error %d: %s", e.StatusCode, e.Body)
}

// Client implements source.EmbeddingSource and source.QuerySource.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithModel sets the text embedding model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves an embed-v2 task. A task that is not ready is returned
// without error; callers check task.Err.
func (c *Client) Fetch(ctx context.Context, taskID string) (*source.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("twelvelabs: empty task id")
	}
	endpoint := fmt.Sprintf("%s/%s/embed-v2/tasks/%s", c.baseURL, apiVersion, url.PathEscape(taskID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("twelvelabs: create request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	task, err := DecodeTask(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = taskID
	}
	return task, nil
}

// Embed returns the text embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("twelvelabs: empty text")
	}
	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	if err := w.WriteField("model_name", c.model); err != nil {
		return nil, fmt.Errorf("twelvelabs: build form: %w", err)
	}
	if err := w.WriteField("text", text); err != nil {
		return nil, fmt.Errorf("twelvelabs: build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("twelvelabs: build form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+apiVersion+"/embed", &form)
	if err != nil {
		return nil, fmt.Errorf("twelvelabs: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var resp textEmbedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("twelvelabs: unmarshal response: %w", err)
	}
	if resp.TextEmbedding == nil || len(resp.TextEmbedding.Segments) == 0 || len(resp.TextEmbedding.Segments[0].Float) == 0 {
		return nil, fmt.Errorf("twelvelabs: response has no text embedding")
	}
	return resp.TextEmbedding.Segments[0].Float, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvelabs: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twelvelabs: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: msg}
	}
	return body, nil
}

var (
	_ source.EmbeddingSource = (*Client)(nil)
	_ source.QuerySource     = (*Client)(nil)
)
