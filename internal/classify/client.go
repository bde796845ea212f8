package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the model server that hosts the line classifier and the
// name extractor. It implements both Classifier and NameExtractor.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client

	Stats *LatencyStats
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewLatencyStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type textRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type nameResponse struct {
	Name *string `json:"name"`
}

// Classify asks the model server for the label of one normalized line.
func (c *Client) Classify(ctx context.Context, line string) (Result, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", line, &resp); err != nil {
		return Silent, err
	}
	if resp.Error != nil {
		return Silent, fmt.Errorf("classifier error: %s: %s", resp.Error.Type, resp.Error.Message)
	}
	return validateResponse(resp.Label, resp.Confidence)
}

// ExtractName asks the model server for the name span in one normalized line.
func (c *Client) ExtractName(ctx context.Context, line string) (string, error) {
	var resp nameResponse
	if err := c.post(ctx, "/extract-name", line, &resp); err != nil {
		return "", err
	}
	if resp.Name == nil {
		return "", nil
	}
	return CleanName(*resp.Name), nil
}

func (c *Client) post(ctx context.Context, path, text string, out any) error {
	body, err := json.Marshal(textRequest{Model: c.model, Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.record(start, true)
		return fmt.Errorf("model server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	c.record(start, err != nil || resp.StatusCode != http.StatusOK)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w (raw: %s)", err, truncate(string(respBody), 200))
	}
	return nil
}

func (c *Client) record(start time.Time, failed bool) {
	if c.Stats == nil {
		return
	}
	ms := time.Since(start).Milliseconds()
	if failed {
		c.Stats.RecordFailure(ms)
		return
	}
	c.Stats.Record(ms)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StatusError is a non-200 answer from the model server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model server status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
