// Package ollama is the HTTP client for the local model-serving daemon:
// listing and deleting local models and opening streamed pulls.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/version"
)

const maxErrorBody = 64 * 1024

// Client talks to the daemon's REST API. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return New(cfg.OllamaHost(), cfg.RequestTimeout())
}

// New creates a client for baseURL. requestTimeout bounds list and delete
// calls; pulls are bounded only by their context.
func New(baseURL string, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// No overall timeout: a pull body is read for as long as the
		// download takes.
		streamClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels returns the models stored locally.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	const op = "list"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, newError(KindTransport, op, err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, op, err, "cannot connect to %s", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindProtocol, op, nil, "%s", statusMessage(resp))
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, newError(KindProtocol, op, err, "failed to decode response")
	}
	if result.Models == nil {
		result.Models = []Model{}
	}

	return result.Models, nil
}

// DeleteModel removes a local model. The caller re-lists afterwards.
func (c *Client) DeleteModel(ctx context.Context, name string) error {
	const op = "delete"

	req, err := c.newRequest(ctx, http.MethodDelete, "/api/delete", deleteRequest{Name: name})
	if err != nil {
		return newError(KindTransport, op, err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError(KindTransport, op, err, "cannot connect to %s", c.baseURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return newError(KindNotFound, op, nil, "model %q not found", name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newError(KindTransport, op, nil, "%s", statusMessage(resp))
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// Pull starts a streamed pull and returns the unread response body. The
// caller must close it; cancelling ctx aborts the transfer.
func (c *Client) Pull(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "pull"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/pull", pullRequest{Name: name, Stream: true})
	if err != nil {
		return nil, newError(KindTransport, op, err, "failed to create request")
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, op, err, "cannot connect to %s", c.baseURL)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, newError(KindNotFound, op, nil, "%s", statusMessage(resp))
		}
		return nil, newError(KindProtocol, op, nil, "%s", statusMessage(resp))
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, newError(KindUnsupportedTransport, op, nil, "response has no streamable body")
	}

	return resp.Body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusMessage prefers the daemon's {"error": "..."} text over the bare status.
func statusMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 200 {
		return resp.Status + ": " + text
	}
	return resp.Status
}
