// Package runner provides the HTTP client used by the integration
// suite against a running playback API.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Runner executes integration requests against a running API.
type Runner struct {
	BaseURL string
	Client  *http.Client
}

// NewRunner creates a runner for the API at baseURL.
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WaitForAPI polls the health endpoint until the API reports healthy
// or the context expires.
func (r *Runner) WaitForAPI(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		resp, err := r.Client.Get(r.BaseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("API did not become healthy: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetJSON issues a GET and decodes the response body into out.
func (r *Runner) GetJSON(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}
	return r.do(req, out)
}

// PostJSON issues a POST with a JSON body and decodes the response
// into out.
func (r *Runner) PostJSON(ctx context.Context, path string, body interface{}, out interface{}) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req, out)
}

// PostForm issues a form-encoded POST and decodes the response into
// out.
func (r *Runner) PostForm(ctx context.Context, path string, form url.Values, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r.do(req, out)
}

func (r *Runner) do(req *http.Request, out interface{}) (int, error) {
	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response %q: %w", truncate(data, 200), err)
		}
	}
	return resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
