package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/storyplay/engine/pkg/story"
)

// ErrContentLoad wraps any failure to fetch story content. Callers use
// it to distinguish content failures (fatal for playback) from
// persistence failures (retryable or ignorable).
var ErrContentLoad = errors.New("content load failed")

// ContentService fetches stories and scenes from the HTTP API. It
// implements session.Catalog.
type ContentService struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewContentService creates a content client against baseURL.
func NewContentService(baseURL string, logger *slog.Logger) *ContentService {
	return &ContentService{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// ListStories returns all available stories.
func (c *ContentService) ListStories(ctx context.Context) ([]story.Story, error) {
	var stories []story.Story
	if err := c.getJSON(ctx, c.baseURL+"/v1/stories", &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// ListScenes returns the ordered scene list for a story. An empty
// list is a content failure: a story with no scenes cannot be played.
func (c *ContentService) ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error) {
	endpoint := fmt.Sprintf("%s/v1/stories/%s/scenes", c.baseURL, url.PathEscape(storyID))
	var refs []story.SceneRef
	if err := c.getJSON(ctx, endpoint, &refs); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: story %q has no scenes", ErrContentLoad, storyID)
	}
	return refs, nil
}

// LoadScene fetches a full scene descriptor by ID.
func (c *ContentService) LoadScene(ctx context.Context, sceneID string) (*story.Scene, error) {
	endpoint := fmt.Sprintf("%s/v1/scenes/%s", c.baseURL, url.PathEscape(sceneID))
	var scene story.Scene
	if err := c.getJSON(ctx, endpoint, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (c *ContentService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrContentLoad, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request: %v", ErrContentLoad, err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrContentLoad, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("%w: API returned status %d: %s", ErrContentLoad, resp.StatusCode, string(body))
		}
		return fmt.Errorf("%w: %s", ErrContentLoad, errorResp.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", ErrContentLoad, err)
	}
	return nil
}
