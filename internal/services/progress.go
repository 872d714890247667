package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/storyplay/engine/pkg/progress"
)

// ProgressService talks to the persistence API for progress records and
// attempt history. It implements session.ProgressStore.
type ProgressService struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewProgressService creates a progress client against baseURL.
func NewProgressService(baseURL string, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Check asks whether a saved record exists for (user, story). A missing
// record is not an error; the snapshot reports no existing progress.
func (p *ProgressService) Check(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/progress/check?user_id=%s&story_id=%s",
		p.baseURL, url.QueryEscape(userID), url.QueryEscape(storyID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	return p.doSnapshot(req)
}

// Continue resumes the saved record for (user, story).
func (p *ProgressService) Continue(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	return p.postSnapshot(ctx, "/v1/progress/continue", userID, storyID)
}

// Restart discards the saved record and returns a fresh one.
func (p *ProgressService) Restart(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	return p.postSnapshot(ctx, "/v1/progress/restart", userID, storyID)
}

// SaveScene persists a scene transition.
func (p *ProgressService) SaveScene(ctx context.Context, save progress.SceneSave) error {
	return p.postJSON(ctx, "/v1/progress/scene", save)
}

// SaveWrongAnswer persists a mistake event. The earned points field is
// always zero on this path; mistakes never add points.
func (p *ProgressService) SaveWrongAnswer(ctx context.Context, save progress.SceneSave) error {
	save.PointsEarned = 0
	return p.postJSON(ctx, "/v1/progress/wrong-answer", save)
}

// SaveAttempt records a completed playthrough. The attempts endpoint
// accepts form-encoded bodies.
func (p *ProgressService) SaveAttempt(ctx context.Context, attempt progress.Attempt) error {
	form := url.Values{}
	form.Set("user_id", attempt.UserID)
	form.Set("story_id", attempt.StoryID)
	form.Set("score", strconv.Itoa(attempt.Score))
	form.Set("total_possible_score", strconv.Itoa(attempt.TotalPossibleScore))
	form.Set("start_attempt_date", attempt.StartedAt.UTC().Format(time.RFC3339))
	form.Set("end_attempt_date", attempt.EndedAt.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/game-attempts", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return p.apiError("failed to save attempt", resp.StatusCode, body)
	}
	return nil
}

// ListAttempts returns the attempt history for a user, most recent
// first.
func (p *ProgressService) ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error) {
	endpoint := fmt.Sprintf("%s/v1/game-attempts/user/%s", p.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.apiError("failed to list attempts", resp.StatusCode, body)
	}

	var attempts []progress.Attempt
	if err := json.Unmarshal(body, &attempts); err != nil {
		return nil, fmt.Errorf("failed to parse attempts response: %w", err)
	}
	return attempts, nil
}

func (p *ProgressService) postSnapshot(ctx context.Context, path, userID, storyID string) (progress.Snapshot, error) {
	reqBody := map[string]string{
		"user_id":  userID,
		"story_id": storyID,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.doSnapshot(req)
}

func (p *ProgressService) doSnapshot(req *http.Request) (progress.Snapshot, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return progress.Snapshot{}, p.apiError("progress request failed", resp.StatusCode, body)
	}

	var snap progress.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to parse progress response: %w", err)
	}
	return snap, nil
}

func (p *ProgressService) postJSON(ctx context.Context, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return p.apiError("progress save failed", resp.StatusCode, body)
	}
	return nil
}

func (p *ProgressService) apiError(msg string, status int, body []byte) error {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("%s: API returned status %d: %s", msg, status, string(body))
	}
	return fmt.Errorf("%s: %s", msg, errorResp.Error)
}
