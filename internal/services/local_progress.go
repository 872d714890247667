package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storyplay/engine/pkg/progress"
)

// LocalProgress persists progress and attempts through the Cache
// interface instead of the API, for offline play against a local story
// file. With a MemoryCache the state lives for the process; pointing
// it at Redis makes it durable.
type LocalProgress struct {
	cache  Cache
	logger *slog.Logger
}

func NewLocalProgress(cache Cache, logger *slog.Logger) *LocalProgress {
	return &LocalProgress{cache: cache, logger: logger}
}

func localProgressKey(userID, storyID string) string {
	return fmt.Sprintf("local:progress:%s:%s", userID, storyID)
}

func localAttemptsKey(userID string) string {
	return fmt.Sprintf("local:attempts:%s", userID)
}

func (l *LocalProgress) load(ctx context.Context, userID, storyID string) (*progress.Progress, error) {
	data, err := l.cache.Get(ctx, localProgressKey(userID, storyID))
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	if data == "" {
		return nil, nil
	}
	var p progress.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to parse stored progress: %w", err)
	}
	return &p, nil
}

func (l *LocalProgress) store(ctx context.Context, p *progress.Progress) error {
	p.UpdatedAt = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	return l.cache.Set(ctx, localProgressKey(p.UserID, p.StoryID), string(data), 0)
}

// Check reads the saved snapshot without mutating anything.
func (l *LocalProgress) Check(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	p, err := l.load(ctx, userID, storyID)
	if err != nil {
		return progress.Snapshot{}, err
	}
	return progress.SnapshotOf(p), nil
}

// Continue returns the saved position.
func (l *LocalProgress) Continue(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	return l.Check(ctx, userID, storyID)
}

// Restart replaces any saved record with a fresh one.
func (l *LocalProgress) Restart(ctx context.Context, userID, storyID string) (progress.Snapshot, error) {
	p := progress.New(userID, storyID)
	if err := l.store(ctx, p); err != nil {
		return progress.Snapshot{}, err
	}
	return progress.SnapshotOf(p), nil
}

// SaveScene updates position and score state.
func (l *LocalProgress) SaveScene(ctx context.Context, save progress.SceneSave) error {
	return l.save(ctx, save, false)
}

// SaveWrongAnswer updates mistake state but never banked points.
func (l *LocalProgress) SaveWrongAnswer(ctx context.Context, save progress.SceneSave) error {
	return l.save(ctx, save, true)
}

func (l *LocalProgress) save(ctx context.Context, save progress.SceneSave, wrongAnswer bool) error {
	p, err := l.load(ctx, save.UserID, save.StoryID)
	if err != nil {
		return err
	}
	if p == nil {
		p = progress.New(save.UserID, save.StoryID)
	}

	if save.SceneID != "" {
		p.CurrentSceneID = save.SceneID
	}
	p.MistakeCount = save.MistakeCount
	if save.QuestionMistakes != nil {
		p.QuestionMistakes = save.QuestionMistakes
	}
	if save.AnswerStates != nil {
		p.AnswerStates = save.AnswerStates
	}
	if !wrongAnswer {
		p.PointsEarned = save.PointsEarned
	}
	return l.store(ctx, p)
}

// SaveAttempt appends a completed playthrough to the user's history.
func (l *LocalProgress) SaveAttempt(ctx context.Context, attempt progress.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	attempts, err := l.ListAttempts(ctx, attempt.UserID)
	if err != nil {
		return err
	}
	attempts = append([]progress.Attempt{attempt}, attempts...)

	data, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("failed to marshal attempts: %w", err)
	}
	return l.cache.Set(ctx, localAttemptsKey(attempt.UserID), string(data), 0)
}

// ListAttempts returns the user's attempts, most recent first.
func (l *LocalProgress) ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error) {
	data, err := l.cache.Get(ctx, localAttemptsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read attempts: %w", err)
	}
	if data == "" {
		return nil, nil
	}
	var attempts []progress.Attempt
	if err := json.Unmarshal([]byte(data), &attempts); err != nil {
		return nil, fmt.Errorf("failed to parse stored attempts: %w", err)
	}
	return attempts, nil
}
