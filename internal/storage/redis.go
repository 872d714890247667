package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storyplay/engine/pkg/progress"
)

// attemptHistoryLimit caps how many finished playthroughs are kept per
// user.
const attemptHistoryLimit = 50

// RedisStorage implements the Storage interface using Redis for
// progress records and attempt history, and the filesystem for story
// content.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Progress operations (Redis-backed)

func progressKey(userID, storyID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, storyID)
}

func attemptsKey(userID string) string {
	return "attempts:" + userID
}

func (r *RedisStorage) GetProgress(ctx context.Context, userID, storyID string) (*progress.Progress, error) {
	key := progressKey(userID, storyID)
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // No record is not an error
		}
		r.logger.Error("Failed to load progress", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var p progress.Progress
	if err := json.Unmarshal([]byte(cmd.Val()), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &p, nil
}

func (r *RedisStorage) SaveProgress(ctx context.Context, p *progress.Progress) error {
	p.UpdatedAt = time.Now()

	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("Failed to marshal progress", "user_id", p.UserID, "story_id", p.StoryID, "error", err)
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	key := progressKey(p.UserID, p.StoryID)
	cmd := r.client.Set(ctx, key, string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save progress", "key", key, "error", err)
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (r *RedisStorage) DeleteProgress(ctx context.Context, userID, storyID string) error {
	key := progressKey(userID, storyID)
	cmd := r.client.Del(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete progress", "key", key, "error", err)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// Attempt operations (Redis-backed)

func (r *RedisStorage) SaveAttempt(ctx context.Context, attempt progress.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}

	key := attemptsKey(attempt.UserID)
	if err := r.client.LPush(ctx, key, string(data)).Err(); err != nil {
		r.logger.Error("Failed to save attempt", "key", key, "error", err)
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	if err := r.client.LTrim(ctx, key, 0, attemptHistoryLimit-1).Err(); err != nil {
		r.logger.Warn("Failed to trim attempt history", "key", key, "error", err)
	}
	return nil
}

func (r *RedisStorage) ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error) {
	key := attemptsKey(userID)
	vals, err := r.client.LRange(ctx, key, 0, attemptHistoryLimit-1).Result()
	if err != nil {
		r.logger.Error("Failed to list attempts", "key", key, "error", err)
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]progress.Attempt, 0, len(vals))
	for _, v := range vals {
		var a progress.Attempt
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			r.logger.Warn("Skipping malformed attempt record", "key", key, "error", err)
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
