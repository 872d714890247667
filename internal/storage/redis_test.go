package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyplay/engine/pkg/progress"
)

func newTestStorage(t *testing.T, dataDir string) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	s := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestRedisStorage_ProgressRoundTrip(t *testing.T) {
	s := newTestStorage(t, t.TempDir())
	ctx := context.Background()

	// No record yet: nil, nil
	p, err := s.GetProgress(ctx, "u1", "forest-tale")
	require.NoError(t, err)
	assert.Nil(t, p)

	rec := progress.New("u1", "forest-tale")
	rec.CurrentSceneID = "s3"
	rec.MistakeCount = 2
	rec.QuestionMistakes["q1"] = 2
	rec.AnswerStates["q1"] = "locked"
	rec.PointsEarned = 18

	require.NoError(t, s.SaveProgress(ctx, rec))

	got, err := s.GetProgress(ctx, "u1", "forest-tale")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s3", got.CurrentSceneID)
	assert.Equal(t, 2, got.MistakeCount)
	assert.Equal(t, 2, got.QuestionMistakes["q1"])
	assert.Equal(t, "locked", got.AnswerStates["q1"])
	assert.Equal(t, 18, got.PointsEarned)
	assert.False(t, got.UpdatedAt.IsZero())

	// Reading twice returns the same record: checks never mutate
	again, err := s.GetProgress(ctx, "u1", "forest-tale")
	require.NoError(t, err)
	assert.Equal(t, got.CurrentSceneID, again.CurrentSceneID)
	assert.Equal(t, got.MistakeCount, again.MistakeCount)
}

func TestRedisStorage_DeleteProgress(t *testing.T) {
	s := newTestStorage(t, t.TempDir())
	ctx := context.Background()

	rec := progress.New("u1", "forest-tale")
	rec.CurrentSceneID = "s2"
	require.NoError(t, s.SaveProgress(ctx, rec))

	require.NoError(t, s.DeleteProgress(ctx, "u1", "forest-tale"))

	p, err := s.GetProgress(ctx, "u1", "forest-tale")
	require.NoError(t, err)
	assert.Nil(t, p)

	// Deleting a missing record is a no-op
	require.NoError(t, s.DeleteProgress(ctx, "u1", "forest-tale"))
}

func TestRedisStorage_ProgressIsolatedByUserAndStory(t *testing.T) {
	s := newTestStorage(t, t.TempDir())
	ctx := context.Background()

	a := progress.New("u1", "forest-tale")
	a.CurrentSceneID = "s5"
	b := progress.New("u1", "ocean-tale")
	b.CurrentSceneID = "s1"
	c := progress.New("u2", "forest-tale")
	c.CurrentSceneID = "s2"

	require.NoError(t, s.SaveProgress(ctx, a))
	require.NoError(t, s.SaveProgress(ctx, b))
	require.NoError(t, s.SaveProgress(ctx, c))

	got, err := s.GetProgress(ctx, "u1", "forest-tale")
	require.NoError(t, err)
	assert.Equal(t, "s5", got.CurrentSceneID)

	got, err = s.GetProgress(ctx, "u2", "forest-tale")
	require.NoError(t, err)
	assert.Equal(t, "s2", got.CurrentSceneID)
}

func TestRedisStorage_Attempts(t *testing.T) {
	s := newTestStorage(t, t.TempDir())
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveAttempt(ctx, progress.Attempt{
		UserID:             "u1",
		StoryID:            "forest-tale",
		Score:              30,
		TotalPossibleScore: 50,
		StartedAt:          started,
		EndedAt:            started.Add(10 * time.Minute),
	}))
	require.NoError(t, s.SaveAttempt(ctx, progress.Attempt{
		UserID:             "u1",
		StoryID:            "forest-tale",
		Score:              48,
		TotalPossibleScore: 50,
		StartedAt:          started.Add(time.Hour),
		EndedAt:            started.Add(time.Hour + 8*time.Minute),
	}))

	attempts, err := s.ListAttempts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	// Most recent first
	assert.Equal(t, 48, attempts[0].Score)
	assert.Equal(t, 30, attempts[1].Score)
	assert.NotEmpty(t, attempts[0].ID)
	assert.NotEqual(t, attempts[0].ID, attempts[1].ID)

	// Other users see nothing
	other, err := s.ListAttempts(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
