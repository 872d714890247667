package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyplay/engine/pkg/progress"
)

func TestProgressService_Check(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/progress/check", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "forest-tale", r.URL.Query().Get("story_id"))

		_ = json.NewEncoder(w).Encode(progress.Snapshot{
			HasExistingProgress: true,
			CurrentSceneID:      "s3",
			MistakeCount:        2,
			PointsEarned:        18,
		})
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())
	snap, err := svc.Check(context.Background(), "u1", "forest-tale")
	require.NoError(t, err)
	assert.True(t, snap.HasExistingProgress)
	assert.Equal(t, "s3", snap.CurrentSceneID)
	assert.Equal(t, 18, snap.PointsEarned)
}

func TestProgressService_ContinueAndRestart(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(progress.Snapshot{CurrentSceneID: "s1"})
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())

	_, err := svc.Continue(context.Background(), "u1", "forest-tale")
	require.NoError(t, err)
	assert.Equal(t, "/v1/progress/continue", gotPath)
	assert.Equal(t, "u1", gotBody["user_id"])
	assert.Equal(t, "forest-tale", gotBody["story_id"])

	_, err = svc.Restart(context.Background(), "u1", "forest-tale")
	require.NoError(t, err)
	assert.Equal(t, "/v1/progress/restart", gotPath)
}

func TestProgressService_SaveWrongAnswerZeroesPoints(t *testing.T) {
	var gotSave progress.SceneSave

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/progress/wrong-answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotSave))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())
	err := svc.SaveWrongAnswer(context.Background(), progress.SceneSave{
		UserID:       "u1",
		StoryID:      "forest-tale",
		SceneID:      "s2",
		PointsEarned: 40, // Must be dropped on the wire
		MistakeCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, gotSave.PointsEarned)
	assert.Equal(t, 3, gotSave.MistakeCount)
}

func TestProgressService_SaveAttemptFormEncoded(t *testing.T) {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(12 * time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/game-attempts", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "u1", r.PostForm.Get("user_id"))
		assert.Equal(t, "42", r.PostForm.Get("score"))
		assert.Equal(t, "50", r.PostForm.Get("total_possible_score"))
		assert.Equal(t, "2025-06-01T10:00:00Z", r.PostForm.Get("start_attempt_date"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())
	err := svc.SaveAttempt(context.Background(), progress.Attempt{
		UserID:             "u1",
		StoryID:            "forest-tale",
		Score:              42,
		TotalPossibleScore: 50,
		StartedAt:          started,
		EndedAt:            ended,
	})
	require.NoError(t, err)
}

func TestProgressService_ListAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/game-attempts/user/u1", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]progress.Attempt{
			{ID: "a2", UserID: "u1", Score: 48},
			{ID: "a1", UserID: "u1", Score: 30},
		})
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())
	attempts, err := svc.ListAttempts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "a2", attempts[0].ID)
}

func TestProgressService_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "storage unavailable"})
	}))
	defer server.Close()

	svc := NewProgressService(server.URL, testLogger())
	_, err := svc.Check(context.Background(), "u1", "forest-tale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage unavailable")
}
