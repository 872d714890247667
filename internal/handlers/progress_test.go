package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyplay/engine/internal/storage"
	"github.com/storyplay/engine/pkg/progress"
)

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) progress.Snapshot {
	t.Helper()
	var snap progress.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestProgressHandler_CheckEmpty(t *testing.T) {
	handler := NewProgressHandler(testLogger(), storage.NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/progress/check?user_id=u1&story_id=forest-tale", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	assert.False(t, snap.HasExistingProgress)
}

func TestProgressHandler_CheckIsIdempotent(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewProgressHandler(testLogger(), ms)

	// Save some progress first
	w := postJSON(t, handler, "/v1/progress/scene", progress.SceneSave{
		UserID:       "u1",
		StoryID:      "forest-tale",
		SceneID:      "s3",
		PointsEarned: 12,
		MistakeCount: 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var snaps []progress.Snapshot
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/progress/check?user_id=u1&story_id=forest-tale", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		snaps = append(snaps, decodeSnapshot(t, rec))
	}

	assert.Equal(t, snaps[0], snaps[1], "checking twice must return the same state")
	assert.True(t, snaps[0].HasExistingProgress)
	assert.Equal(t, "s3", snaps[0].CurrentSceneID)
	assert.Equal(t, 12, snaps[0].PointsEarned)
}

func TestProgressHandler_CheckMissingParams(t *testing.T) {
	handler := NewProgressHandler(testLogger(), storage.NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/progress/check?user_id=u1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressHandler_ContinueReturnsSavedState(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewProgressHandler(testLogger(), ms)

	w := postJSON(t, handler, "/v1/progress/scene", progress.SceneSave{
		UserID:           "u1",
		StoryID:          "forest-tale",
		SceneID:          "s4",
		PointsEarned:     20,
		MistakeCount:     3,
		QuestionMistakes: map[string]int{"q1": 2, "q2": 1},
		AnswerStates:     map[string]string{"q1": "locked"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, handler, "/v1/progress/continue", progressRequest{UserID: "u1", StoryID: "forest-tale"})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	assert.True(t, snap.HasExistingProgress)
	assert.Equal(t, "s4", snap.CurrentSceneID)
	assert.Equal(t, 20, snap.PointsEarned)
	assert.Equal(t, 3, snap.MistakeCount)
	assert.Equal(t, 2, snap.QuestionMistakes["q1"])
	assert.Equal(t, "locked", snap.AnswerStates["q1"])
}

func TestProgressHandler_RestartDiscardsSavedState(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewProgressHandler(testLogger(), ms)

	w := postJSON(t, handler, "/v1/progress/scene", progress.SceneSave{
		UserID:       "u1",
		StoryID:      "forest-tale",
		SceneID:      "s4",
		PointsEarned: 20,
		MistakeCount: 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, handler, "/v1/progress/restart", progressRequest{UserID: "u1", StoryID: "forest-tale"})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	assert.False(t, snap.HasExistingProgress)
	assert.Empty(t, snap.CurrentSceneID)
	assert.Zero(t, snap.MistakeCount)
	assert.Zero(t, snap.PointsEarned)

	// The old record is gone for later checks too
	req := httptest.NewRequest(http.MethodGet, "/v1/progress/check?user_id=u1&story_id=forest-tale", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.False(t, decodeSnapshot(t, rec).HasExistingProgress)
}

func TestProgressHandler_WrongAnswerKeepsPoints(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewProgressHandler(testLogger(), ms)

	w := postJSON(t, handler, "/v1/progress/scene", progress.SceneSave{
		UserID:       "u1",
		StoryID:      "forest-tale",
		SceneID:      "s2",
		PointsEarned: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// A mistake event reports zero points; banked points must survive.
	w = postJSON(t, handler, "/v1/progress/wrong-answer", progress.SceneSave{
		UserID:           "u1",
		StoryID:          "forest-tale",
		MistakeCount:     1,
		QuestionMistakes: map[string]int{"q2": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	assert.Equal(t, 10, snap.PointsEarned)
	assert.Equal(t, 1, snap.MistakeCount)
	assert.Equal(t, 1, snap.QuestionMistakes["q2"])
	assert.Equal(t, "s2", snap.CurrentSceneID)
}

func TestProgressHandler_SaveStorageFailure(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewProgressHandler(testLogger(), ms)

	ms.SetSaveError(assert.AnError)
	w := postJSON(t, handler, "/v1/progress/scene", progress.SceneSave{
		UserID:       "u1",
		StoryID:      "forest-tale",
		SceneID:      "s2",
		PointsEarned: 10,
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to save progress", resp.Error)

	// Nothing should have been persisted for the failed save.
	ms.SetSaveError(nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/progress/check?user_id=u1&story_id=forest-tale", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeSnapshot(t, w).HasExistingProgress)
}

func TestProgressHandler_BadBody(t *testing.T) {
	handler := NewProgressHandler(testLogger(), storage.NewMockStorage())

	req := httptest.NewRequest(http.MethodPost, "/v1/progress/continue", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, handler, "/v1/progress/continue", progressRequest{UserID: "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttemptHandler_CreateAndList(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewAttemptHandler(testLogger(), ms)

	form := url.Values{}
	form.Set("user_id", "u1")
	form.Set("story_id", "forest-tale")
	form.Set("score", "42")
	form.Set("total_possible_score", "50")
	form.Set("start_attempt_date", "2025-06-01T10:00:00Z")
	form.Set("end_attempt_date", "2025-06-01T10:12:00Z")

	req := httptest.NewRequest(http.MethodPost, "/v1/game-attempts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/game-attempts/user/u1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var attempts []progress.Attempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempts))
	require.Len(t, attempts, 1)
	assert.Equal(t, 42, attempts[0].Score)
	assert.Equal(t, 50, attempts[0].TotalPossibleScore)
	assert.NotEmpty(t, attempts[0].ID)
}

func TestAttemptHandler_BadScore(t *testing.T) {
	handler := NewAttemptHandler(testLogger(), storage.NewMockStorage())

	form := url.Values{}
	form.Set("user_id", "u1")
	form.Set("story_id", "forest-tale")
	form.Set("score", "lots")

	req := httptest.NewRequest(http.MethodPost, "/v1/game-attempts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthHandler(t *testing.T) {
	ms := storage.NewMockStorage()
	handler := NewHealthHandler(testLogger(), ms)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["storage"])

	ms.SetPingError(assert.AnError)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
