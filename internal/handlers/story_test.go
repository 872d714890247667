package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/storyplay/engine/internal/storage"
	"github.com/storyplay/engine/pkg/story"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededStorage() *storage.MockStorage {
	ms := storage.NewMockStorage()
	ms.AddStory(&story.Story{
		ID:    "forest-tale",
		Title: "The Forest Tale",
		Scenes: []story.SceneRef{
			{SceneID: "forest-s1", Order: 0},
			{SceneID: "forest-s2", Order: 1},
		},
	},
		&story.Scene{ID: "forest-s1", Order: 0, Dialogue: &story.Dialogue{Speaker: "Narrator", Text: "Once upon a time."}},
		&story.Scene{ID: "forest-s2", Order: 1},
	)
	return ms
}

func TestStoryHandler_List(t *testing.T) {
	handler := NewStoryHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/stories", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var stories []story.Story
	if err := json.Unmarshal(w.Body.Bytes(), &stories); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != "forest-tale" {
		t.Errorf("Unexpected story list: %+v", stories)
	}
}

func TestStoryHandler_GetStory(t *testing.T) {
	handler := NewStoryHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/stories/forest-tale", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var s story.Story
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if s.Title != "The Forest Tale" {
		t.Errorf("Expected title 'The Forest Tale', got %q", s.Title)
	}
}

func TestStoryHandler_ListScenes(t *testing.T) {
	handler := NewStoryHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/stories/forest-tale/scenes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var refs []story.SceneRef
	if err := json.Unmarshal(w.Body.Bytes(), &refs); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(refs) != 2 || refs[0].SceneID != "forest-s1" {
		t.Errorf("Unexpected scene refs: %+v", refs)
	}
}

func TestStoryHandler_NotFound(t *testing.T) {
	handler := NewStoryHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/stories/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to parse error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("Expected error message in response body")
	}
}

func TestStoryHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStoryHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", w.Code)
	}
}

func TestSceneHandler_Get(t *testing.T) {
	handler := NewSceneHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenes/forest-s1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var scene story.Scene
	if err := json.Unmarshal(w.Body.Bytes(), &scene); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if scene.Dialogue == nil || scene.Dialogue.Text != "Once upon a time." {
		t.Errorf("Unexpected scene: %+v", scene)
	}
}

func TestSceneHandler_NotFound(t *testing.T) {
	handler := NewSceneHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenes/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
}

func TestSceneHandler_MissingID(t *testing.T) {
	handler := NewSceneHandler(testLogger(), seededStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenes/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}
