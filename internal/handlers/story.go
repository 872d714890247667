package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storyplay/engine/internal/storage"
)

// ErrorResponse is the JSON body for all handler errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// StoryHandler serves the story catalog.
// Routes:
// GET /v1/stories                  - List all stories
// GET /v1/stories/{id}             - Read one story
// GET /v1/stories/{id}/scenes      - List a story's scene references
type StoryHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStoryHandler(logger *slog.Logger, storage storage.Storage) *StoryHandler {
	return &StoryHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")
	if path == "" {
		h.handleList(w, r)
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		h.handleGet(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "scenes":
		h.handleScenes(w, r, parts[0])
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *StoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storage.ListStories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list stories")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stories)
}

func (h *StoryHandler) handleGet(w http.ResponseWriter, r *http.Request, storyID string) {
	s, err := h.storage.GetStory(r.Context(), storyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Story not found")
			return
		}
		h.logger.Error("Failed to get story", "story_id", storyID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve story")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *StoryHandler) handleScenes(w http.ResponseWriter, r *http.Request, storyID string) {
	refs, err := h.storage.ListScenes(r.Context(), storyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Story not found")
			return
		}
		h.logger.Error("Failed to list scenes", "story_id", storyID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list scenes")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, refs)
}
