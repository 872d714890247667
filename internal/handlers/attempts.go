package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/storyplay/engine/internal/storage"
	"github.com/storyplay/engine/pkg/progress"
)

// AttemptHandler records and lists finished playthroughs.
// Routes:
// POST /v1/game-attempts                - Record a finished playthrough (form-encoded)
// GET  /v1/game-attempts/user/{userID}  - List a user's attempts, most recent first
type AttemptHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewAttemptHandler(logger *slog.Logger, storage storage.Storage) *AttemptHandler {
	return &AttemptHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *AttemptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/game-attempts"), "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case strings.HasPrefix(path, "user/") && r.Method == http.MethodGet:
		h.handleList(w, r, strings.TrimPrefix(path, "user/"))
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *AttemptHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid form body")
		return
	}

	attempt := progress.Attempt{
		UserID:  r.PostForm.Get("user_id"),
		StoryID: r.PostForm.Get("story_id"),
	}
	if attempt.UserID == "" || attempt.StoryID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_id and story_id are required")
		return
	}

	var err error
	if attempt.Score, err = strconv.Atoi(r.PostForm.Get("score")); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "score must be an integer")
		return
	}
	if attempt.TotalPossibleScore, err = strconv.Atoi(r.PostForm.Get("total_possible_score")); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "total_possible_score must be an integer")
		return
	}
	if v := r.PostForm.Get("start_attempt_date"); v != "" {
		if attempt.StartedAt, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "start_attempt_date must be RFC3339")
			return
		}
	}
	if v := r.PostForm.Get("end_attempt_date"); v != "" {
		if attempt.EndedAt, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "end_attempt_date must be RFC3339")
			return
		}
	}

	if err := h.storage.SaveAttempt(r.Context(), attempt); err != nil {
		h.logger.Error("Failed to save attempt", "user_id", attempt.UserID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save attempt")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, attempt)
}

func (h *AttemptHandler) handleList(w http.ResponseWriter, r *http.Request, userID string) {
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "User ID is required in URL path")
		return
	}

	attempts, err := h.storage.ListAttempts(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list attempts", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list attempts")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, attempts)
}
