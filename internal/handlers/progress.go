package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storyplay/engine/internal/storage"
	"github.com/storyplay/engine/pkg/progress"
)

// ProgressHandler owns the progress lifecycle.
// Routes:
// GET  /v1/progress/check?user_id=&story_id= - Check for saved progress
// POST /v1/progress/continue                 - Resume saved progress
// POST /v1/progress/restart                  - Discard and start fresh
// POST /v1/progress/scene                    - Persist a scene transition
// POST /v1/progress/wrong-answer             - Persist a mistake event
type ProgressHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewProgressHandler(logger *slog.Logger, storage storage.Storage) *ProgressHandler {
	return &ProgressHandler{
		storage: storage,
		logger:  logger,
	}
}

// progressRequest is the continue/restart request body.
type progressRequest struct {
	UserID  string `json:"user_id"`
	StoryID string `json:"story_id"`
}

func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	op := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/progress"), "/")

	switch {
	case op == "check" && r.Method == http.MethodGet:
		h.handleCheck(w, r)
	case op == "continue" && r.Method == http.MethodPost:
		h.handleContinue(w, r)
	case op == "restart" && r.Method == http.MethodPost:
		h.handleRestart(w, r)
	case op == "scene" && r.Method == http.MethodPost:
		h.handleSave(w, r, false)
	case op == "wrong-answer" && r.Method == http.MethodPost:
		h.handleSave(w, r, true)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

// handleCheck reports whether saved progress exists. It never mutates
// the record; checking twice returns the same snapshot.
func (h *ProgressHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	storyID := r.URL.Query().Get("story_id")
	if userID == "" || storyID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_id and story_id are required")
		return
	}

	p, err := h.storage.GetProgress(r.Context(), userID, storyID)
	if err != nil {
		h.logger.Error("Failed to check progress", "user_id", userID, "story_id", storyID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to check progress")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, progress.SnapshotOf(p))
}

func (h *ProgressHandler) handleContinue(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	p, err := h.storage.GetProgress(r.Context(), req.UserID, req.StoryID)
	if err != nil {
		h.logger.Error("Failed to load progress", "user_id", req.UserID, "story_id", req.StoryID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, progress.SnapshotOf(p))
}

// handleRestart discards any saved record and answers with a fresh
// zeroed snapshot. Restarting with no saved record is equivalent to a
// first play.
func (h *ProgressHandler) handleRestart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteProgress(r.Context(), req.UserID, req.StoryID); err != nil {
		h.logger.Error("Failed to delete progress", "user_id", req.UserID, "story_id", req.StoryID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restart progress")
		return
	}

	fresh := progress.New(req.UserID, req.StoryID)
	if err := h.storage.SaveProgress(r.Context(), fresh); err != nil {
		h.logger.Error("Failed to save fresh progress", "user_id", req.UserID, "story_id", req.StoryID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restart progress")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, progress.SnapshotOf(fresh))
}

// handleSave persists a scene transition or a mistake event. The
// wrong-answer path never touches banked points; mistakes only ever
// add to mistake counts.
func (h *ProgressHandler) handleSave(w http.ResponseWriter, r *http.Request, wrongAnswer bool) {
	var save progress.SceneSave
	if err := json.NewDecoder(r.Body).Decode(&save); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if save.UserID == "" || save.StoryID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_id and story_id are required")
		return
	}

	p, err := h.storage.GetProgress(r.Context(), save.UserID, save.StoryID)
	if err != nil {
		h.logger.Error("Failed to load progress", "user_id", save.UserID, "story_id", save.StoryID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save progress")
		return
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

	if err := h.storage.SaveProgress(r.Context(), p); err != nil {
		h.logger.Error("Failed to save progress", "user_id", save.UserID, "story_id", save.StoryID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save progress")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, progress.SnapshotOf(p))
}

func (h *ProgressHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (progressRequest, bool) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.UserID == "" || req.StoryID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_id and story_id are required")
		return req, false
	}
	return req, true
}
