package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storyplay/engine/internal/storage"
)

// SceneHandler serves full scene descriptors.
// Routes:
// GET /v1/scenes/{id} - Read one scene by ID
type SceneHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSceneHandler(logger *slog.Logger, storage storage.Storage) *SceneHandler {
	return &SceneHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sceneID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenes"), "/")
	if sceneID == "" || strings.Contains(sceneID, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Scene ID is required in URL path")
		return
	}

	scene, err := h.storage.GetScene(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Scene not found")
			return
		}
		h.logger.Error("Failed to get scene", "scene_id", sceneID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve scene")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, scene)
}
