package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/storyplay/engine/pkg/story"
)

// FileCatalog serves a single story straight from a local JSON file,
// so the console can play without a running API. The file holds the
// same document the server reads from its data directory.
type FileCatalog struct {
	doc    storyFile
	logger *slog.Logger
}

type storyFile struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Scenes []story.Scene `json:"scenes"`
}

// NewFileCatalog loads the story document at path.
func NewFileCatalog(path string, logger *slog.Logger) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read story file %s: %v", ErrContentLoad, path, err)
	}

	var doc storyFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse story file %s: %v", ErrContentLoad, path, err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: story file %s has no id", ErrContentLoad, path)
	}
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("%w: story file %s has no scenes", ErrContentLoad, path)
	}

	logger.Info("Loaded local story file", "path", path, "story_id", doc.ID, "scenes", len(doc.Scenes))
	return &FileCatalog{doc: doc, logger: logger}, nil
}

// ListStories returns the one local story.
func (f *FileCatalog) ListStories(ctx context.Context) ([]story.Story, error) {
	return []story.Story{{
		ID:     f.doc.ID,
		Title:  f.doc.Title,
		Scenes: f.refs(),
	}}, nil
}

// ListScenes returns the story's ordered scene references.
func (f *FileCatalog) ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error) {
	if storyID != f.doc.ID {
		return nil, fmt.Errorf("%w: unknown story %q", ErrContentLoad, storyID)
	}
	return f.refs(), nil
}

// LoadScene returns the full descriptor for one scene.
func (f *FileCatalog) LoadScene(ctx context.Context, sceneID string) (*story.Scene, error) {
	for i := range f.doc.Scenes {
		if f.doc.Scenes[i].ID == sceneID {
			scene := f.doc.Scenes[i]
			return &scene, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown scene %q", ErrContentLoad, sceneID)
}

func (f *FileCatalog) refs() []story.SceneRef {
	refs := make([]story.SceneRef, 0, len(f.doc.Scenes))
	for _, s := range f.doc.Scenes {
		refs = append(refs, story.SceneRef{SceneID: s.ID, Order: s.Order})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })
	return refs
}
