package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/storyplay/engine/pkg/story"
)

// storyDocument is the on-disk story format: metadata plus full scene
// bodies. The catalog endpoints serve derived views of it (scene refs
// without bodies, single scenes by ID).
type storyDocument struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Scenes []story.Scene `json:"scenes"`
}

func (d *storyDocument) refs() []story.SceneRef {
	refs := make([]story.SceneRef, 0, len(d.Scenes))
	for _, s := range d.Scenes {
		refs = append(refs, story.SceneRef{SceneID: s.ID, Order: s.Order})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })
	return refs
}

// Story operations (filesystem-backed)

func (r *RedisStorage) walkStories(visit func(doc *storyDocument) bool) error {
	storiesDir := filepath.Join(r.dataDir, "stories")

	return filepath.WalkDir(storiesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Failed to read story file", "path", path, "error", err)
			return nil
		}

		var doc storyDocument
		if err := json.Unmarshal(file, &doc); err != nil {
			r.logger.Warn("Failed to unmarshal story file", "path", path, "error", err)
			return nil
		}
		if doc.ID == "" {
			r.logger.Warn("Skipping story file without id", "path", path)
			return nil
		}

		if !visit(&doc) {
			return fs.SkipAll
		}
		return nil
	})
}

func (r *RedisStorage) ListStories(ctx context.Context) ([]story.Story, error) {
	var stories []story.Story
	err := r.walkStories(func(doc *storyDocument) bool {
		stories = append(stories, story.Story{
			ID:     doc.ID,
			Title:  doc.Title,
			Scenes: doc.refs(),
		})
		return true
	})
	if err != nil {
		r.logger.Error("Failed to walk stories directory", "error", err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	sort.Slice(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })
	return stories, nil
}

func (r *RedisStorage) GetStory(ctx context.Context, storyID string) (*story.Story, error) {
	var found *story.Story
	err := r.walkStories(func(doc *storyDocument) bool {
		if doc.ID != storyID {
			return true
		}
		found = &story.Story{
			ID:     doc.ID,
			Title:  doc.Title,
			Scenes: doc.refs(),
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("story %s: %w", storyID, ErrNotFound)
	}
	return found, nil
}

func (r *RedisStorage) ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error) {
	s, err := r.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return s.Scenes, nil
}

// GetScene looks a scene up by ID across all stories. Scene IDs are
// globally unique in the content set.
func (r *RedisStorage) GetScene(ctx context.Context, sceneID string) (*story.Scene, error) {
	var found *story.Scene
	err := r.walkStories(func(doc *storyDocument) bool {
		for i := range doc.Scenes {
			if doc.Scenes[i].ID == sceneID {
				scene := doc.Scenes[i]
				found = &scene
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("scene %s: %w", sceneID, ErrNotFound)
	}
	return found, nil
}
