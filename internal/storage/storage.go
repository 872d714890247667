package storage

import (
	"context"
	"errors"

	"github.com/storyplay/engine/pkg/progress"
	"github.com/storyplay/engine/pkg/story"
)

// ErrNotFound is returned when a requested story or scene does not
// exist. Missing progress records are not errors; those return nil.
var ErrNotFound = errors.New("not found")

// Storage defines a unified interface for all storage operations.
// It combines progress persistence (Redis) with story content loading
// (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Story operations (filesystem-backed)
	ListStories(ctx context.Context) ([]story.Story, error)
	GetStory(ctx context.Context, storyID string) (*story.Story, error)
	ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error)
	GetScene(ctx context.Context, sceneID string) (*story.Scene, error)

	// Progress operations (Redis-backed). GetProgress returns
	// (nil, nil) when no record exists.
	GetProgress(ctx context.Context, userID, storyID string) (*progress.Progress, error)
	SaveProgress(ctx context.Context, p *progress.Progress) error
	DeleteProgress(ctx context.Context, userID, storyID string) error

	// Attempt operations (Redis-backed, most recent first)
	SaveAttempt(ctx context.Context, attempt progress.Attempt) error
	ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error)
}
