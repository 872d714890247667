package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyplay/engine/pkg/progress"
	"github.com/storyplay/engine/pkg/story"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	stories   map[string]*story.Story
	scenes    map[string]*story.Scene
	progress  map[string]*progress.Progress
	attempts  map[string][]progress.Attempt
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		stories:  make(map[string]*story.Story),
		scenes:   make(map[string]*story.Scene),
		progress: make(map[string]*progress.Progress),
		attempts: make(map[string][]progress.Attempt),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures progress and attempt writes to fail
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddStory registers a story and its full scenes
func (m *MockStorage) AddStory(s *story.Story, scenes ...*story.Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories[s.ID] = s
	for _, scene := range scenes {
		m.scenes[scene.ID] = scene
	}
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) ListStories(ctx context.Context) ([]story.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]story.Story, 0, len(m.stories))
	for _, s := range m.stories {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStorage) GetStory(ctx context.Context, storyID string) (*story.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %s: %w", storyID, ErrNotFound)
	}
	return s, nil
}

func (m *MockStorage) ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error) {
	s, err := m.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return s.Scenes, nil
}

func (m *MockStorage) GetScene(ctx context.Context, sceneID string) (*story.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scene, ok := m.scenes[sceneID]
	if !ok {
		return nil, fmt.Errorf("scene %s: %w", sceneID, ErrNotFound)
	}
	return scene, nil
}

func (m *MockStorage) GetProgress(ctx context.Context, userID, storyID string) (*progress.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[userID+":"+storyID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MockStorage) SaveProgress(ctx context.Context, p *progress.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.progress[p.UserID+":"+p.StoryID] = &cp
	return nil
}

func (m *MockStorage) DeleteProgress(ctx context.Context, userID, storyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.progress, userID+":"+storyID)
	return nil
}

func (m *MockStorage) SaveAttempt(ctx context.Context, attempt progress.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	m.attempts[attempt.UserID] = append([]progress.Attempt{attempt}, m.attempts[attempt.UserID]...)
	return nil
}

func (m *MockStorage) ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]progress.Attempt(nil), m.attempts[userID]...), nil
}
