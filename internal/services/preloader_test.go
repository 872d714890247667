package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyplay/engine/pkg/story"
)

type stubCatalog struct {
	mu     sync.Mutex
	scenes map[string]*story.Scene
	loads  []string
}

func (c *stubCatalog) ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error) {
	return nil, nil
}

func (c *stubCatalog) LoadScene(ctx context.Context, sceneID string) (*story.Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads = append(c.loads, sceneID)
	scene, ok := c.scenes[sceneID]
	if !ok {
		return nil, fmt.Errorf("%w: no scene %s", ErrContentLoad, sceneID)
	}
	return scene, nil
}

func TestAssetPreloader_WarmsRenderableAssets(t *testing.T) {
	var mu sync.Mutex
	fetched := make(map[string]int)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetched[r.URL.Path]++
		mu.Unlock()
		_, _ = w.Write([]byte("bytes"))
	}))
	defer server.Close()

	catalog := &stubCatalog{scenes: map[string]*story.Scene{
		"s1": {
			ID: "s1",
			Assets: []story.Asset{
				{Name: "bg", Kind: story.AssetBackground, File: "forest.png"},
				{Name: "fox", Kind: story.AssetSprite, File: "fox.png"},
				{Name: "caption", Kind: story.AssetText, File: "caption.txt"}, // Text is never preloaded
				{Name: "broken", Kind: story.AssetSprite},                     // No file reference
			},
		},
	}}
	cache := NewMockCache()
	pre := NewAssetPreloader(catalog, cache, server.URL, testLogger())

	pre.Preload(context.Background(), []string{"s1"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fetched["/assets/forest.png"])
	assert.Equal(t, 1, fetched["/assets/fox.png"])
	assert.Zero(t, fetched["/assets/caption.txt"])

	val, err := cache.Get(context.Background(), "preload:s1:bg")
	require.NoError(t, err)
	assert.Equal(t, "bytes", val)
}

func TestAssetPreloader_SkipsCachedAssets(t *testing.T) {
	var mu sync.Mutex
	var fetches int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetches++
		mu.Unlock()
		_, _ = w.Write([]byte("bytes"))
	}))
	defer server.Close()

	catalog := &stubCatalog{scenes: map[string]*story.Scene{
		"s1": {
			ID: "s1",
			Assets: []story.Asset{
				{Name: "bg", Kind: story.AssetBackground, File: "forest.png"},
			},
		},
	}}
	cache := NewMockCache()
	pre := NewAssetPreloader(catalog, cache, server.URL, testLogger())

	pre.Preload(context.Background(), []string{"s1"})
	pre.Preload(context.Background(), []string{"s1"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fetches, "second preload should hit the cache")
}

func TestAssetPreloader_FailuresAreSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	catalog := &stubCatalog{scenes: map[string]*story.Scene{
		"ok": {
			ID: "ok",
			Assets: []story.Asset{
				{Name: "bg", Kind: story.AssetBackground, File: "missing.png"},
			},
		},
	}}
	cache := NewMockCache()
	cache.ExistsFunc = func(ctx context.Context, key string) (bool, error) {
		return false, errors.New("cache down")
	}
	pre := NewAssetPreloader(catalog, cache, server.URL, testLogger())

	// Unknown scene, failing cache, 404 assets: none of it should panic
	// or surface an error.
	pre.Preload(context.Background(), []string{"unknown", "ok"})
}
