package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forestTaleJSON = `{
	"id": "forest-tale",
	"title": "The Forest Tale",
	"scenes": [
		{
			"id": "forest-s2",
			"order": 1,
			"dialogue": {"speaker": "Fox", "text": "This way!"}
		},
		{
			"id": "forest-s1",
			"order": 0,
			"dialogue": {"speaker": "Narrator", "text": "Once upon a time."},
			"assets": [
				{"name": "bg", "kind": "background", "file": "forest.png"}
			]
		}
	]
}`

const oceanTaleJSON = `{
	"id": "ocean-tale",
	"title": "The Ocean Tale",
	"scenes": [
		{"id": "ocean-s1", "order": 0}
	]
}`

func writeStoryFiles(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	storiesDir := filepath.Join(dataDir, "stories")
	require.NoError(t, os.MkdirAll(storiesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "forest.json"), []byte(forestTaleJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "ocean.json"), []byte(oceanTaleJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "notes.txt"), []byte("ignore me"), 0o644))
	return dataDir
}

func TestRedisStorage_ListStories(t *testing.T) {
	s := newTestStorage(t, writeStoryFiles(t))

	stories, err := s.ListStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 2, "broken and non-json files are skipped")

	assert.Equal(t, "forest-tale", stories[0].ID)
	assert.Equal(t, "ocean-tale", stories[1].ID)

	// Scene refs are ordered by scene_order regardless of file order
	require.Len(t, stories[0].Scenes, 2)
	assert.Equal(t, "forest-s1", stories[0].Scenes[0].SceneID)
	assert.Equal(t, "forest-s2", stories[0].Scenes[1].SceneID)
}

func TestRedisStorage_GetStory(t *testing.T) {
	s := newTestStorage(t, writeStoryFiles(t))
	ctx := context.Background()

	got, err := s.GetStory(ctx, "ocean-tale")
	require.NoError(t, err)
	assert.Equal(t, "The Ocean Tale", got.Title)

	_, err = s.GetStory(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisStorage_ListScenes(t *testing.T) {
	s := newTestStorage(t, writeStoryFiles(t))

	refs, err := s.ListScenes(context.Background(), "forest-tale")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, 0, refs[0].Order)
	assert.Equal(t, 1, refs[1].Order)
}

func TestRedisStorage_GetScene(t *testing.T) {
	s := newTestStorage(t, writeStoryFiles(t))
	ctx := context.Background()

	scene, err := s.GetScene(ctx, "forest-s1")
	require.NoError(t, err)
	assert.Equal(t, 0, scene.Order)
	require.NotNil(t, scene.Dialogue)
	assert.Equal(t, "Once upon a time.", scene.Dialogue.Text)
	require.Len(t, scene.Assets, 1)
	assert.Equal(t, "bg", scene.Assets[0].Name)

	// Scene lookup crosses story files
	scene, err = s.GetScene(ctx, "ocean-s1")
	require.NoError(t, err)
	assert.Equal(t, "ocean-s1", scene.ID)

	_, err = s.GetScene(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
