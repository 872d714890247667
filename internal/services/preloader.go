package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/storyplay/engine/pkg/session"
	"github.com/storyplay/engine/pkg/story"
)

// preloadTTL bounds how long warmed assets stay cached. Scenes are
// replayed within a sitting, not across days.
const preloadTTL = 2 * time.Hour

// AssetPreloader warms the media cache for upcoming scenes so scene
// transitions never wait on downloads. Failures are logged and skipped;
// playback degrades to on-demand loading for any asset that did not
// warm.
type AssetPreloader struct {
	catalog session.Catalog
	cache   Cache
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// Ensure AssetPreloader implements session.Preloader
var _ session.Preloader = (*AssetPreloader)(nil)

// NewAssetPreloader creates a preloader that resolves scenes through
// catalog and fetches asset files from baseURL.
func NewAssetPreloader(catalog session.Catalog, cache Cache, baseURL string, logger *slog.Logger) *AssetPreloader {
	return &AssetPreloader{
		catalog: catalog,
		cache:   cache,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Preload warms every preloadable asset in the given scenes. Assets
// already cached are skipped.
func (a *AssetPreloader) Preload(ctx context.Context, sceneIDs []string) {
	for _, sceneID := range sceneIDs {
		scene, err := a.catalog.LoadScene(ctx, sceneID)
		if err != nil {
			a.logger.Warn("Preload skipped scene", "scene_id", sceneID, "error", err)
			continue
		}
		for _, asset := range scene.Assets {
			if !asset.Preloadable() {
				continue
			}
			a.warm(ctx, sceneID, asset)
		}
	}
}

func (a *AssetPreloader) warm(ctx context.Context, sceneID string, asset story.Asset) {
	key := preloadKey(sceneID, asset.Name)

	exists, err := a.cache.Exists(ctx, key)
	if err != nil {
		a.logger.Warn("Preload cache check failed", "key", key, "error", err)
		return
	}
	if exists {
		return
	}

	data, err := a.fetch(ctx, asset.File)
	if err != nil {
		a.logger.Warn("Preload fetch failed", "scene_id", sceneID, "asset", asset.Name, "error", err)
		return
	}

	if err := a.cache.Set(ctx, key, data, preloadTTL); err != nil {
		a.logger.Warn("Preload cache write failed", "key", key, "error", err)
	}
}

func (a *AssetPreloader) fetch(ctx context.Context, file string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/assets/%s", a.baseURL, url.PathEscape(file))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func preloadKey(sceneID, assetName string) string {
	return fmt.Sprintf("preload:%s:%s", sceneID, assetName)
}
