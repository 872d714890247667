package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/storyplay/engine/internal/config"
	"github.com/storyplay/engine/internal/logger"
	"github.com/storyplay/engine/internal/services"
	"github.com/storyplay/engine/pkg/effects"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	// Settings and preloaded assets live in Redis when CACHE_URL is
	// set, so they survive restarts; otherwise in process memory.
	var cache services.Cache = services.NewMemoryCache()
	if cfg.CacheURL != "" {
		redisCache := services.NewRedisService(cfg.CacheURL, log)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCache.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Warn("Cache Redis unreachable, using in-memory cache", "cache_url", cfg.CacheURL, "error", err)
		} else {
			cache = redisCache
			defer func() {
				_ = redisCache.Close()
			}()
		}
	}

	var (
		content     storyCatalog
		progressSvc progressClient
	)
	if cfg.StoryFile != "" {
		catalog, err := services.NewFileCatalog(cfg.StoryFile, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load story file: %v\n", err)
			os.Exit(1)
		}
		content = catalog
		progressSvc = services.NewLocalProgress(cache, log)
	} else {
		if !testConnection(cfg.APIBaseURL) {
			fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\nTry: docker-compose up -d\n", cfg.APIBaseURL)
			os.Exit(1)
		}
		content = services.NewContentService(cfg.APIBaseURL, log)
		progressSvc = services.NewProgressService(cfg.APIBaseURL, log)
	}

	preloader := services.NewAssetPreloader(content, cache, cfg.APIBaseURL, log)
	settings := services.NewSettings(cache)

	// The scheduler feeds effect callbacks through the BubbleTea
	// program so they are serialized with user input.
	var program *tea.Program
	scheduler := effects.NewScheduler(func(fn func()) {
		if program != nil {
			program.Send(effectMsg{fn: fn})
		}
	}, log)

	ui := NewConsoleUI(cfg, log, content, progressSvc, preloader, settings, scheduler)
	program = tea.NewProgram(ui, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func testConnection(baseURL string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}
