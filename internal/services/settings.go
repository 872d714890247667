package services

import (
	"context"
	"fmt"
	"strconv"
)

// Settings persists player preferences (mute, volume, language, active
// user) in the cache. Missing keys fall back to defaults so a fresh
// install needs no seeding.
type Settings struct {
	cache Cache
}

// Default preference values for a fresh player.
const (
	DefaultVolume   = 1.0
	DefaultLanguage = "en"
)

// NewSettings creates a settings store on top of cache.
func NewSettings(cache Cache) *Settings {
	return &Settings{cache: cache}
}

func settingsKey(field string) string {
	return "settings:" + field
}

// Muted reports whether audio is muted.
func (s *Settings) Muted(ctx context.Context) (bool, error) {
	val, err := s.cache.Get(ctx, settingsKey("muted"))
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

// SetMuted stores the mute flag.
func (s *Settings) SetMuted(ctx context.Context, muted bool) error {
	return s.cache.Set(ctx, settingsKey("muted"), strconv.FormatBool(muted), 0)
}

// Volume returns the master volume in [0, 1].
func (s *Settings) Volume(ctx context.Context) (float64, error) {
	val, err := s.cache.Get(ctx, settingsKey("volume"))
	if err != nil {
		return 0, err
	}
	if val == "" {
		return DefaultVolume, nil
	}
	vol, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid stored volume %q: %w", val, err)
	}
	return vol, nil
}

// SetVolume stores the master volume, clamped to [0, 1].
func (s *Settings) SetVolume(ctx context.Context, vol float64) error {
	if vol < 0 {
		vol = 0
	}
	if vol > 1 {
		vol = 1
	}
	return s.cache.Set(ctx, settingsKey("volume"), strconv.FormatFloat(vol, 'f', -1, 64), 0)
}

// Language returns the preferred dialogue language code.
func (s *Settings) Language(ctx context.Context) (string, error) {
	val, err := s.cache.Get(ctx, settingsKey("language"))
	if err != nil {
		return "", err
	}
	if val == "" {
		return DefaultLanguage, nil
	}
	return val, nil
}

// SetLanguage stores the preferred dialogue language code.
func (s *Settings) SetLanguage(ctx context.Context, lang string) error {
	return s.cache.Set(ctx, settingsKey("language"), lang, 0)
}

// ActiveUser returns the last signed-in user ID, empty if none.
func (s *Settings) ActiveUser(ctx context.Context) (string, error) {
	return s.cache.Get(ctx, settingsKey("active_user"))
}

// SetActiveUser stores the signed-in user ID.
func (s *Settings) SetActiveUser(ctx context.Context, userID string) error {
	return s.cache.Set(ctx, settingsKey("active_user"), userID, 0)
}
