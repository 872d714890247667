package story

import (
	"time"

	"github.com/storyplay/engine/pkg/geom"
)

// AssetKind discriminates the asset union. Every asset carries exactly
// one kind; behavior flags live in AssetMeta.
type AssetKind string

const (
	AssetBackground AssetKind = "background"
	AssetSprite     AssetKind = "sprite"
	AssetAudio      AssetKind = "audio"
	AssetText       AssetKind = "text"
)

// Valid reports whether k is a known asset kind.
func (k AssetKind) Valid() bool {
	switch k {
	case AssetBackground, AssetSprite, AssetAudio, AssetText:
		return true
	}
	return false
}

// Asset is a positioned resource within a scene. Position uses the
// logical -10..+10 space on both axes.
type Asset struct {
	Name string     `json:"name"` // Unique within the scene
	Kind AssetKind  `json:"kind"`
	File string     `json:"file"` // File reference; empty files are skipped at render time
	Pos  geom.Point `json:"pos"`
	Meta AssetMeta  `json:"meta,omitempty"`
}

// AssetMeta describes optional asset behavior. Zero values mean the
// behavior is absent.
type AssetMeta struct {
	AppearAfter    time.Duration `json:"appear_after,omitempty"`    // Delayed appearance
	DisappearAfter time.Duration `json:"disappear_after,omitempty"` // Scheduled disappearance
	Movement       *Movement     `json:"movement,omitempty"`
	Draggable      bool          `json:"draggable,omitempty"`
	DropTarget     bool          `json:"drop_target,omitempty"`
	Shake          *ShakeTrigger `json:"shake,omitempty"` // Screen shake when this asset is dropped/appears
	DimBackground  bool          `json:"dim_background,omitempty"`
	Scale          float64       `json:"scale,omitempty"`
	FlipX          bool          `json:"flip_x,omitempty"`
}

// Movement is a simple point-to-point animation.
type Movement struct {
	To       geom.Point    `json:"to"`
	Duration time.Duration `json:"duration"`
}

// ShakeTrigger describes a screen-shake effect request.
type ShakeTrigger struct {
	Duration  time.Duration `json:"duration"`
	Intensity float64       `json:"intensity"`
}

// Renderable reports whether the asset should be drawn. Assets with a
// missing file reference are silently skipped, never fatal.
func (a *Asset) Renderable() bool {
	return a.File != ""
}

// Preloadable reports whether the asset is worth warming in the media
// cache ahead of its scene.
func (a *Asset) Preloadable() bool {
	if a.File == "" {
		return false
	}
	return a.Kind == AssetBackground || a.Kind == AssetSprite || a.Kind == AssetAudio
}
