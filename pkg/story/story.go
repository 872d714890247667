package story

// Story is an ordered collection of scenes forming one playable
// experience. The catalog endpoint serves only the scene references;
// full scenes are loaded one at a time during playback.
type Story struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Scenes []SceneRef `json:"scenes"` // Ordered by SceneRef.Order
}

// SceneRef is a lightweight reference to a scene within a story.
type SceneRef struct {
	SceneID string `json:"scene_id"`
	Order   int    `json:"scene_order"` // Unique within a story, defines sequence
}

// Scene is one step of a story. It may show dialogue, sprites, and at
// most one question.
type Scene struct {
	ID       string    `json:"id"`
	Order    int       `json:"order"`
	Dialogue *Dialogue `json:"dialogue,omitempty"`
	Assets   []Asset   `json:"assets,omitempty"`
	Question *Question `json:"question,omitempty"`
}

// Dialogue is a single spoken line within a scene.
type Dialogue struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	VoiceClip string `json:"voice_clip,omitempty"` // Audio file reference, optional
}

// HasDialogue reports whether the scene shows a dialogue line. Scenes
// without dialogue open their question automatically.
func (s *Scene) HasDialogue() bool {
	return s.Dialogue != nil && s.Dialogue.Text != ""
}

// Draggables returns the scene's draggable sprites.
func (s *Scene) Draggables() []Asset {
	var out []Asset
	for _, a := range s.Assets {
		if a.Kind == AssetSprite && a.Meta.Draggable {
			out = append(out, a)
		}
	}
	return out
}

// DropTarget returns the asset marking the correct zone for a
// drag-based answer, or nil if the scene has none.
func (s *Scene) DropTarget() *Asset {
	for i := range s.Assets {
		if s.Assets[i].Meta.DropTarget {
			return &s.Assets[i]
		}
	}
	return nil
}

// Asset returns the named asset, or nil. Names are unique per scene.
func (s *Scene) Asset(name string) *Asset {
	for i := range s.Assets {
		if s.Assets[i].Name == name {
			return &s.Assets[i]
		}
	}
	return nil
}
