package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/storyplay/engine/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &StoryValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story file is valid!")
}

// storyDocument mirrors the on-disk story format served by the API:
// metadata plus full scene bodies.
type storyDocument struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Scenes []story.Scene `json:"scenes"`
}

type StoryValidator struct {
	errors []string
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("story file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidStoryFilename(nameWithoutExt) {
		return fmt.Errorf("story filename '%s' must be lowercase with hyphens or underscores (e.g., forest-tale.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var doc storyDocument
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateDocument(&doc)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *StoryValidator) validateDocument(doc *storyDocument) {
	if doc.ID == "" {
		v.addError("story id is required")
	}
	if doc.Title == "" {
		v.addError("story title is required")
	}
	if len(doc.Scenes) == 0 {
		v.addError("story must have at least one scene")
	}

	refs := make([]story.SceneRef, 0, len(doc.Scenes))
	seenIDs := make(map[string]bool)
	for i := range doc.Scenes {
		scene := &doc.Scenes[i]

		if seenIDs[scene.ID] {
			v.addError(fmt.Sprintf("duplicate scene ID %q", scene.ID))
		}
		seenIDs[scene.ID] = true

		if err := scene.Validate(); err != nil {
			v.addError(fmt.Sprintf("scene %q: %v", scene.ID, err))
		}

		v.validateAssetFiles(scene)
		refs = append(refs, story.SceneRef{SceneID: scene.ID, Order: scene.Order})
	}

	// Story-level checks reuse the shared validation (unique orders,
	// non-empty refs).
	s := story.Story{ID: doc.ID, Title: doc.Title, Scenes: refs}
	if err := s.Validate(); err != nil {
		v.addError(err.Error())
	}
}

func (v *StoryValidator) validateAssetFiles(scene *story.Scene) {
	for _, a := range scene.Assets {
		if a.File == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(a.File))
		switch a.Kind {
		case story.AssetBackground, story.AssetSprite:
			if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".webp" {
				v.addError(fmt.Sprintf("scene %q asset %q: unexpected image extension %q", scene.ID, a.Name, ext))
			}
		case story.AssetAudio:
			if ext != ".mp3" && ext != ".ogg" && ext != ".wav" {
				v.addError(fmt.Sprintf("scene %q asset %q: unexpected audio extension %q", scene.ID, a.Name, ext))
			}
		}
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var storyFilenamePattern = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

func isValidStoryFilename(name string) bool {
	return storyFilenamePattern.MatchString(name)
}
