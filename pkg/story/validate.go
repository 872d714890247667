package story

import (
	"fmt"
	"strings"
)

// SequenceLength is the fixed tile count for sequence questions.
const SequenceLength = 4

// Validate checks the story header and scene references. Full scenes
// are validated individually as they are authored and loaded.
func (s *Story) Validate() error {
	var errs []string

	if s.ID == "" {
		errs = append(errs, "story id is required")
	}
	if len(s.Scenes) == 0 {
		errs = append(errs, "story must have at least one scene")
	}

	seen := make(map[int]string, len(s.Scenes))
	for _, ref := range s.Scenes {
		if ref.SceneID == "" {
			errs = append(errs, "scene reference with empty scene_id")
			continue
		}
		if prev, ok := seen[ref.Order]; ok {
			errs = append(errs, fmt.Sprintf("scenes %q and %q share order %d", prev, ref.SceneID, ref.Order))
		}
		seen[ref.Order] = ref.SceneID
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid story %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a full scene descriptor.
func (s *Scene) Validate() error {
	var errs []string

	if s.ID == "" {
		errs = append(errs, "scene id is required")
	}

	names := make(map[string]bool, len(s.Assets))
	for _, a := range s.Assets {
		if a.Name == "" {
			errs = append(errs, "asset with empty name")
			continue
		}
		if names[a.Name] {
			errs = append(errs, fmt.Sprintf("duplicate asset name %q", a.Name))
		}
		names[a.Name] = true
		if !a.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("asset %q has unknown kind %q", a.Name, a.Kind))
		}
	}

	if s.Question != nil {
		if err := s.Question.validateAgainst(names); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid scene %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

func (q *Question) validateAgainst(assetNames map[string]bool) error {
	var errs []string

	if q.ID == "" {
		errs = append(errs, "question id is required")
	}
	if !q.Kind.Valid() {
		errs = append(errs, fmt.Sprintf("unknown question kind %q", q.Kind))
	}
	if len(q.Answers) == 0 {
		errs = append(errs, "question has no answers")
	}
	if q.CorrectCount() == 0 {
		errs = append(errs, "question has no correct answer")
	}

	switch q.Kind {
	case DragDrop, Placement:
		for _, a := range q.Answers {
			if a.AssetName == "" {
				errs = append(errs, fmt.Sprintf("answer %q is missing asset_name", a.ID))
			} else if !assetNames[a.AssetName] {
				errs = append(errs, fmt.Sprintf("answer %q references unknown asset %q", a.ID, a.AssetName))
			}
		}
	case Sequence:
		if len(q.Answers) != SequenceLength {
			errs = append(errs, fmt.Sprintf("sequence question needs exactly %d answers, has %d", SequenceLength, len(q.Answers)))
		}
		indexes := make(map[int]bool, len(q.Answers))
		for _, a := range q.Answers {
			if a.OrderIndex < 1 || a.OrderIndex > len(q.Answers) {
				errs = append(errs, fmt.Sprintf("answer %q has order_index %d out of range", a.ID, a.OrderIndex))
				continue
			}
			if indexes[a.OrderIndex] {
				errs = append(errs, fmt.Sprintf("duplicate order_index %d", a.OrderIndex))
			}
			indexes[a.OrderIndex] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question %q: %s", q.ID, strings.Join(errs, "; "))
	}
	return nil
}
