package story

import "github.com/storyplay/engine/pkg/geom"

// QuestionKind discriminates the four interactive challenge types.
type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple_choice"
	DragDrop       QuestionKind = "drag_drop"
	Placement      QuestionKind = "placement"
	Sequence       QuestionKind = "sequence"
)

// Valid reports whether k is a known question kind.
func (k QuestionKind) Valid() bool {
	switch k {
	case MultipleChoice, DragDrop, Placement, Sequence:
		return true
	}
	return false
}

// Spatial reports whether answers carry positions and are validated by
// hit test rather than selection.
func (k QuestionKind) Spatial() bool {
	return k == DragDrop || k == Placement
}

// Question is an interactive challenge attached to a scene.
type Question struct {
	ID      string       `json:"id"`
	Kind    QuestionKind `json:"kind"`
	Prompt  string       `json:"prompt"`
	Points  int          `json:"points,omitempty"` // 0 means the kind's default
	Answers []Answer     `json:"answers"`
}

// Answer is one candidate entry for a question. For spatial kinds the
// answer names the draggable asset and optionally its own target
// position; sequence answers carry their authoritative order index.
type Answer struct {
	ID         string      `json:"id"`
	Text       string      `json:"text,omitempty"`
	Correct    bool        `json:"correct"`
	AssetName  string      `json:"asset_name,omitempty"`
	Target     *geom.Point `json:"target,omitempty"`
	OrderIndex int         `json:"order_index,omitempty"` // 1-based, sequence questions only
}

// CorrectCount returns the number of correct answers.
func (q *Question) CorrectCount() int {
	n := 0
	for _, a := range q.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// Answer returns the answer with the given ID, or nil.
func (q *Question) Answer(id string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}

// AnswerForAsset returns the answer bound to the named draggable
// sprite, or nil.
func (q *Question) AnswerForAsset(name string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].AssetName == name {
			return &q.Answers[i]
		}
	}
	return nil
}
