// Package scoring tracks per-question mistakes during a playthrough
// and turns them into points and a completion summary.
package scoring

import (
	"math"

	"github.com/storyplay/engine/pkg/story"
)

// Basis is the scoring policy for one question kind: the points a
// clean answer is worth and the minimum award once solved.
type Basis struct {
	Base  int
	Floor int
}

// BasisFor returns the scoring policy for a question kind. Selection
// questions are worth more but can drop to zero; spatial questions are
// worth less but always award at least a point once solved.
func BasisFor(kind story.QuestionKind) Basis {
	switch kind {
	case story.DragDrop, story.Placement:
		return Basis{Base: 4, Floor: 1}
	default:
		return Basis{Base: 10, Floor: 0}
	}
}

// base returns the question's point value, honoring an explicit
// per-question override from the content.
func base(q *story.Question) int {
	if q.Points > 0 {
		return q.Points
	}
	return BasisFor(q.Kind).Base
}

// Tracker maintains per-question mistake counts. Counts only ever go
// up within a session; Restore replaces them wholesale when resuming.
type Tracker struct {
	mistakes map[string]int
	total    int
}

func NewTracker() *Tracker {
	return &Tracker{mistakes: make(map[string]int)}
}

// RecordMistake increments the counter for a question.
func (t *Tracker) RecordMistake(questionID string) {
	t.mistakes[questionID]++
	t.total++
}

// Mistakes returns the count recorded against one question.
func (t *Tracker) Mistakes(questionID string) int {
	return t.mistakes[questionID]
}

// Total returns the cumulative mistake count for the session.
func (t *Tracker) Total() int {
	return t.total
}

// PerQuestion returns a copy of the per-question counts, suitable for
// persistence payloads.
func (t *Tracker) PerQuestion() map[string]int {
	out := make(map[string]int, len(t.mistakes))
	for k, v := range t.mistakes {
		out[k] = v
	}
	return out
}

// Restore replaces the tracker's state from a saved progress record.
func (t *Tracker) Restore(perQuestion map[string]int, total int) {
	t.mistakes = make(map[string]int, len(perQuestion))
	for k, v := range perQuestion {
		t.mistakes[k] = v
	}
	t.total = total
}

// Earned computes the points awarded for a question given the recorded
// mistakes: base minus mistakes, clamped to the kind's floor. Never
// negative.
func (t *Tracker) Earned(q *story.Question) int {
	b := BasisFor(q.Kind)
	pts := base(q) - t.mistakes[q.ID]
	if pts < b.Floor {
		pts = b.Floor
	}
	if pts < 0 {
		pts = 0
	}
	return pts
}

// Summary is the story-completion score. Computed once when the story
// finishes; not persisted beyond the attempt record.
type Summary struct {
	TotalQuestions int     `json:"total_questions"`
	PossiblePoints int     `json:"possible_points"`
	EarnedPoints   int     `json:"earned_points"`
	Percentage     float64 `json:"percentage"` // Rounded to 2 decimals
	WrongAttempts  int     `json:"wrong_attempts"`
}

// Summarize computes the story-level score across all questions.
func (t *Tracker) Summarize(questions []*story.Question) Summary {
	s := Summary{
		TotalQuestions: len(questions),
		WrongAttempts:  t.total,
	}
	for _, q := range questions {
		s.PossiblePoints += base(q)
		s.EarnedPoints += t.Earned(q)
	}
	if s.PossiblePoints > 0 {
		s.Percentage = math.Round(float64(s.EarnedPoints)/float64(s.PossiblePoints)*10000) / 100
	}
	return s
}
