// Package interact implements the answer-validation engines for the
// four question kinds. Each engine validates one candidate answer at a
// time, reports wrong attempts to the mistake tracker, and exposes a
// Complete flag the session uses to advance the scene.
package interact

import (
	"errors"
	"fmt"

	"github.com/storyplay/engine/pkg/story"
)

// Reporter receives wrong-attempt events. *scoring.Tracker satisfies
// it; the session wraps it to also persist wrong-answer events.
type Reporter interface {
	RecordMistake(questionID string)
}

// Engine is the contract shared by all four interaction engines.
type Engine interface {
	// Question returns the question this engine validates.
	Question() *story.Question

	// Complete reports whether the question is fully answered and
	// locked. Once complete, further input is inert.
	Complete() bool
}

var (
	// ErrKindMismatch is returned when an engine is built for a
	// question of the wrong kind.
	ErrKindMismatch = errors.New("question kind does not match engine")

	// ErrLocked is returned for input against a completed question.
	ErrLocked = errors.New("question is locked")

	// ErrNoDropTarget is returned when a spatial question's scene has
	// no asset marked as the drop target.
	ErrNoDropTarget = errors.New("scene has no drop target")

	// ErrIncomplete is returned when a sequence is submitted before
	// every slot is assigned.
	ErrIncomplete = errors.New("sequence is not fully assigned")
)

// New builds the engine matching the question's kind. Spatial kinds
// need the viewport to run their hit tests.
func New(q *story.Question, scene *story.Scene, opts Options, reporter Reporter) (Engine, error) {
	switch q.Kind {
	case story.MultipleChoice:
		return NewChoiceEngine(q, reporter)
	case story.DragDrop:
		return NewDragEngine(q, scene, opts, reporter)
	case story.Placement:
		return NewPlacementEngine(q, scene, opts, reporter)
	case story.Sequence:
		return NewSequenceEngine(q, reporter)
	default:
		return nil, fmt.Errorf("unknown question kind %q", q.Kind)
	}
}
