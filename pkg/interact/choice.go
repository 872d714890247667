package interact

import (
	"github.com/storyplay/engine/pkg/story"
)

// ChoiceEngine validates multiple-choice questions. Selecting the
// correct choice locks the question; a wrong selection is marked and
// left inert but the question stays open for retries, each of which
// counts one mistake.
type ChoiceEngine struct {
	q        *story.Question
	reporter Reporter
	locked   bool
	marked   map[string]bool // wrong choices already tried
}

// ChoiceResult is the outcome of one selection.
type ChoiceResult struct {
	Correct bool
	Locked  bool // question completed by this or an earlier selection
	Marked  bool // choice was already marked wrong; input ignored
}

func NewChoiceEngine(q *story.Question, reporter Reporter) (*ChoiceEngine, error) {
	if q.Kind != story.MultipleChoice {
		return nil, ErrKindMismatch
	}
	return &ChoiceEngine{
		q:        q,
		reporter: reporter,
		marked:   make(map[string]bool),
	}, nil
}

func (e *ChoiceEngine) Question() *story.Question { return e.q }

func (e *ChoiceEngine) Complete() bool { return e.locked }

// MarkedWrong reports whether a choice has been tried and rejected.
func (e *ChoiceEngine) MarkedWrong(answerID string) bool {
	return e.marked[answerID]
}

// Select validates one choice. Input against a locked question or an
// already-marked choice is inert.
func (e *ChoiceEngine) Select(answerID string) ChoiceResult {
	if e.locked {
		return ChoiceResult{Locked: true}
	}
	if e.marked[answerID] {
		return ChoiceResult{Marked: true}
	}

	a := e.q.Answer(answerID)
	if a == nil {
		return ChoiceResult{}
	}

	if a.Correct {
		e.locked = true
		return ChoiceResult{Correct: true, Locked: true}
	}

	e.marked[answerID] = true
	e.reporter.RecordMistake(e.q.ID)
	return ChoiceResult{Marked: true}
}
