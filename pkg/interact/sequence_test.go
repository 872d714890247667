package interact

import (
	"math/rand/v2"
	"testing"

	"github.com/storyplay/engine/pkg/scoring"
	"github.com/storyplay/engine/pkg/story"
)

func sequenceQuestion() *story.Question {
	return &story.Question{
		ID:   "q-seq",
		Kind: story.Sequence,
		Answers: []story.Answer{
			{ID: "A", Text: "Cast off", Correct: true, OrderIndex: 1},
			{ID: "B", Text: "Raise sail", Correct: true, OrderIndex: 2},
			{ID: "C", Text: "Catch the wind", Correct: true, OrderIndex: 3},
			{ID: "D", Text: "Drop anchor", Correct: true, OrderIndex: 4},
		},
	}
}

func newSeq(t *testing.T, tr *scoring.Tracker) *SequenceEngine {
	t.Helper()
	e, err := NewSequenceEngineRand(sequenceQuestion(), tr, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("NewSequenceEngine: %v", err)
	}
	return e
}

func TestSequenceEngine_AssignAndRelease(t *testing.T) {
	e := newSeq(t, scoring.NewTracker())

	e.Toggle("C")
	if e.Slot("C") != 1 {
		t.Errorf("First toggle should take slot 1, got %d", e.Slot("C"))
	}
	e.Toggle("A")
	if e.Slot("A") != 2 {
		t.Errorf("Second toggle should take slot 2, got %d", e.Slot("A"))
	}

	// Releasing C returns slot 1 to the pool; the next assignment
	// takes it again as the lowest free slot.
	e.Toggle("C")
	if e.Slot("C") != 0 {
		t.Error("Toggling an assigned tile should release its slot")
	}
	e.Toggle("B")
	if e.Slot("B") != 1 {
		t.Errorf("Expected released slot 1 to be reused, got %d", e.Slot("B"))
	}

	if e.CanSubmit() {
		t.Error("Submit must stay disabled until all four slots are assigned")
	}
	if _, err := e.Submit(); err != ErrIncomplete {
		t.Errorf("Expected ErrIncomplete, got %v", err)
	}
}

func TestSequenceEngine_PartialSubmit(t *testing.T) {
	tr := scoring.NewTracker()
	e := newSeq(t, tr)

	// A:1 B:2 C:4 D:3 against authoritative 1,2,3,4.
	e.Toggle("A") // slot 1
	e.Toggle("B") // slot 2
	e.Toggle("D") // slot 3
	e.Toggle("C") // slot 4

	if !e.CanSubmit() {
		t.Fatal("Expected submit to be enabled with all slots assigned")
	}

	res, err := e.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.CorrectCount != 2 || res.WrongCount != 2 {
		t.Errorf("Expected 2 correct / 2 wrong, got %d/%d", res.CorrectCount, res.WrongCount)
	}
	if res.Complete {
		t.Error("Partial success must not complete the question")
	}

	// One mistake per submission, not per wrong tile.
	if tr.Mistakes("q-seq") != 1 {
		t.Errorf("Expected 1 mistake for the submission, got %d", tr.Mistakes("q-seq"))
	}

	// A and B locked with their slots retired; only 3 and 4 remain.
	if !e.Locked("A") || !e.Locked("B") {
		t.Error("Matching tiles must lock")
	}
	if e.Locked("C") || e.Locked("D") {
		t.Error("Mismatched tiles must not lock")
	}
	if e.Slot("C") != 0 || e.Slot("D") != 0 {
		t.Error("Mismatched tiles must be unassigned")
	}
	free := e.AvailableSlots()
	if len(free) != 2 || free[0] != 3 || free[1] != 4 {
		t.Errorf("Expected available slots [3 4], got %v", free)
	}

	// Locked tiles are inert.
	e.Toggle("A")
	if e.Slot("A") != 1 {
		t.Error("Locked tile must keep its slot")
	}

	// Fix the remaining two and finish.
	e.Toggle("C") // slot 3
	e.Toggle("D") // slot 4
	res, err = e.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.CorrectCount != 2 || res.WrongCount != 0 || !res.Complete {
		t.Errorf("Expected clean completion, got %+v", res)
	}
	if !e.Complete() {
		t.Error("Engine should be complete")
	}
	if tr.Mistakes("q-seq") != 1 {
		t.Errorf("Clean submission must not add a mistake, got %d", tr.Mistakes("q-seq"))
	}

	if _, err := e.Submit(); err != ErrLocked {
		t.Errorf("Expected ErrLocked after completion, got %v", err)
	}
}

func TestSequenceEngine_AllCorrectFirstTry(t *testing.T) {
	tr := scoring.NewTracker()
	e := newSeq(t, tr)

	e.Toggle("A")
	e.Toggle("B")
	e.Toggle("C")
	e.Toggle("D")

	res, err := e.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.CorrectCount != 4 || res.WrongCount != 0 || !res.Complete {
		t.Errorf("Expected 4/0 complete, got %+v", res)
	}
	if tr.Total() != 0 {
		t.Errorf("Expected no mistakes, got %d", tr.Total())
	}
}

func TestSequenceEngine_DisplayShuffled(t *testing.T) {
	e := newSeq(t, scoring.NewTracker())
	if len(e.Display()) != 4 {
		t.Fatalf("Expected 4 display tiles, got %d", len(e.Display()))
	}
	seen := make(map[string]bool)
	for _, id := range e.Display() {
		seen[id] = true
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		if !seen[id] {
			t.Errorf("Display order is missing tile %s", id)
		}
	}
}
