package interact

import (
	"math/rand/v2"

	"github.com/storyplay/engine/pkg/story"
)

// SequenceEngine validates tile-sequencing questions. Four tiles are
// shown in shuffled order; clicking an unlocked tile takes the lowest
// free slot, clicking an assigned tile gives its slot back. On submit,
// tiles whose slot matches their authoritative order lock, keeping
// their slot out of the pool; the rest are cleared for another
// attempt. A submission with any wrong tile counts exactly one
// mistake, not one per wrong tile.
type SequenceEngine struct {
	q        *story.Question
	reporter Reporter
	display  []string       // answer IDs in shuffled display order
	assigned map[string]int // answer ID -> slot (1-based); locked tiles stay assigned
	locked   map[string]bool
	complete bool
}

// SubmitResult is the outcome of one submission.
type SubmitResult struct {
	CorrectCount int
	WrongCount   int
	Complete     bool
}

func NewSequenceEngine(q *story.Question, reporter Reporter) (*SequenceEngine, error) {
	return newSequenceEngine(q, reporter, nil)
}

// NewSequenceEngineRand is NewSequenceEngine with a fixed random
// source, for deterministic tests.
func NewSequenceEngineRand(q *story.Question, reporter Reporter, r *rand.Rand) (*SequenceEngine, error) {
	return newSequenceEngine(q, reporter, r)
}

func newSequenceEngine(q *story.Question, reporter Reporter, r *rand.Rand) (*SequenceEngine, error) {
	if q.Kind != story.Sequence {
		return nil, ErrKindMismatch
	}

	display := make([]string, len(q.Answers))
	for i, a := range q.Answers {
		display[i] = a.ID
	}
	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	shuffle(len(display), func(i, j int) { display[i], display[j] = display[j], display[i] })

	return &SequenceEngine{
		q:        q,
		reporter: reporter,
		display:  display,
		assigned: make(map[string]int),
		locked:   make(map[string]bool),
	}, nil
}

func (e *SequenceEngine) Question() *story.Question { return e.q }

func (e *SequenceEngine) Complete() bool { return e.complete }

// Display returns the answer IDs in their shuffled display order.
func (e *SequenceEngine) Display() []string { return e.display }

// Slot returns the slot assigned to a tile, or 0 if unassigned.
func (e *SequenceEngine) Slot(answerID string) int { return e.assigned[answerID] }

// Locked reports whether a tile matched on an earlier submission.
func (e *SequenceEngine) Locked(answerID string) bool { return e.locked[answerID] }

// AvailableSlots returns the free slots in ascending order. Slots held
// by locked tiles are gone for the rest of the attempt cycle.
func (e *SequenceEngine) AvailableSlots() []int {
	taken := make(map[int]bool, len(e.assigned))
	for _, slot := range e.assigned {
		taken[slot] = true
	}
	var free []int
	for slot := 1; slot <= len(e.q.Answers); slot++ {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free
}

// Toggle assigns the lowest free slot to an unassigned tile, or
// releases an assigned tile's slot back to the pool. Locked tiles and
// completed questions are inert.
func (e *SequenceEngine) Toggle(answerID string) {
	if e.complete || e.locked[answerID] {
		return
	}
	if e.q.Answer(answerID) == nil {
		return
	}

	if _, ok := e.assigned[answerID]; ok {
		delete(e.assigned, answerID)
		return
	}

	free := e.AvailableSlots()
	if len(free) == 0 {
		return
	}
	e.assigned[answerID] = free[0]
}

// CanSubmit reports whether every slot is filled.
func (e *SequenceEngine) CanSubmit() bool {
	return !e.complete && len(e.assigned) == len(e.q.Answers)
}

// Submit compares each open tile's slot to its authoritative order
// index. Matching tiles lock; mismatches are cleared. Returns
// ErrLocked after completion and ErrIncomplete while slots remain
// open.
func (e *SequenceEngine) Submit() (SubmitResult, error) {
	if e.complete {
		return SubmitResult{Complete: true}, ErrLocked
	}
	if !e.CanSubmit() {
		return SubmitResult{}, ErrIncomplete
	}

	var res SubmitResult
	for id, slot := range e.assigned {
		if e.locked[id] {
			continue
		}
		if e.q.Answer(id).OrderIndex == slot {
			res.CorrectCount++
			e.locked[id] = true
		} else {
			res.WrongCount++
			delete(e.assigned, id)
		}
	}

	if res.WrongCount > 0 {
		e.reporter.RecordMistake(e.q.ID)
	}
	if len(e.locked) == len(e.q.Answers) {
		e.complete = true
		res.Complete = true
	}
	return res, nil
}
