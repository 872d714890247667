// Package session owns the playback state machine: scene progression,
// interaction lifecycle, resume/restart against the persistence
// service, and the per-session flags that keep rapid input from
// corrupting a transition in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storyplay/engine/pkg/progress"
	"github.com/storyplay/engine/pkg/story"
)

// State is the playback state machine state.
type State string

const (
	StateLoading       State = "loading"
	StateProgressCheck State = "progress_check"
	StateIntro         State = "intro"
	StatePlaying       State = "playing"
	StateInteracting   State = "interacting"
	StateFinished      State = "finished"
	StateError         State = "error"
)

// Catalog loads scene lists and full scene descriptors from the
// content service.
type Catalog interface {
	ListScenes(ctx context.Context, storyID string) ([]story.SceneRef, error)
	LoadScene(ctx context.Context, sceneID string) (*story.Scene, error)
}

// ProgressStore is the persistence service boundary. Check, Continue
// and Restart are synchronous; the session wraps the save operations
// in fire-and-forget semantics itself.
type ProgressStore interface {
	Check(ctx context.Context, userID, storyID string) (progress.Snapshot, error)
	Continue(ctx context.Context, userID, storyID string) (progress.Snapshot, error)
	Restart(ctx context.Context, userID, storyID string) (progress.Snapshot, error)
	SaveScene(ctx context.Context, save progress.SceneSave) error
	SaveWrongAnswer(ctx context.Context, save progress.SceneSave) error
	SaveAttempt(ctx context.Context, attempt progress.Attempt) error
}

// Preloader warms media caches for upcoming scenes. Implementations
// must never fail loudly; the session calls it and moves on.
type Preloader interface {
	Preload(ctx context.Context, sceneIDs []string)
}

// PreloadWindow is how many upcoming scenes are warmed on each scene
// change.
const PreloadWindow = 3

var (
	// ErrBadTransition is returned when an operation is invalid for
	// the current state.
	ErrBadTransition = errors.New("invalid state transition")

	// ErrClosed is returned after teardown.
	ErrClosed = errors.New("session is closed")
)

// badTransition wraps ErrBadTransition with the attempted operation.
func badTransition(op string, from State) error {
	return fmt.Errorf("%s from %s: %w", op, from, ErrBadTransition)
}

// Clock lets tests pin time.
type Clock func() time.Time
