package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyplay/engine/pkg/effects"
	"github.com/storyplay/engine/pkg/progress"
	"github.com/storyplay/engine/pkg/scoring"
	"github.com/storyplay/engine/pkg/story"
)

const (
	// DefaultCelebrateDelay is the pause after a fully-correct answer
	// before the next scene loads.
	DefaultCelebrateDelay = 1200 * time.Millisecond

	// DefaultSummaryDelay is how long Finished waits before showing
	// the score summary on its own.
	DefaultSummaryDelay = 2 * time.Second

	saveTimeout = 10 * time.Second
)

// Config wires a session to its collaborators.
type Config struct {
	UserID  string
	StoryID string

	Catalog   Catalog
	Progress  ProgressStore
	Preloader Preloader // optional
	Scheduler *effects.Scheduler
	Logger    *slog.Logger

	CelebrateDelay time.Duration // 0 means DefaultCelebrateDelay
	SummaryDelay   time.Duration // 0 means DefaultSummaryDelay
	Clock          Clock         // nil means time.Now
}

// Session is one playable run of a story. All methods are safe for the
// host loop plus scheduler callbacks; gameplay input itself is
// expected from a single goroutine.
type Session struct {
	ID uuid.UUID

	mu  sync.Mutex
	cfg Config

	state    State
	scenes   []story.SceneRef
	sceneIdx int
	scene    *story.Scene

	tracker      *scoring.Tracker
	earned       int
	answerStates map[string]string
	questions    map[string]*story.Question // seen questions by scene ID

	answerLocked   bool
	puzzleComplete bool
	transitioning  bool

	overlay *effects.Overlay
	shake   *effects.Shake
	mixer   *effects.Mixer

	startedAt    time.Time
	summary      *scoring.Summary
	summaryShown bool

	pending progress.Snapshot // saved progress found during Loading

	closed bool
	saves  sync.WaitGroup
}

// New creates a session in the Loading state. Call Start to load the
// story.
func New(cfg Config) *Session {
	if cfg.CelebrateDelay == 0 {
		cfg.CelebrateDelay = DefaultCelebrateDelay
	}
	if cfg.SummaryDelay == 0 {
		cfg.SummaryDelay = DefaultSummaryDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = effects.NewScheduler(nil, cfg.Logger)
	}

	s := &Session{
		ID:           uuid.New(),
		cfg:          cfg,
		state:        StateLoading,
		tracker:      scoring.NewTracker(),
		answerStates: make(map[string]string),
		questions:    make(map[string]*story.Question),
		overlay:      effects.NewOverlay(),
	}
	s.shake = effects.NewShake(cfg.Scheduler)
	s.mixer = effects.NewMixer(1, false)
	return s
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scene returns the loaded scene for the current index.
func (s *Session) Scene() *story.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// SceneIndex returns the current position within the story.
func (s *Session) SceneIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneIdx
}

// SceneCount returns the number of scenes in the story.
func (s *Session) SceneCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scenes)
}

// Tracker exposes the mistake tracker for interaction engines.
func (s *Session) Tracker() *scoring.Tracker {
	return s.tracker
}

// Effects accessors for the renderer.
func (s *Session) Overlay() *effects.Overlay { return s.overlay }
func (s *Session) Shake() *effects.Shake     { return s.shake }
func (s *Session) Mixer() *effects.Mixer     { return s.mixer }

// Transitioning reports whether a scene advance is in flight.
func (s *Session) Transitioning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitioning
}

// Start drives Loading: fetches the scene list, then either offers the
// saved progress (ProgressCheck) or loads the first scene (Intro). A
// content failure lands in Error; Retry re-enters Loading.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateLoading {
		defer s.mu.Unlock()
		return badTransition("start", s.state)
	}
	s.mu.Unlock()

	refs, err := s.cfg.Catalog.ListScenes(ctx, s.cfg.StoryID)
	if err == nil && len(refs) == 0 {
		// Guard against catalogs that report an empty story as
		// success; an unplayable story is a load failure.
		err = fmt.Errorf("story %q has no scenes", s.cfg.StoryID)
	}
	if err != nil {
		s.toError("list scenes", err)
		return err
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	// Saved progress is checked before play; a check failure is not a
	// content failure, it just means no resume offer.
	snap, err := s.cfg.Progress.Check(ctx, s.cfg.UserID, s.cfg.StoryID)
	if err != nil {
		s.cfg.Logger.Warn("Progress check failed, starting fresh",
			"user_id", s.cfg.UserID, "story_id", s.cfg.StoryID, "error", err)
		snap = progress.Snapshot{}
	}

	if snap.HasExistingProgress {
		s.mu.Lock()
		s.scenes = refs
		s.pending = snap
		s.state = StateProgressCheck
		s.mu.Unlock()
		return nil
	}

	scene, err := s.cfg.Catalog.LoadScene(ctx, refs[0].SceneID)
	if err != nil {
		s.toError("load scene", err)
		return err
	}

	s.mu.Lock()
	s.scenes = refs
	s.enterScene(0, scene)
	s.state = StateIntro
	s.mu.Unlock()

	s.preload(ctx)
	return nil
}

// HasSavedProgress reports whether Start found a resumable session.
func (s *Session) HasSavedProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateProgressCheck
}

// Continue resumes from the saved progress: scene index, mistake maps
// and running score are restored and play begins at the saved scene.
func (s *Session) Continue(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateProgressCheck {
		defer s.mu.Unlock()
		return badTransition("continue", s.state)
	}
	s.mu.Unlock()

	snap, err := s.cfg.Progress.Continue(ctx, s.cfg.UserID, s.cfg.StoryID)
	if err != nil {
		s.cfg.Logger.Warn("Continue failed, using checked snapshot", "error", err)
		s.mu.Lock()
		snap = s.pending
		s.mu.Unlock()
	}

	idx := 0
	s.mu.Lock()
	for i, ref := range s.scenes {
		if ref.SceneID == snap.CurrentSceneID {
			idx = i
			break
		}
	}
	sceneID := s.scenes[idx].SceneID
	s.mu.Unlock()

	scene, err := s.cfg.Catalog.LoadScene(ctx, sceneID)
	if err != nil {
		s.toError("load scene", err)
		return err
	}

	s.mu.Lock()
	s.tracker.Restore(snap.QuestionMistakes, snap.MistakeCount)
	s.earned = snap.PointsEarned
	for k, v := range snap.AnswerStates {
		s.answerStates[k] = v
	}
	s.startedAt = s.cfg.Clock()
	s.enterScene(idx, scene)
	s.state = StatePlaying
	s.mu.Unlock()

	s.preload(ctx)
	return nil
}

// Restart discards the saved progress and reloads scene zero with all
// counters reset.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateProgressCheck {
		defer s.mu.Unlock()
		return badTransition("restart", s.state)
	}
	s.mu.Unlock()

	if _, err := s.cfg.Progress.Restart(ctx, s.cfg.UserID, s.cfg.StoryID); err != nil {
		s.cfg.Logger.Warn("Restart call failed, resetting locally", "error", err)
	}

	s.mu.Lock()
	sceneID := s.scenes[0].SceneID
	s.mu.Unlock()

	scene, err := s.cfg.Catalog.LoadScene(ctx, sceneID)
	if err != nil {
		s.toError("load scene", err)
		return err
	}

	s.mu.Lock()
	s.tracker = scoring.NewTracker()
	s.earned = 0
	s.answerStates = make(map[string]string)
	s.startedAt = s.cfg.Clock()
	s.enterScene(0, scene)
	s.state = StatePlaying
	s.mu.Unlock()

	s.preload(ctx)
	s.saveSceneAsync()
	return nil
}

// Begin moves Intro to Playing on the first user interaction. This
// timestamps the session start and persists the first scene.
func (s *Session) Begin() error {
	s.mu.Lock()
	if s.state != StateIntro {
		defer s.mu.Unlock()
		return badTransition("begin", s.state)
	}
	s.startedAt = s.cfg.Clock()
	s.state = StatePlaying
	s.mu.Unlock()

	s.saveSceneAsync()
	return nil
}

// ShouldAutoInteract reports whether the current scene's question
// opens without a click (scenes with no dialogue).
func (s *Session) ShouldAutoInteract() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePlaying && s.scene != nil &&
		s.scene.Question != nil && !s.scene.HasDialogue()
}

// OpenQuestion moves Playing to Interacting for scenes with a
// question.
func (s *Session) OpenQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return badTransition("open question", s.state)
	}
	if s.scene == nil || s.scene.Question == nil {
		return badTransition("open question (no question)", s.state)
	}
	s.state = StateInteracting
	return nil
}

// RecordMistake implements interact.Reporter: counts the mistake and
// persists the wrong-answer event fire-and-forget.
func (s *Session) RecordMistake(questionID string) {
	s.mu.Lock()
	s.tracker.RecordMistake(questionID)
	s.answerStates[questionID] = "attempted"
	save := s.sceneSaveLocked()
	save.PointsEarned = 0
	s.mu.Unlock()

	s.saveAsync("save wrong answer", func(ctx context.Context) error {
		return s.cfg.Progress.SaveWrongAnswer(ctx, save)
	})
}

// CompleteInteraction records a fully-correct answer: locks the
// question, banks its points, persists progress, and schedules the
// advance after the celebratory delay.
func (s *Session) CompleteInteraction(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInteracting {
		defer s.mu.Unlock()
		return badTransition("complete interaction", s.state)
	}
	q := s.scene.Question
	s.answerLocked = true
	s.puzzleComplete = true
	s.earned += s.tracker.Earned(q)
	s.answerStates[q.ID] = "complete"
	s.mu.Unlock()

	s.saveSceneAsync()
	s.cfg.Scheduler.After(s.cfg.CelebrateDelay, func() {
		if err := s.Advance(context.Background()); err != nil {
			s.cfg.Logger.Warn("Scheduled advance failed", "error", err)
		}
	})
	return nil
}

// AnswerLocked reports whether the current question refuses input.
func (s *Session) AnswerLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answerLocked
}

// PuzzleComplete reports whether the current scene's puzzle is solved.
func (s *Session) PuzzleComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puzzleComplete
}

// Advance moves to the next scene, or to Finished after the last one.
// Requests while a transition is in flight are ignored; the guard is
// set before any load starts and cleared only after the new scene has
// finished loading.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.transitioning {
		s.mu.Unlock()
		return nil
	}
	if s.state != StatePlaying && s.state != StateInteracting {
		defer s.mu.Unlock()
		return badTransition("advance", s.state)
	}
	if s.scene != nil && s.scene.Question != nil && !s.puzzleComplete {
		defer s.mu.Unlock()
		return badTransition("advance (question pending)", s.state)
	}
	s.transitioning = true
	last := s.sceneIdx >= len(s.scenes)-1
	var nextID string
	if !last {
		nextID = s.scenes[s.sceneIdx+1].SceneID
	}
	s.mu.Unlock()

	if last {
		return s.finish(ctx)
	}

	scene, err := s.cfg.Catalog.LoadScene(ctx, nextID)
	if err != nil {
		s.mu.Lock()
		s.transitioning = false
		s.mu.Unlock()
		s.toError("load scene", err)
		return err
	}

	s.mu.Lock()
	s.enterScene(s.sceneIdx+1, scene)
	s.state = StatePlaying
	s.transitioning = false
	s.mu.Unlock()

	s.preload(ctx)
	s.saveSceneAsync()
	return nil
}

// enterScene installs a newly loaded scene and resets everything
// scoped to the previous one. Caller holds s.mu.
func (s *Session) enterScene(idx int, scene *story.Scene) {
	s.cfg.Scheduler.CancelAll()
	s.shake.Stop()
	s.overlay.Reset()
	s.mixer.StopAll()

	s.sceneIdx = idx
	s.scene = scene
	s.answerLocked = false
	s.puzzleComplete = false
	if scene.Question != nil {
		s.questions[scene.ID] = scene.Question
		if s.answerStates[scene.Question.ID] == "complete" {
			// Resumed past this question; keep it locked.
			s.answerLocked = true
			s.puzzleComplete = true
		}
	}
	if scene.Dialogue != nil && scene.Dialogue.VoiceClip != "" {
		clip := scene.Dialogue.VoiceClip
		s.mixer.PlayVoice(clip)
		// Release the ducking when the line ends; a scene change
		// cancels this along with every other token.
		s.cfg.Scheduler.After(voiceDuration(scene.Dialogue.Text), func() {
			s.mixer.VoiceEnded(clip)
		})
	}
}

// voiceDuration estimates how long a spoken line runs. Clip lengths
// are not known to the engine, so the estimate scales with the text.
func voiceDuration(text string) time.Duration {
	d := 600*time.Millisecond + time.Duration(len([]rune(text)))*45*time.Millisecond
	if d > 15*time.Second {
		d = 15 * time.Second
	}
	return d
}

// finish computes and persists the score summary. The summary is shown
// after a delay unless the user interacts sooner.
func (s *Session) finish(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == StateFinished {
		return nil
	}

	// Questions from scenes skipped by a resume still count toward
	// the possible total.
	questions, err := s.collectQuestions(ctx)
	if err != nil {
		s.mu.Lock()
		s.transitioning = false
		s.mu.Unlock()
		s.toError("load scene", err)
		return err
	}

	s.mu.Lock()
	sum := s.tracker.Summarize(questions)
	s.summary = &sum
	s.state = StateFinished
	s.transitioning = false
	startedAt := s.startedAt
	s.mu.Unlock()

	attempt := progress.Attempt{
		ID:                 uuid.NewString(),
		UserID:             s.cfg.UserID,
		StoryID:            s.cfg.StoryID,
		Score:              sum.EarnedPoints,
		TotalPossibleScore: sum.PossiblePoints,
		StartedAt:          startedAt,
		EndedAt:            s.cfg.Clock(),
	}
	s.saveAsync("save attempt", func(ctx context.Context) error {
		return s.cfg.Progress.SaveAttempt(ctx, attempt)
	})

	s.cfg.Scheduler.After(s.cfg.SummaryDelay, func() {
		s.RevealSummary()
	})
	return nil
}

func (s *Session) collectQuestions(ctx context.Context) ([]*story.Question, error) {
	s.mu.Lock()
	refs := make([]story.SceneRef, len(s.scenes))
	copy(refs, s.scenes)
	seen := make(map[string]*story.Question, len(s.questions))
	for id, q := range s.questions {
		seen[id] = q
	}
	s.mu.Unlock()

	var questions []*story.Question
	for _, ref := range refs {
		if q, ok := seen[ref.SceneID]; ok {
			questions = append(questions, q)
			continue
		}
		scene, err := s.cfg.Catalog.LoadScene(ctx, ref.SceneID)
		if err != nil {
			return nil, err
		}
		if scene.Question != nil {
			questions = append(questions, scene.Question)
		}
	}
	return questions, nil
}

// RevealSummary shows the score summary now. The delayed auto-show
// becomes a no-op once this has run.
func (s *Session) RevealSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished || s.summaryShown {
		return
	}
	s.summaryShown = true
}

// Summary returns the completion score and whether it is visible yet.
func (s *Session) Summary() (*scoring.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.summaryShown
}

// EarnedPoints returns the running score.
func (s *Session) EarnedPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.earned
}

// Retry re-enters Loading from Error.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateError {
		defer s.mu.Unlock()
		return badTransition("retry", s.state)
	}
	s.state = StateLoading
	s.mu.Unlock()
	return s.Start(ctx)
}

// Close tears the session down: all timers cancelled, audio stopped,
// in-flight saves drained. Every gameplay method is a no-op afterward.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cfg.Scheduler.Close()
	s.shake.Stop()
	s.mixer.StopAll()
	s.saves.Wait()
}

// toError parks the machine in the Error state. Any state can reach
// it on a load failure.
func (s *Session) toError(op string, err error) {
	s.cfg.Logger.Error("Content load failed", "op", op, "error", err,
		"story_id", s.cfg.StoryID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = StateError
}

// sceneSaveLocked builds the save payload from current state. Caller
// holds s.mu.
func (s *Session) sceneSaveLocked() progress.SceneSave {
	sceneID := ""
	if s.scene != nil {
		sceneID = s.scene.ID
	}
	states := make(map[string]string, len(s.answerStates))
	for k, v := range s.answerStates {
		states[k] = v
	}
	return progress.SceneSave{
		UserID:           s.cfg.UserID,
		StoryID:          s.cfg.StoryID,
		SceneID:          sceneID,
		PointsEarned:     s.earned,
		MistakeCount:     s.tracker.Total(),
		QuestionMistakes: s.tracker.PerQuestion(),
		AnswerStates:     states,
	}
}

func (s *Session) saveSceneAsync() {
	s.mu.Lock()
	save := s.sceneSaveLocked()
	s.mu.Unlock()
	s.saveAsync("save scene progress", func(ctx context.Context) error {
		return s.cfg.Progress.SaveScene(ctx, save)
	})
}

// saveAsync runs a persistence call fire-and-forget: failures are
// logged and otherwise ignored, gameplay never blocks on them.
func (s *Session) saveAsync(op string, fn func(ctx context.Context) error) {
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.cfg.Logger.Warn("Persistence call failed",
				"op", op, "user_id", s.cfg.UserID, "story_id", s.cfg.StoryID, "error", err)
		}
	}()
}

// Flush waits for in-flight persistence calls. Test hook.
func (s *Session) Flush() {
	s.saves.Wait()
}

func (s *Session) preload(ctx context.Context) {
	if s.cfg.Preloader == nil {
		return
	}
	s.mu.Lock()
	var ids []string
	for i := s.sceneIdx + 1; i < len(s.scenes) && len(ids) < PreloadWindow; i++ {
		ids = append(ids, s.scenes[i].SceneID)
	}
	s.mu.Unlock()
	if len(ids) > 0 {
		s.cfg.Preloader.Preload(ctx, ids)
	}
}
