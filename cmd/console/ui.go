package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/storyplay/engine/internal/config"
	"github.com/storyplay/engine/internal/services"
	"github.com/storyplay/engine/pkg/effects"
	"github.com/storyplay/engine/pkg/geom"
	"github.com/storyplay/engine/pkg/interact"
	"github.com/storyplay/engine/pkg/progress"
	"github.com/storyplay/engine/pkg/session"
	"github.com/storyplay/engine/pkg/story"
)

// storyCatalog is what the UI needs from a content source: the session
// catalog plus the story list. Both the HTTP ContentService and the
// offline FileCatalog satisfy it.
type storyCatalog interface {
	session.Catalog
	ListStories(ctx context.Context) ([]story.Story, error)
}

// progressClient extends the session's progress store with the attempt
// history read used by the finished screen.
type progressClient interface {
	session.ProgressStore
	ListAttempts(ctx context.Context, userID string) ([]progress.Attempt, error)
}

// ConsoleUI is the BubbleTea model that runs the playback client.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	cfg       *config.Config
	log       *slog.Logger
	content   storyCatalog
	progress  progressClient
	preloader *services.AssetPreloader
	settings  *services.Settings
	scheduler *effects.Scheduler

	sceneViewport viewport.Model
	ready         bool
	width         int
	height        int
	err           error

	// Story selection state
	showStoryModal bool
	loadingStories bool
	stories        []story.Story
	selectedStory  int

	// Active playback
	sess          *session.Session
	engine        interact.Engine
	engineSceneID string
	status        string

	// Finished-screen extras
	attempts     []progress.Attempt
	showAttempts bool

	muted bool
}

// effectMsg carries a scheduler callback onto the tea event loop so
// timed effects never race with keyboard input.
type effectMsg struct {
	fn func()
}

type storiesLoadedMsg struct {
	stories []story.Story
	err     error
}

type sessionStartedMsg struct {
	err error
}

type sessionChangedMsg struct {
	err error
}

type attemptsLoadedMsg struct {
	attempts []progress.Attempt
	err      error
}

type shakeTickMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	dialogueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // green
			Bold(true)

	exhaustedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var speakerCaser = cases.Title(language.English)

func NewConsoleUI(cfg *config.Config, log *slog.Logger,
	content storyCatalog, progressSvc progressClient,
	preloader *services.AssetPreloader, settings *services.Settings,
	scheduler *effects.Scheduler) ConsoleUI {

	vp := viewport.New(60, 20)

	muted, err := settings.Muted(context.Background())
	if err != nil {
		muted = false
	}

	return ConsoleUI{
		cfg:            cfg,
		log:            log,
		content:        content,
		progress:       progressSvc,
		preloader:      preloader,
		settings:       settings,
		scheduler:      scheduler,
		sceneViewport:  vp,
		showStoryModal: true,
		loadingStories: true,
		muted:          muted,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadStories()
}

func (m ConsoleUI) loadStories() tea.Cmd {
	content := m.content
	return func() tea.Msg {
		stories, err := content.ListStories(context.Background())
		return storiesLoadedMsg{stories, err}
	}
}

func (m *ConsoleUI) startSession(storyID string) tea.Cmd {
	sess := session.New(session.Config{
		UserID:    m.cfg.UserID,
		StoryID:   storyID,
		Catalog:   m.content,
		Progress:  m.progress,
		Preloader: m.preloader,
		Scheduler: m.scheduler,
		Logger:    m.log,
	})
	sess.Mixer().SetMuted(m.muted)
	m.sess = sess
	return func() tea.Msg {
		return sessionStartedMsg{err: sess.Start(context.Background())}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sceneViewport.Width = msg.Width - 4
		m.sceneViewport.Height = msg.Height - 6
		m.ready = true
		m.refreshScene()
		return m, nil

	case effectMsg:
		// Scheduled work (auto-advance after celebration, summary
		// reveal, shake steps) lands here, serialized with input.
		msg.fn()
		m.syncEngine()
		m.refreshScene()
		return m, m.shakeTickIfActive()

	case shakeTickMsg:
		m.refreshScene()
		return m, m.shakeTickIfActive()

	case storiesLoadedMsg:
		m.loadingStories = false
		m.stories = msg.stories
		m.err = msg.err
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.log.Error("Session start failed", "error", msg.err)
		}
		m.showStoryModal = false
		m.syncEngine()
		m.refreshScene()
		return m, nil

	case sessionChangedMsg:
		if msg.err != nil {
			m.log.Warn("Session operation failed", "error", msg.err)
		}
		m.syncEngine()
		m.refreshScene()
		return m, nil

	case attemptsLoadedMsg:
		if msg.err == nil {
			m.attempts = msg.attempts
			m.showAttempts = true
		}
		m.refreshScene()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.sceneViewport, cmd = m.sceneViewport.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		if m.sess != nil {
			m.sess.Close()
		}
		return tea.Quit
	}

	if m.showStoryModal {
		return m.storyModalKey(msg)
	}
	if m.sess == nil {
		return nil
	}

	if msg.String() == "m" && m.sess.State() != session.StateInteracting {
		m.muted = !m.muted
		m.sess.Mixer().SetMuted(m.muted)
		if err := m.settings.SetMuted(context.Background(), m.muted); err != nil {
			m.log.Warn("Failed to persist mute setting", "error", err)
		}
		m.refreshScene()
		return nil
	}

	switch m.sess.State() {
	case session.StateProgressCheck:
		return m.resumeKey(msg)
	case session.StateIntro:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			m.beginPlay()
		}
	case session.StatePlaying:
		if m.sess.Transitioning() {
			return nil
		}
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			if scene := m.sess.Scene(); scene != nil && scene.Question != nil && !m.sess.PuzzleComplete() {
				m.openQuestion()
				return nil
			}
			return m.advance()
		}
	case session.StateInteracting:
		return m.interactionKey(msg)
	case session.StateFinished:
		return m.finishedKey(msg)
	case session.StateError:
		switch msg.String() {
		case "r":
			sess := m.sess
			return func() tea.Msg {
				return sessionChangedMsg{err: sess.Retry(context.Background())}
			}
		case "q":
			m.sess.Close()
			return tea.Quit
		}
	}
	return nil
}

func (m *ConsoleUI) storyModalKey(msg tea.KeyMsg) tea.Cmd {
	if m.loadingStories || m.err != nil {
		return nil
	}
	switch msg.Type {
	case tea.KeyUp:
		if m.selectedStory > 0 {
			m.selectedStory--
		}
	case tea.KeyDown:
		if m.selectedStory < len(m.stories)-1 {
			m.selectedStory++
		}
	case tea.KeyEnter:
		if len(m.stories) > 0 {
			return m.startSession(m.stories[m.selectedStory].ID)
		}
	}
	return nil
}

func (m *ConsoleUI) resumeKey(msg tea.KeyMsg) tea.Cmd {
	sess := m.sess
	switch msg.String() {
	case "c":
		return func() tea.Msg {
			return sessionChangedMsg{err: sess.Continue(context.Background())}
		}
	case "r":
		return func() tea.Msg {
			return sessionChangedMsg{err: sess.Restart(context.Background())}
		}
	}
	return nil
}

func (m *ConsoleUI) beginPlay() {
	if err := m.sess.Begin(); err != nil {
		m.log.Warn("Begin failed", "error", err)
		return
	}
	if m.sess.ShouldAutoInteract() {
		m.openQuestion()
		return
	}
	m.refreshScene()
}

func (m *ConsoleUI) advance() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return sessionChangedMsg{err: sess.Advance(context.Background())}
	}
}

// openQuestion moves the session into Interacting and builds the
// engine for the scene's question kind.
func (m *ConsoleUI) openQuestion() {
	scene := m.sess.Scene()
	if scene == nil || scene.Question == nil {
		return
	}
	if err := m.sess.OpenQuestion(); err != nil {
		m.log.Warn("Open question failed", "error", err)
		return
	}

	opts := interact.Options{
		Viewport: geom.Viewport{Width: float64(m.width), Height: float64(m.height)},
	}
	engine, err := interact.New(scene.Question, scene, opts, m.sess)
	if err != nil {
		m.log.Error("Failed to build interaction engine", "error", err)
		m.refreshScene()
		return
	}
	m.engine = engine
	m.engineSceneID = scene.ID

	for _, a := range scene.Assets {
		if a.Meta.DimBackground {
			m.sess.Overlay().Acquire()
			break
		}
	}

	m.status = ""
	m.refreshScene()
}

// syncEngine drops the engine once its scene is gone, and auto-opens
// the next question on scenes without dialogue.
func (m *ConsoleUI) syncEngine() {
	if m.sess == nil {
		return
	}
	scene := m.sess.Scene()
	if m.engine != nil && (scene == nil || scene.ID != m.engineSceneID) {
		m.engine = nil
		m.engineSceneID = ""
		m.status = ""
	}
	if m.engine == nil && m.sess.ShouldAutoInteract() {
		m.openQuestion()
	}
}

func (m *ConsoleUI) interactionKey(msg tea.KeyMsg) tea.Cmd {
	if m.engine == nil || m.engine.Complete() {
		return nil
	}

	switch engine := m.engine.(type) {
	case *interact.ChoiceEngine:
		return m.choiceKey(msg, engine)
	case *interact.DragEngine:
		return m.dragKey(msg, engine)
	case *interact.SequenceEngine:
		return m.sequenceKey(msg, engine)
	}
	return nil
}

func (m *ConsoleUI) choiceKey(msg tea.KeyMsg, engine *interact.ChoiceEngine) tea.Cmd {
	idx, ok := numberKey(msg, len(engine.Question().Answers))
	if !ok {
		return nil
	}
	answer := engine.Question().Answers[idx]
	res := engine.Select(answer.ID)

	switch {
	case res.Correct:
		m.status = correctStyle.Render("Correct!")
		m.completeInteraction()
	case res.Marked:
		m.status = errorStyle.Render("Not quite. Try again.")
		m.sess.Shake().Trigger(400*time.Millisecond, 2)
		m.refreshScene()
		return m.shakeTickIfActive()
	}
	return nil
}

func (m *ConsoleUI) dragKey(msg tea.KeyMsg, engine *interact.DragEngine) tea.Cmd {
	scene := m.sess.Scene()
	draggables := scene.Draggables()
	idx, ok := numberKey(msg, len(draggables))
	if !ok {
		return nil
	}

	name := draggables[idx].Name
	if !engine.CanDrag(name) {
		return nil
	}

	// A keyboard "drag" releases the sprite on the target center, so
	// the hit test always passes and correctness decides the outcome.
	target := scene.DropTarget()
	vp := geom.Viewport{Width: float64(m.width), Height: float64(m.height)}
	res := engine.Drop(name, vp.ToScreen(target.Pos))

	switch {
	case res.Exhausted:
		m.status = errorStyle.Render(fmt.Sprintf("%s doesn't belong there.", name))
		m.sess.Shake().Trigger(400*time.Millisecond, 2)
		if target.Meta.Shake != nil {
			m.sess.Shake().Trigger(target.Meta.Shake.Duration, target.Meta.Shake.Intensity)
		}
		m.refreshScene()
		return m.shakeTickIfActive()
	case res.Complete:
		m.status = correctStyle.Render("Perfect!")
		m.completeInteraction()
	case res.Correct:
		m.status = correctStyle.Render(fmt.Sprintf("%s placed!", name))
		m.refreshScene()
	}
	return nil
}

func (m *ConsoleUI) sequenceKey(msg tea.KeyMsg, engine *interact.SequenceEngine) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		if !engine.CanSubmit() {
			m.status = statusStyle.Render("Fill every slot before submitting.")
			m.refreshScene()
			return nil
		}
		res, err := engine.Submit()
		if err != nil {
			return nil
		}
		if res.Complete {
			m.status = correctStyle.Render("Sequence complete!")
			m.completeInteraction()
			return nil
		}
		m.status = errorStyle.Render(fmt.Sprintf("%d locked in, %d to retry.", res.CorrectCount, res.WrongCount))
		m.sess.Shake().Trigger(400*time.Millisecond, 2)
		m.refreshScene()
		return m.shakeTickIfActive()
	}

	idx, ok := numberKey(msg, len(engine.Display()))
	if !ok {
		return nil
	}
	engine.Toggle(engine.Display()[idx])
	m.refreshScene()
	return nil
}

func (m *ConsoleUI) completeInteraction() {
	m.sess.Overlay().Release()
	if err := m.sess.CompleteInteraction(context.Background()); err != nil {
		m.log.Warn("Complete interaction failed", "error", err)
	}
	m.refreshScene()
}

func (m *ConsoleUI) finishedKey(msg tea.KeyMsg) tea.Cmd {
	summary, shown := m.sess.Summary()

	if !shown {
		// Any key skips the reveal delay.
		m.sess.RevealSummary()
		m.refreshScene()
		return nil
	}

	switch msg.String() {
	case "c":
		if summary != nil {
			text := fmt.Sprintf("I scored %d/%d (%.2f%%) playing a story!",
				summary.EarnedPoints, summary.PossiblePoints, summary.Percentage)
			if err := clipboard.WriteAll(text); err != nil {
				m.status = errorStyle.Render("Copy failed: " + err.Error())
			} else {
				m.status = statusStyle.Render("Score copied to clipboard.")
			}
			m.refreshScene()
		}
	case "a":
		svc := m.progress
		userID := m.cfg.UserID
		return func() tea.Msg {
			attempts, err := svc.ListAttempts(context.Background(), userID)
			return attemptsLoadedMsg{attempts, err}
		}
	case "q":
		m.sess.Close()
		return tea.Quit
	}
	return nil
}

// numberKey maps keys 1..9 onto a 0-based index below limit.
func numberKey(msg tea.KeyMsg, limit int) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	idx := int(s[0] - '1')
	if idx >= limit {
		return 0, false
	}
	return idx, true
}

func (m *ConsoleUI) shakeTickIfActive() tea.Cmd {
	if m.sess == nil || !m.sess.Shake().Active() {
		return nil
	}
	return tea.Tick(effects.ShakeTick, func(time.Time) tea.Msg {
		return shakeTickMsg{}
	})
}

// refreshScene rebuilds the viewport content from session state.
func (m *ConsoleUI) refreshScene() {
	if !m.ready || m.sess == nil {
		return
	}
	m.sceneViewport.SetContent(m.renderScene())
}

func (m *ConsoleUI) renderScene() string {
	width := m.sceneViewport.Width
	if width <= 0 {
		width = 60
	}

	var content string
	switch m.sess.State() {
	case session.StateLoading:
		content = statusStyle.Render("Loading story...")
	case session.StateError:
		content = errorStyle.Render("Something went wrong loading the story.") +
			"\n\n" + dimStyle.Render("Press R to retry, Q to quit.")
	case session.StateFinished:
		content = m.renderFinished(width)
	default:
		content = m.renderPlayback(width)
	}

	if m.sess.Overlay().Visible() {
		content = dimStyle.Render(content)
	}
	if off := m.sess.Shake().Offset(); off != 0 {
		pad := int(off)
		if pad < 0 {
			pad = -pad
		}
		content = indent(content, pad)
	}
	return content
}

func indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (m *ConsoleUI) renderPlayback(width int) string {
	scene := m.sess.Scene()
	if scene == nil {
		return statusStyle.Render("Loading scene...")
	}

	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf("Scene %d of %d", m.sess.SceneIndex()+1, m.sess.SceneCount())))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  ·  %d points", m.sess.EarnedPoints())))
	if m.muted {
		b.WriteString(dimStyle.Render("  ·  muted"))
	} else if clip := m.sess.Mixer().Voicing(); clip != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ·  ♪ %s (music %.0f%%)", clip, m.sess.Mixer().MusicVolume()*100)))
	}
	b.WriteString("\n\n")

	if scene.HasDialogue() {
		speaker := speakerCaser.String(scene.Dialogue.Speaker)
		b.WriteString(speakerStyle.Render(speaker+":") + "\n")
		b.WriteString(dialogueStyle.Render(wordwrap.String(scene.Dialogue.Text, width-4)))
		b.WriteString("\n\n")
	}

	for _, a := range scene.Assets {
		if !a.Renderable() || a.Kind == story.AssetAudio {
			continue
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s: %s]\n", a.Kind, a.Name)))
	}
	b.WriteString("\n")

	switch m.sess.State() {
	case session.StateIntro:
		b.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-4, 10))) + "\n")
		b.WriteString(dimStyle.Render("Press Enter to begin."))
	case session.StatePlaying:
		b.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-4, 10))) + "\n")
		if m.sess.PuzzleComplete() || scene.Question == nil {
			b.WriteString(dimStyle.Render("Press Enter to continue."))
		} else {
			b.WriteString(dimStyle.Render("Press Enter to answer."))
		}
	case session.StateProgressCheck:
		b.WriteString(m.renderResumePrompt())
	case session.StateInteracting:
		b.WriteString(m.renderQuestion(width))
	}

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}
	return b.String()
}

func (m *ConsoleUI) renderResumePrompt() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Welcome back!"))
	b.WriteString("\n\n")
	b.WriteString("You have saved progress in this story.\n\n")
	b.WriteString(dimStyle.Render("Press C to continue where you left off, or R to restart from the beginning."))
	return b.String()
}

func (m *ConsoleUI) renderQuestion(width int) string {
	if m.engine == nil {
		return errorStyle.Render("Question unavailable.")
	}
	q := m.engine.Question()

	var b strings.Builder
	b.WriteString(titleStyle.Render(wordwrap.String(q.Prompt, width-4)))
	b.WriteString("\n\n")

	switch engine := m.engine.(type) {
	case *interact.ChoiceEngine:
		for i, a := range q.Answers {
			label := fmt.Sprintf("%d) %s", i+1, a.Text)
			if engine.MarkedWrong(a.ID) {
				b.WriteString(exhaustedStyle.Render(label))
			} else {
				b.WriteString(modalItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + dimStyle.Render("Press a number to choose."))

	case *interact.DragEngine:
		scene := m.sess.Scene()
		target := scene.DropTarget()
		b.WriteString(dimStyle.Render(fmt.Sprintf("Drop zone: %s\n\n", target.Name)))
		for i, a := range scene.Draggables() {
			label := fmt.Sprintf("%d) %s", i+1, a.Name)
			switch {
			case engine.Exhausted(a.Name):
				b.WriteString(exhaustedStyle.Render(label))
			case !engine.CanDrag(a.Name):
				b.WriteString(correctStyle.Render(label + " ✓"))
			default:
				b.WriteString(modalItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + dimStyle.Render("Press a number to drag that sprite onto the drop zone."))

	case *interact.SequenceEngine:
		for i, id := range engine.Display() {
			a := q.Answer(id)
			label := fmt.Sprintf("%d) %s", i+1, a.Text)
			if slot := engine.Slot(id); slot > 0 {
				label = fmt.Sprintf("%s  → slot %d", label, slot)
			}
			if engine.Locked(id) {
				b.WriteString(correctStyle.Render(label + " ✓"))
			} else {
				b.WriteString(modalItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("Open slots: %v", engine.AvailableSlots())))
		b.WriteString("\n" + dimStyle.Render("Numbers toggle tiles, Enter submits."))
	}

	return b.String()
}

func (m *ConsoleUI) renderFinished(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("THE END"))
	b.WriteString("\n\n")

	summary, shown := m.sess.Summary()
	if !shown || summary == nil {
		b.WriteString(statusStyle.Render("Tallying your score..."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press any key to see it now."))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Questions answered: %d\n", summary.TotalQuestions))
	b.WriteString(fmt.Sprintf("Wrong attempts:     %d\n", summary.WrongAttempts))
	b.WriteString(fmt.Sprintf("Score:              %d / %d (%.2f%%)\n",
		summary.EarnedPoints, summary.PossiblePoints, summary.Percentage))
	b.WriteString("\n")

	if m.showAttempts {
		b.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-4, 10))) + "\n")
		b.WriteString(titleStyle.Render("Recent attempts") + "\n")
		limit := 5
		for i, a := range m.attempts {
			if i >= limit {
				break
			}
			b.WriteString(fmt.Sprintf("  %s  %d/%d\n",
				a.EndedAt.Format("2006-01-02 15:04"), a.Score, a.TotalPossibleScore))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("C copies your score, A shows attempt history, Q quits."))
	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}
	return b.String()
}

func (m ConsoleUI) renderStoryModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingStories {
		content.WriteString(modalTitleStyle.Render("Loading Stories..."))
		content.WriteString("\n\n")
		content.WriteString(statusStyle.Render("Please wait while we fetch the story catalog..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load stories: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Story"))
		content.WriteString("\n\n")

		for i, s := range m.stories {
			label := fmt.Sprintf("%s (%d scenes)", s.Title, len(s.Scenes))
			if i == m.selectedStory {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(dimStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showStoryModal {
		return m.renderStoryModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	header := titleStyle.Render("  STORYPLAY")
	footer := dimStyle.Render("  Ctrl+C quits · M toggles sound")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		"  "+strings.ReplaceAll(m.sceneViewport.View(), "\n", "\n  "),
		"",
		footer,
	)
}
