package interact

import (
	"math/rand/v2"

	"github.com/storyplay/engine/pkg/geom"
	"github.com/storyplay/engine/pkg/story"
)

// DefaultRadiusFraction sizes the drop zone relative to the smaller
// viewport dimension.
const DefaultRadiusFraction = 0.15

// Options configures the spatial engines.
type Options struct {
	Viewport       geom.Viewport
	RadiusFraction float64    // 0 means DefaultRadiusFraction
	Rand           *rand.Rand // nil means the global source
}

func (o Options) radius() float64 {
	f := o.RadiusFraction
	if f == 0 {
		f = DefaultRadiusFraction
	}
	return f * o.Viewport.MinDimension()
}

// HitTester decides whether a pointer-release position counts as a hit
// on a drop target.
type HitTester interface {
	Hit(release, target geom.ScreenPoint) bool
}

// CircleHit is the standard hit test: inside iff the squared distance
// from the release point to the target center is within radius².
type CircleHit struct {
	Radius float64
}

func (c CircleHit) Hit(release, target geom.ScreenPoint) bool {
	return geom.InCircle(release, target, c.Radius)
}

// SpawnStrategy produces the initial on-screen positions for the
// draggable sprites of a question.
type SpawnStrategy interface {
	Spawns(draggables []story.Asset) map[string]geom.Point
}

// AuthoredSpawns places each sprite at its authored scene position.
// Used by plain drag-to-target questions.
type AuthoredSpawns struct{}

func (AuthoredSpawns) Spawns(draggables []story.Asset) map[string]geom.Point {
	out := make(map[string]geom.Point, len(draggables))
	for _, a := range draggables {
		out[a.Name] = a.Pos
	}
	return out
}

// PoolSpawns draws shuffled positions from a small fixed candidate
// pool, so placement puzzles lay their pieces out differently per
// question.
type PoolSpawns struct {
	Pool []geom.Point
	Rand *rand.Rand
}

// placementSpawnPool is the default candidate pool along the bottom of
// the logical space.
var placementSpawnPool = []geom.Point{
	{X: -8, Y: -8}, {X: -4, Y: -8}, {X: 0, Y: -8}, {X: 4, Y: -8}, {X: 8, Y: -8},
}

func (p PoolSpawns) Spawns(draggables []story.Asset) map[string]geom.Point {
	pool := p.Pool
	if len(pool) == 0 {
		pool = placementSpawnPool
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	shuffle := rand.Shuffle
	if p.Rand != nil {
		shuffle = p.Rand.Shuffle
	}
	shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	out := make(map[string]geom.Point, len(draggables))
	for i, a := range draggables {
		out[a.Name] = pool[idx[i%len(pool)]]
	}
	return out
}

// DragEngine validates drag-based questions. One engine serves both
// DragDrop and Placement; the spawn strategy and the hit tester are the
// only differences between the kinds. A wrong candidate released over
// the target exhausts that sprite (grayed out, no longer draggable) but
// does not lock the question, so several wrong candidates can be burned
// before the correct one is found.
type DragEngine struct {
	q         *story.Question
	reporter  Reporter
	viewport  geom.Viewport
	hit       HitTester
	target    geom.ScreenPoint
	targetPos geom.Point
	spawns    map[string]geom.Point
	exhausted map[string]bool
	matched   map[string]bool
	locked    bool
}

// DropResult is the outcome of one pointer release.
type DropResult struct {
	Correct   bool
	Hit       bool        // release landed inside the target zone
	SnapTo    geom.Point  // where the sprite ends up (target on success, origin otherwise)
	Exhausted bool        // sprite was the wrong candidate and is now inert
	Complete  bool        // all correct candidates placed; question locked
}

func newDragEngine(q *story.Question, scene *story.Scene, opts Options, spawn SpawnStrategy, reporter Reporter) (*DragEngine, error) {
	target := scene.DropTarget()
	if target == nil {
		return nil, ErrNoDropTarget
	}

	e := &DragEngine{
		q:         q,
		reporter:  reporter,
		viewport:  opts.Viewport,
		hit:       CircleHit{Radius: opts.radius()},
		target:    opts.Viewport.ToScreen(target.Pos),
		targetPos: target.Pos,
		spawns:    spawn.Spawns(scene.Draggables()),
		exhausted: make(map[string]bool),
		matched:   make(map[string]bool),
	}
	return e, nil
}

// NewDragEngine builds the engine for plain drag-to-target questions.
func NewDragEngine(q *story.Question, scene *story.Scene, opts Options, reporter Reporter) (*DragEngine, error) {
	if q.Kind != story.DragDrop {
		return nil, ErrKindMismatch
	}
	return newDragEngine(q, scene, opts, AuthoredSpawns{}, reporter)
}

// NewPlacementEngine builds the engine for placement puzzles: same hit
// and lock semantics, with spawn points drawn shuffled from a pool.
func NewPlacementEngine(q *story.Question, scene *story.Scene, opts Options, reporter Reporter) (*DragEngine, error) {
	if q.Kind != story.Placement {
		return nil, ErrKindMismatch
	}
	return newDragEngine(q, scene, opts, PoolSpawns{Rand: opts.Rand}, reporter)
}

func (e *DragEngine) Question() *story.Question { return e.q }

func (e *DragEngine) Complete() bool { return e.locked }

// Spawns returns the initial sprite positions chosen by the spawn
// strategy, for the renderer.
func (e *DragEngine) Spawns() map[string]geom.Point { return e.spawns }

// CanDrag reports whether a sprite may start a drag. Drags are modal:
// nothing is draggable once the question is locked, and exhausted
// sprites stay inert.
func (e *DragEngine) CanDrag(assetName string) bool {
	if e.locked || e.exhausted[assetName] {
		return false
	}
	return e.q.AnswerForAsset(assetName) != nil
}

// Exhausted reports whether a sprite has been burned as a wrong
// candidate.
func (e *DragEngine) Exhausted(assetName string) bool {
	return e.exhausted[assetName]
}

// Drop validates a pointer release for the named sprite. Releases
// outside the target zone snap the sprite back without penalty; a
// wrong candidate released inside the zone is a mistake and exhausts
// the sprite.
func (e *DragEngine) Drop(assetName string, release geom.ScreenPoint) DropResult {
	origin := e.spawns[assetName]

	if !e.CanDrag(assetName) {
		return DropResult{SnapTo: origin, Complete: e.locked}
	}

	if !e.hit.Hit(release, e.target) {
		return DropResult{SnapTo: origin}
	}

	a := e.q.AnswerForAsset(assetName)
	if !a.Correct {
		e.exhausted[assetName] = true
		e.reporter.RecordMistake(e.q.ID)
		return DropResult{Hit: true, SnapTo: origin, Exhausted: true}
	}

	e.matched[assetName] = true
	if len(e.matched) == e.q.CorrectCount() {
		e.locked = true
	}
	return DropResult{Correct: true, Hit: true, SnapTo: e.targetPos, Complete: e.locked}
}
