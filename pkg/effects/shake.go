package effects

import (
	"sync"
	"time"
)

// ShakeTick is the oscillation interval for screen shake.
const ShakeTick = 50 * time.Millisecond

// Shake oscillates a horizontal offset between +intensity and
// -intensity for a duration, then forces it back to zero. Overlapping
// triggers are resolved by generation: only the latest trigger's ticks
// and cleanup touch the offset, so a stale cleanup can never leave a
// later shake's offset standing, and the offset always ends at zero.
type Shake struct {
	mu     sync.Mutex
	sched  *Scheduler
	offset float64
	gen    uint64
	ticker Token
}

func NewShake(sched *Scheduler) *Shake {
	return &Shake{sched: sched}
}

// Offset returns the current horizontal displacement.
func (sh *Shake) Offset() float64 {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.offset
}

// Active reports whether a shake is in flight.
func (sh *Shake) Active() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.ticker != 0
}

// Trigger starts a shake. A trigger while one is running supersedes
// it.
func (sh *Shake) Trigger(duration time.Duration, intensity float64) {
	sh.mu.Lock()
	sh.gen++
	gen := sh.gen
	if sh.ticker != 0 {
		sh.sched.Cancel(sh.ticker)
	}
	sh.offset = intensity
	sh.ticker = sh.sched.Every(ShakeTick, func() {
		sh.mu.Lock()
		if sh.gen == gen {
			sh.offset = -sh.offset
		}
		sh.mu.Unlock()
	})
	ticker := sh.ticker
	sh.mu.Unlock()

	sh.sched.After(duration, func() {
		sh.mu.Lock()
		defer sh.mu.Unlock()
		if sh.gen != gen {
			return // a later trigger owns the offset now
		}
		sh.sched.Cancel(ticker)
		sh.ticker = 0
		sh.offset = 0
	})
}

// Stop ends any running shake immediately and zeroes the offset.
// Called on scene change and teardown.
func (sh *Shake) Stop() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.gen++
	if sh.ticker != 0 {
		sh.sched.Cancel(sh.ticker)
		sh.ticker = 0
	}
	sh.offset = 0
}
