package effects

import "sync"

// Overlay is the background-dimming reference count. Sprites that want
// the background dimmed acquire it on appearance and release it on
// exit; the overlay is visible while the count is positive. The count
// saturates at zero so unbalanced releases cannot drive it negative,
// and it is reset outright whenever the scene changes.
type Overlay struct {
	mu    sync.Mutex
	count int
}

func NewOverlay() *Overlay {
	return &Overlay{}
}

// Acquire increments the dim request count.
func (o *Overlay) Acquire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.count++
}

// Release decrements the count, saturating at zero.
func (o *Overlay) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.count > 0 {
		o.count--
	}
}

// Visible reports whether the dimming overlay should be drawn.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count > 0
}

// Reset zeroes the count. Called on every scene change.
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.count = 0
}
