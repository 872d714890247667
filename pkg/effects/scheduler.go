// Package effects runs the transient cosmetic side-effects of
// playback: screen shake, background dimming, and audio ducking. All
// scheduled work is keyed by a token so a scene change can cancel
// everything issued for the previous scene before the next one starts.
package effects

import (
	"log/slog"
	"sync"
	"time"
)

// Token identifies one scheduled effect task.
type Token uint64

// Scheduler issues cancellable timer-driven tasks. Callbacks are
// handed to the dispatch function, so a host event loop can serialize
// them with user input; a nil dispatch runs callbacks directly on the
// timer goroutine.
type Scheduler struct {
	mu       sync.Mutex
	dispatch func(func())
	logger   *slog.Logger
	next     Token
	timers   map[Token]*time.Timer
	tickers  map[Token]chan struct{}
	closed   bool
}

func NewScheduler(dispatch func(func()), logger *slog.Logger) *Scheduler {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Scheduler{
		dispatch: dispatch,
		logger:   logger,
		timers:   make(map[Token]*time.Timer),
		tickers:  make(map[Token]chan struct{}),
	}
}

// After schedules fn to run once after d. The callback is dropped if
// the token is cancelled first.
func (s *Scheduler) After(d time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	s.next++
	token := s.next
	s.timers[token] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[token]
		delete(s.timers, token)
		s.mu.Unlock()
		if live {
			s.dispatch(fn)
		}
	})
	return token
}

// Every schedules fn on a fixed interval until the token is cancelled.
func (s *Scheduler) Every(interval time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	s.next++
	token := s.next
	stop := make(chan struct{})
	s.tickers[token] = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.dispatch(fn)
			}
		}
	}()
	return token
}

// Cancel stops one task. Cancelling an already-fired or unknown token
// is a no-op.
func (s *Scheduler) Cancel(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(token)
}

func (s *Scheduler) cancelLocked(token Token) {
	if t, ok := s.timers[token]; ok {
		t.Stop()
		delete(s.timers, token)
	}
	if stop, ok := s.tickers[token]; ok {
		close(stop)
		delete(s.tickers, token)
	}
}

// CancelAll stops every outstanding task. Called on every scene change
// so no timer from a previous scene fires after the scene has changed.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.timers {
		s.cancelLocked(token)
	}
	for token := range s.tickers {
		s.cancelLocked(token)
	}
	if s.logger != nil {
		s.logger.Debug("Cancelled all scheduled effects")
	}
}

// Close cancels everything and rejects new work. Used on teardown when
// navigating away from playback.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.timers {
		s.cancelLocked(token)
	}
	for token := range s.tickers {
		s.cancelLocked(token)
	}
	s.closed = true
}

// Pending returns the number of outstanding tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers) + len(s.tickers)
}
