// Package client holds consumer-side helpers for the interview API. The
// status poller is part of the service contract: evaluation progress is only
// observable by re-fetching session state.
package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// SessionStatus is the slice of session state the poller cares about.
type SessionStatus struct {
	SessionID      string
	EvaluateStatus string
}

// Evaluating reports whether the session is still mid-evaluation.
func (s *SessionStatus) Evaluating() bool {
	return s.EvaluateStatus == "pending" || s.EvaluateStatus == "processing"
}

// FetchFunc retrieves the current status of one session.
type FetchFunc func(ctx context.Context, sessionID string) (*SessionStatus, error)

// StatusPoller re-fetches tracked sessions on a fixed interval while any of
// them is mid-evaluation, and stops scheduling fetches the moment none is.
// A cooperative timer loop, not a permanent background goroutine: the ticker
// only exists while there is something to watch.
type StatusPoller struct {
	fetch    FetchFunc
	interval time.Duration
	onUpdate func(*SessionStatus)

	mu      sync.Mutex
	tracked map[string]struct{}
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewStatusPoller(fetch FetchFunc, interval time.Duration, onUpdate func(*SessionStatus)) *StatusPoller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &StatusPoller{
		fetch:    fetch,
		interval: interval,
		onUpdate: onUpdate,
		tracked:  make(map[string]struct{}),
	}
}

// Track adds a session to the watch set and starts the timer loop if it is
// not already running.
func (p *StatusPoller) Track(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracked[sessionID] = struct{}{}
	if !p.running {
		p.running = true
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.loop(p.stop, p.done)
	}
}

// Untrack removes a session from the watch set.
func (p *StatusPoller) Untrack(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tracked, sessionID)
}

// Running reports whether the timer loop is currently scheduled.
func (p *StatusPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop tears the poller down, releasing the timer. Safe to call whether or
// not the loop is running, and required on teardown so no interval survives
// the consumer that created it. The channel refs are cleared under the lock
// before the close, so concurrent Stop calls cannot close the same channel
// twice.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	if !p.running || p.stop == nil {
		p.mu.Unlock()
		return
	}
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.running = false
	p.mu.Unlock()

	close(stop)
	<-done
}

func (p *StatusPoller) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			// Stop already cleared the running flag
			return
		case <-ticker.C:
			if !p.tick() && p.tryFinish() {
				return
			}
		}
	}
}

// tick fetches every tracked session once and prunes the ones that finished
// evaluating. Returns false when nothing is left to watch.
func (p *StatusPoller) tick() bool {
	p.mu.Lock()
	ids := make([]string, 0, len(p.tracked))
	for id := range p.tracked {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	for _, id := range ids {
		status, err := p.fetch(ctx, id)
		if err != nil {
			log.Printf("⚠️  Failed to poll session %s: %v\n", id, err)
			continue
		}

		if p.onUpdate != nil {
			p.onUpdate(status)
		}
		if !status.Evaluating() {
			p.Untrack(id)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tracked) > 0
}

// tryFinish stops the loop unless a session was tracked between the last
// tick and now.
func (p *StatusPoller) tryFinish() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tracked) > 0 {
		return false
	}
	p.running = false
	p.stop, p.done = nil, nil
	return true
}
