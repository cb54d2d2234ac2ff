package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchScript struct {
	mu       sync.Mutex
	statuses map[string]string
	calls    int
}

func (f *fetchScript) fetch(ctx context.Context, sessionID string) (*SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &SessionStatus{SessionID: sessionID, EvaluateStatus: f.statuses[sessionID]}, nil
}

func (f *fetchScript) set(sessionID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[sessionID] = status
}

func (f *fetchScript) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPollerStopsWhenEvaluationFinishes(t *testing.T) {
	script := &fetchScript{statuses: map[string]string{"s1": "processing"}}

	var mu sync.Mutex
	var seen []string
	poller := NewStatusPoller(script.fetch, 10*time.Millisecond, func(s *SessionStatus) {
		mu.Lock()
		seen = append(seen, s.EvaluateStatus)
		mu.Unlock()
	})
	defer poller.Stop()

	poller.Track("s1")
	assert.True(t, poller.Running())

	// Let it observe a couple of processing ticks, then finish the session
	time.Sleep(35 * time.Millisecond)
	script.set("s1", "completed")

	require.Eventually(t, func() bool {
		return !poller.Running()
	}, time.Second, 5*time.Millisecond, "poller must stop itself once nothing is evaluating")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, "completed", seen[len(seen)-1])

	// No further fetches after self-stop
	calls := script.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, script.callCount())
}

func TestPollerStopReleasesTimer(t *testing.T) {
	script := &fetchScript{statuses: map[string]string{"s1": "pending"}}
	poller := NewStatusPoller(script.fetch, 10*time.Millisecond, nil)

	poller.Track("s1")
	require.True(t, poller.Running())

	poller.Stop()
	assert.False(t, poller.Running())

	calls := script.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, script.callCount(), "no fetch may run after teardown")
}

func TestPollerRestartsForNewSession(t *testing.T) {
	script := &fetchScript{statuses: map[string]string{"s1": "completed"}}
	poller := NewStatusPoller(script.fetch, 10*time.Millisecond, nil)
	defer poller.Stop()

	poller.Track("s1")
	require.Eventually(t, func() bool {
		return !poller.Running()
	}, time.Second, 5*time.Millisecond)

	script.set("s2", "pending")
	poller.Track("s2")
	assert.True(t, poller.Running(), "tracking a new evaluating session restarts the loop")
}

func TestPollerConcurrentStop(t *testing.T) {
	script := &fetchScript{statuses: map[string]string{"s1": "pending"}}
	poller := NewStatusPoller(script.fetch, 10*time.Millisecond, nil)

	poller.Track("s1")
	require.True(t, poller.Running())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Stop()
		}()
	}
	wg.Wait()

	assert.False(t, poller.Running())
}

func TestPollerStopWithoutStart(t *testing.T) {
	poller := NewStatusPoller(func(ctx context.Context, id string) (*SessionStatus, error) {
		return &SessionStatus{SessionID: id}, nil
	}, time.Second, nil)

	// Must not panic or block
	poller.Stop()
	assert.False(t, poller.Running())
}
