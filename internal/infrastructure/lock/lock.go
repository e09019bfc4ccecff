// Package lock provides a table of named exclusive slots with a bounded wait.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"golang.org/x/sync/semaphore"
)

const DefaultTimeout = 2 * time.Second

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// Table hands out one exclusive holder per key. Slots are created on first
// use and dropped once nobody holds or waits on them, so keys never contend
// with each other and the table does not grow with history.
type Table struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
	clock   clock.Clock
}

func NewTable(timeout time.Duration, clk clock.Clock) *Table {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &Table{slots: map[string]*slot{}, timeout: timeout, clock: clk}
}

// Acquire waits up to the table timeout for key. The returned release func is
// safe to call more than once. A timed out wait returns an error satisfying
// errors.Is(err, errors.Timeout).
func (t *Table) Acquire(ctx context.Context, key string) (func(), error) {
	s := t.ref(key)

	if !s.sem.TryAcquire(1) {
		waitCtx, cancel := context.WithCancel(ctx)
		timer := t.clock.NewTimer(t.timeout)
		timedOut := make(chan struct{})
		go func() {
			select {
			case <-timer.Chan():
				close(timedOut)
				cancel()
			case <-waitCtx.Done():
			}
		}()

		err := s.sem.Acquire(waitCtx, 1)
		timer.Stop()
		cancel()
		if err != nil {
			t.unref(key, s)
			select {
			case <-timedOut:
				return nil, errors.Timeoutf("waiting %s for slot %q", t.timeout, key)
			default:
				return nil, errors.Trace(ctx.Err())
			}
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sem.Release(1)
			t.unref(key, s)
		})
	}, nil
}

func (t *Table) ref(key string) *slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		t.slots[key] = s
	}
	s.refs++
	return s
}

func (t *Table) unref(key string, s *slot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(t.slots, key)
	}
}

// Len reports how many keys are currently held or waited on.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
