// scheduler.go — per-target FIFO admission through governor slots
// (spec §4.G).
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
	"github.com/gasoline-dev/gasoline-broker/internal/governor"
)

// waiter is one admission-queue entry (spec §3 "PerTargetQueue" /
// §4.G "waiters FIFO").
type waiter struct {
	targetID   string
	enqueuedAt time.Time
	admit      chan struct{} // closed to admit
	admitted   bool          // set true (under Scheduler.mu) at the same time admit is closed
}

// Scheduler owns one session's admission queue and per-target chains.
// Single-writer: all mutation guarded by mu.
type Scheduler struct {
	mu sync.Mutex

	gov      *governor.Governor
	inflight int

	waiters         []*waiter
	waitingByTarget map[string]time.Time
	chains          map[string]chan struct{} // targetId -> tail, closes when current op finishes

	closed bool
}

func New(gov *governor.Governor) *Scheduler {
	return &Scheduler{
		gov:             gov,
		waitingByTarget: make(map[string]time.Time),
		chains:          make(map[string]chan struct{}),
	}
}

// Exec is the critical section a caller wants run exclusively per target.
type Exec func(ctx context.Context) (any, error)

// RunTargetScoped resolves admission and per-target ordering, then runs
// exec. It blocks until exec completes, the session is torn down, or the
// admission wait exceeds timeoutMs (spec §4.G).
func (s *Scheduler) RunTargetScoped(ctx context.Context, targetID string, timeoutMs int, exec Exec) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, gaserr.New(gaserr.KindSessionTerminated, "session is being torn down")
	}

	priorTail := s.chains[targetID]
	myTail := make(chan struct{})
	s.chains[targetID] = myTail

	admitted := s.tryAdmitLocked()
	var w *waiter
	if !admitted {
		w = &waiter{targetID: targetID, enqueuedAt: time.Now(), admit: make(chan struct{})}
		s.waiters = append(s.waiters, w)
		s.waitingByTarget[targetID] = w.enqueuedAt
	}
	s.mu.Unlock()

	if !admitted {
		if err := s.waitForAdmission(ctx, w, timeoutMs); err != nil {
			// This call never ran: release the chain slot immediately so
			// later calls on this target are not blocked by a no-op.
			s.mu.Lock()
			if s.chains[targetID] == myTail {
				delete(s.chains, targetID)
			}
			s.mu.Unlock()
			close(myTail)
			return nil, err
		}
	}

	if priorTail != nil {
		select {
		case <-priorTail:
		case <-ctx.Done():
			s.releaseAfterTimeoutOrCancel(targetID, myTail)
			return nil, gaserr.Wrap(gaserr.KindCancelled, "cancelled while waiting for prior op on target", ctx.Err())
		}
	}

	result, err := exec(ctx)

	s.mu.Lock()
	if s.chains[targetID] == myTail {
		delete(s.chains, targetID)
	}
	s.inflight--
	s.gov.ReleaseSlot()
	s.wakeEligibleLocked()
	s.mu.Unlock()
	close(myTail)

	return result, err
}

// releaseAfterTimeoutOrCancel undoes admission bookkeeping for a call
// that was admitted but then cancelled before it could run exec.
func (s *Scheduler) releaseAfterTimeoutOrCancel(targetID string, myTail chan struct{}) {
	s.mu.Lock()
	if s.chains[targetID] == myTail {
		delete(s.chains, targetID)
	}
	s.inflight--
	s.gov.ReleaseSlot()
	s.wakeEligibleLocked()
	s.mu.Unlock()
	close(myTail)
}

// tryAdmitLocked admits the caller if the governor's semaphore has a free
// slot under the current effective cap. Must be called with mu held.
func (s *Scheduler) tryAdmitLocked() bool {
	if s.gov.TryAcquireSlot() {
		s.inflight++
		return true
	}
	return false
}

// waitForAdmission blocks until w is admitted, the context is done, or
// timeoutMs elapses (spec §4.G step 2: "timer rejects with backpressure
// error after timeoutMs").
func (s *Scheduler) waitForAdmission(ctx context.Context, w *waiter, timeoutMs int) error {
	var timeoutCh <-chan time.Time
	if timeoutMs > 0 {
		timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-w.admit:
		// close(w.admit) happens-before this receive returns, so reading
		// w.admitted here without the lock is safe: Clear() closes the
		// same channel without setting it, to reject rather than admit.
		if !w.admitted {
			return gaserr.New(gaserr.KindSessionTerminated, "session is being torn down")
		}
		return nil
	case <-timeoutCh:
		if s.settleRaceLocked(w) {
			return nil // admitted concurrently with the timer firing
		}
		return gaserr.New(gaserr.KindBackpressureTimeout, "timed out waiting for an available concurrency slot")
	case <-ctx.Done():
		if s.settleRaceLocked(w) {
			return nil
		}
		return gaserr.Wrap(gaserr.KindCancelled, "cancelled while waiting for a concurrency slot", ctx.Err())
	}
}

// settleRaceLocked resolves the race between a waiter being admitted and
// its timeout/cancellation firing at the same instant: whichever
// happened first under Scheduler.mu wins. Returns true if w was already
// admitted (inflight already accounts for it, so the caller must not
// also remove it from the queue).
func (s *Scheduler) settleRaceLocked(w *waiter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.admitted {
		return true
	}
	s.removeWaiterLocked(w)
	return false
}

// removeWaiterLocked drops w from the waiters slice and clears its
// waitingByTarget entry if w was the last one outstanding for its target.
func (s *Scheduler) removeWaiterLocked(w *waiter) {
	for i, other := range s.waiters {
		if other == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			break
		}
	}
	stillWaiting := false
	for _, other := range s.waiters {
		if other.targetID == w.targetID {
			stillWaiting = true
			break
		}
	}
	if !stillWaiting {
		delete(s.waitingByTarget, w.targetID)
	}
}

// wakeEligibleLocked admits head waiters while the cap allows, stopping
// at the first waiter that would exceed effectiveCap — it stays at head
// and is retried on the next release (spec §4.G step 5).
func (s *Scheduler) wakeEligibleLocked() {
	for len(s.waiters) > 0 {
		if !s.gov.TryAcquireSlot() {
			return
		}
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		stillWaiting := false
		for _, other := range s.waiters {
			if other.targetID == w.targetID {
				stillWaiting = true
				break
			}
		}
		if !stillWaiting {
			delete(s.waitingByTarget, w.targetID)
		}
		s.inflight++
		w.admitted = true
		close(w.admit)
	}
}

// Clear rejects all outstanding waiters with a stable error, drops this
// session's chains, and refuses further admission — for teardown
// (spec §4.G "clearSessionParallelState").
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, w := range s.waiters {
		close(w.admit)
	}
	s.waiters = nil
	s.waitingByTarget = make(map[string]time.Time)
	s.chains = make(map[string]chan struct{})
}

// Inflight reports the current in-flight count, for tests and metrics.
func (s *Scheduler) Inflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// WaiterCount reports the current waiter queue length.
func (s *Scheduler) WaiterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
