package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
	"github.com/gasoline-dev/gasoline-broker/internal/governor"
)

func govWithCap(cap int) *governor.Governor {
	return governor.New(config.ParallelismConfig{
		Floor:                 1,
		RecoveryStableWindows: 3,
		ModeCaps:              config.ModeCaps{ManagedHeadless: cap},
	}, "managed", true, false)
}

// gatedExec blocks until release is closed, recording start/end order in log.
func gatedExec(log *[]string, mu *sync.Mutex, name string, release <-chan struct{}) Exec {
	return func(ctx context.Context) (any, error) {
		mu.Lock()
		*log = append(*log, "start-"+name)
		mu.Unlock()
		<-release
		mu.Lock()
		*log = append(*log, "end-"+name)
		mu.Unlock()
		return name, nil
	}
}

func TestSameTargetFIFO(t *testing.T) {
	s := New(govWithCap(4))
	var log []string
	var mu sync.Mutex
	releaseA := make(chan struct{})

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "A", releaseA))
		return err
	})

	// Give A a moment to enter its critical section before B is submitted.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(log) == 1
	}, time.Second, time.Millisecond)

	releaseB := make(chan struct{})
	close(releaseB)
	eg.Go(func() error {
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "B", releaseB))
		return err
	})

	// B must not start while A is still running on the same target.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"start-A"}, log)
	mu.Unlock()

	close(releaseA)
	require.NoError(t, eg.Wait())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"start-A", "end-A", "start-B", "end-B"}, log)
}

func TestCrossTargetParallelism(t *testing.T) {
	s := New(govWithCap(2))
	var log []string
	var mu sync.Mutex
	releaseA := make(chan struct{})
	releaseB := make(chan struct{})

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "A", releaseA))
		return err
	})
	eg.Go(func() error {
		_, err := s.RunTargetScoped(context.Background(), "t2", 1000, gatedExec(&log, &mu, "B", releaseB))
		return err
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(log) == 2
	}, time.Second, time.Millisecond, "both ops must reach start concurrently")

	// Completing A must not affect B, which is still running.
	close(releaseA)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range log {
			if e == "end-A" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	mu.Lock()
	for _, e := range log {
		require.NotEqual(t, "end-B", e, "B must still be running after only A was released")
	}
	mu.Unlock()

	close(releaseB)
	require.NoError(t, eg.Wait())
}

func TestBackpressureTimeout(t *testing.T) {
	s := New(govWithCap(1))
	release := make(chan struct{})
	var mu sync.Mutex
	var log []string

	var eg errgroup.Group
	eg.Go(func() error {
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "A", release))
		return err
	})

	require.Eventually(t, func() bool { return s.Inflight() == 1 }, time.Second, time.Millisecond)

	start := time.Now()
	_, err := s.RunTargetScoped(context.Background(), "t2", 25, func(ctx context.Context) (any, error) {
		t.Fatal("exec must not run when admission times out")
		return nil, nil
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Equal(t, gaserr.KindBackpressureTimeout, gaserr.KindOf(err))
	require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
	require.Equal(t, 0, s.WaiterCount(), "no stale waiter entry must remain for the timed-out target")

	close(release)
	require.NoError(t, eg.Wait())
}

func TestBackpressureTimeoutDoesNotLeakInflight(t *testing.T) {
	s := New(govWithCap(1))
	release := make(chan struct{})
	var mu sync.Mutex
	var log []string

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "A", release))
		require.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return s.Inflight() == 1 }, time.Second, time.Millisecond)

	_, err := s.RunTargetScoped(context.Background(), "t2", 10, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.Error(t, err)
	require.Equal(t, 1, s.Inflight(), "the rejected waiter must not have incremented inflight")

	close(release)
	wg.Wait()
	require.Eventually(t, func() bool { return s.Inflight() == 0 }, time.Second, time.Millisecond)
}

func TestRunTargetScopedAfterClearRejects(t *testing.T) {
	s := New(govWithCap(1))
	release := make(chan struct{})
	var mu sync.Mutex
	var log []string

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.RunTargetScoped(context.Background(), "t1", 1000, gatedExec(&log, &mu, "A", release))
		require.NoError(t, err, "an already-admitted, already-running op must complete normally despite a later Clear()")
	}()
	require.Eventually(t, func() bool { return s.Inflight() == 1 }, time.Second, time.Millisecond)

	// Queue a second op on a different target behind the full cap, then
	// tear down before it can be admitted.
	waiterDone := make(chan error, 1)
	go func() {
		_, err := s.RunTargetScoped(context.Background(), "t2", 1000, func(ctx context.Context) (any, error) {
			return nil, nil
		})
		waiterDone <- err
	}()
	require.Eventually(t, func() bool { return s.WaiterCount() == 1 }, time.Second, time.Millisecond)

	s.Clear()

	err := <-waiterDone
	require.Error(t, err)
	require.Equal(t, gaserr.KindSessionTerminated, gaserr.KindOf(err))

	close(release)
	wg.Wait()
}

func TestRunTargetScopedRejectsWhenAlreadyClosed(t *testing.T) {
	s := New(govWithCap(1))
	s.Clear()
	_, err := s.RunTargetScoped(context.Background(), "t1", 1000, func(ctx context.Context) (any, error) {
		t.Fatal("exec must not run on a closed scheduler")
		return nil, nil
	})
	require.Error(t, err)
	require.Equal(t, gaserr.KindSessionTerminated, gaserr.KindOf(err))
}
