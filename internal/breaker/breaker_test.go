package breaker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errUpstream = errors.New("connection refused")

func testSettings(clock Clock) Settings {
	return Settings{
		Name:                 "test",
		FailureRateThreshold: 0.5,
		MinimumCalls:         4,
		Window:               10 * time.Second,
		Buckets:              10,
		OpenTimeout:          30 * time.Second,
		Clock:                clock,
	}
}

// counted returns an operation that counts its invocations and fails
// while *failing is true.
func counted(calls *int32, failing *atomic.Bool) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		if failing.Load() {
			return "", errUpstream
		}
		return "live", nil
	}
}

func fallbackValue(error) string { return "fallback" }

func TestRun_ClosedForwardsCalls(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	var calls int32
	var failing atomic.Bool
	got := Run(context.Background(), b, counted(&calls, &failing), fallbackValue)

	assert.Equal(t, "live", got)
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{Requests: 1, Successes: 1}, b.Counts())
}

func TestRun_FailureReturnsFallback(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	var gotErr error
	got := Run(context.Background(), b, func(context.Context) (string, error) {
		return "", errUpstream
	}, func(err error) string {
		gotErr = err
		return "fallback"
	})

	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, gotErr, errUpstream)
	assert.Equal(t, StateClosed, b.State(), "one failure is below the minimum call count")
}

func TestRun_OpensAfterThresholdAndStopsCalling(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	var calls int32
	var failing atomic.Bool
	failing.Store(true)
	op := counted(&calls, &failing)

	for i := 0; i < 4; i++ {
		assert.Equal(t, "fallback", Run(context.Background(), b, op, fallbackValue))
	}
	require.Equal(t, StateOpen, b.State())
	require.EqualValues(t, 4, calls)

	// While open, nothing reaches the operation.
	var rejections []error
	for i := 0; i < 10; i++ {
		Run(context.Background(), b, op, func(err error) string {
			rejections = append(rejections, err)
			return "fallback"
		})
		clock.Advance(time.Second)
	}
	assert.EqualValues(t, 4, calls)
	for _, err := range rejections {
		assert.ErrorIs(t, err, ErrOpen)
	}
}

func TestRun_DoesNotTripBelowMinimumCalls(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	for i := 0; i < 3; i++ {
		Run(context.Background(), b, func(context.Context) (string, error) {
			return "", errUpstream
		}, fallbackValue)
	}

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{Requests: 3, Failures: 3}, b.Counts())
}

func TestRun_DoesNotTripBelowFailureRate(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	var calls int32
	var failing atomic.Bool
	op := counted(&calls, &failing)

	// 1 failure out of 4 calls is 25%, under the 50% threshold.
	failing.Store(true)
	Run(context.Background(), b, op, fallbackValue)
	failing.Store(false)
	for i := 0; i < 3; i++ {
		Run(context.Background(), b, op, fallbackValue)
	}

	assert.Equal(t, StateClosed, b.State())
	assert.InDelta(t, 0.25, b.Counts().FailureRate(), 1e-9)
}

func TestRun_OldFailuresLeaveTheWindow(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	fail := func(context.Context) (string, error) { return "", errUpstream }
	for i := 0; i < 3; i++ {
		Run(context.Background(), b, fail, fallbackValue)
	}

	clock.Advance(11 * time.Second)
	assert.Equal(t, Counts{}, b.Counts())

	// A fourth failure alone does not reach the minimum call count.
	Run(context.Background(), b, fail, fallbackValue)
	assert.Equal(t, StateClosed, b.State())
}

func TestRun_HalfOpenTrialSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	var calls int32
	var failing atomic.Bool
	failing.Store(true)
	op := counted(&calls, &failing)
	for i := 0; i < 4; i++ {
		Run(context.Background(), b, op, fallbackValue)
	}
	require.Equal(t, StateOpen, b.State())

	clock.Advance(29 * time.Second)
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	failing.Store(false)
	assert.Equal(t, "live", Run(context.Background(), b, op, fallbackValue))
	assert.EqualValues(t, 5, calls)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{}, b.Counts(), "closing resets the window")
}

func TestRun_HalfOpenTrialFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	var calls int32
	var failing atomic.Bool
	failing.Store(true)
	op := counted(&calls, &failing)
	for i := 0; i < 4; i++ {
		Run(context.Background(), b, op, fallbackValue)
	}
	clock.Advance(30 * time.Second)

	assert.Equal(t, "fallback", Run(context.Background(), b, op, fallbackValue))
	assert.EqualValues(t, 5, calls)
	assert.Equal(t, StateOpen, b.State())

	// The cool-down restarted at the failed trial.
	clock.Advance(29 * time.Second)
	Run(context.Background(), b, op, fallbackValue)
	assert.EqualValues(t, 5, calls)
	assert.Equal(t, StateOpen, b.State())
}

func TestRun_HalfOpenAdmitsSingleTrial(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	fail := func(context.Context) (string, error) { return "", errUpstream }
	for i := 0; i < 4; i++ {
		Run(context.Background(), b, fail, fallbackValue)
	}
	clock.Advance(30 * time.Second)

	started := make(chan struct{})
	release := make(chan struct{})
	trialDone := make(chan string)
	go func() {
		trialDone <- Run(context.Background(), b, func(context.Context) (string, error) {
			close(started)
			<-release
			return "live", nil
		}, fallbackValue)
	}()
	<-started

	var second error
	got := Run(context.Background(), b, func(context.Context) (string, error) {
		t.Error("second call must not run while the trial is in flight")
		return "", nil
	}, func(err error) string {
		second = err
		return "fallback"
	})
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, second, ErrTrialInFlight)

	close(release)
	assert.Equal(t, "live", <-trialDone)
	assert.Equal(t, StateClosed, b.State())
}

func TestRun_RecoversPanics(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	var gotErr error
	got := Run(context.Background(), b, func(context.Context) (string, error) {
		panic("boom")
	}, func(err error) string {
		gotErr = err
		return "fallback"
	})

	assert.Equal(t, "fallback", got)
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "boom")
	assert.Equal(t, Counts{Requests: 1, Failures: 1}, b.Counts())
}

func TestRun_CallerCancellationIsNotAFailure(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 10; i++ {
		got := Run(ctx, b, func(ctx context.Context) (string, error) {
			return "", ctx.Err()
		}, fallbackValue)
		assert.Equal(t, "fallback", got)
	}

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{}, b.Counts())
}

func TestRun_IsFailureFilter(t *testing.T) {
	s := testSettings(newFakeClock())
	errNotFound := errors.New("not found")
	s.IsFailure = func(err error) bool { return !errors.Is(err, errNotFound) }
	b := New(s)

	for i := 0; i < 8; i++ {
		Run(context.Background(), b, func(context.Context) (string, error) {
			return "", errNotFound
		}, fallbackValue)
	}

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{Requests: 8, Successes: 8}, b.Counts())
}

func TestRun_StaleOutcomeIsDiscarded(t *testing.T) {
	clock := newFakeClock()
	b := New(testSettings(clock))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(context.Background(), b, func(context.Context) (string, error) {
			close(started)
			<-release
			return "", errUpstream
		}, fallbackValue)
	}()
	<-started

	// The breaker is reset while the slow call is still running.
	b.Reset()
	close(release)
	<-done

	assert.Equal(t, Counts{}, b.Counts())
}

func TestBreaker_OnStateChange(t *testing.T) {
	clock := newFakeClock()
	s := testSettings(clock)

	var transitions []string
	s.OnStateChange = func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	}
	b := New(s)

	fail := func(context.Context) (string, error) { return "", errUpstream }
	ok := func(context.Context) (string, error) { return "ok", nil }
	for i := 0; i < 4; i++ {
		Run(context.Background(), b, fail, fallbackValue)
	}
	clock.Advance(30 * time.Second)
	Run(context.Background(), b, ok, fallbackValue)

	assert.Equal(t, []string{
		"test:closed->open",
		"test:open->half-open",
		"test:half-open->closed",
	}, transitions)
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	b := New(testSettings(newFakeClock()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Run(context.Background(), b, func(context.Context) (int, error) {
				return i, nil
			}, func(error) int { return -1 })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateClosed, b.State())
	assert.EqualValues(t, 50, b.Counts().Requests)
}

func TestNew_FillsDefaults(t *testing.T) {
	b := New(Settings{Name: "defaults"})

	assert.Equal(t, "defaults", b.Name())
	assert.Equal(t, 0.5, b.settings.FailureRateThreshold)
	assert.Equal(t, 10, b.settings.MinimumCalls)
	assert.Equal(t, 30*time.Second, b.settings.OpenTimeout)
	assert.NotNil(t, b.settings.Clock)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
