// Package breaker implements a circuit breaker guarding calls to a flaky
// dependency.
//
// A Breaker moves between three states:
//
//	CLOSED    ── failure rate >= threshold (with enough calls) ──▶ OPEN
//	OPEN      ── cool-down elapsed ────────────────────────────▶ HALF_OPEN
//	HALF_OPEN ── trial succeeds ───────────────────────────────▶ CLOSED
//	HALF_OPEN ── trial fails ──────────────────────────────────▶ OPEN
//
// The failure rate is computed over a trailing time window split into
// buckets. Time is read only through the Clock in Settings, so tests can
// drive the state machine without sleeping.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the current position of a breaker in its state machine.
type State int

const (
	// StateClosed forwards every call and records its outcome.
	StateClosed State = iota
	// StateOpen rejects every call until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets a single trial call through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrOpen is passed to the fallback when the breaker rejects a call.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTrialInFlight is passed to the fallback when a half-open breaker
	// is already running its trial call.
	ErrTrialInFlight = errors.New("circuit breaker trial call in flight")
)

// Clock is the source of time for a breaker.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the process clock. time.Now carries a monotonic
// reading, so durations computed from it are immune to wall-clock jumps.
var SystemClock Clock = systemClock{}

// Settings configures a Breaker.
type Settings struct {
	// Name identifies the breaker in logs and in a Registry.
	Name string

	// FailureRateThreshold is the failed/total ratio, in (0,1], that trips
	// the breaker.
	FailureRateThreshold float64

	// MinimumCalls is the number of calls the window must contain before the
	// failure rate is evaluated.
	MinimumCalls int

	// Window is the trailing period the failure rate covers, divided into
	// Buckets slots.
	Window  time.Duration
	Buckets int

	// OpenTimeout is the cool-down between entering OPEN and admitting a trial.
	OpenTimeout time.Duration

	// Clock defaults to SystemClock.
	Clock Clock

	// OnStateChange is called, with the breaker lock held, on every transition.
	// It must not call back into the breaker.
	OnStateChange func(name string, from, to State)

	// IsFailure decides whether a non-nil error counts against the breaker.
	// Nil means every error counts.
	IsFailure func(error) bool
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:                 name,
		FailureRateThreshold: 0.5,
		MinimumCalls:         10,
		Window:               60 * time.Second,
		Buckets:              10,
		OpenTimeout:          30 * time.Second,
		Clock:                SystemClock,
	}
}

// Counts is a snapshot of the calls inside the current window.
type Counts struct {
	Requests  uint32 `json:"requests"`
	Successes uint32 `json:"successes"`
	Failures  uint32 `json:"failures"`
}

// FailureRate returns Failures/Requests, or 0 for an empty window.
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.Failures) / float64(c.Requests)
}

// Breaker is a circuit breaker. It is safe for concurrent use; its lock is
// held only while admitting a call and while recording its outcome, never
// while the guarded operation runs.
type Breaker struct {
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	openedAt   time.Time
	trial      bool
	window     *window
}

// New creates a Breaker in the CLOSED state. Zero-valued settings are
// replaced with the defaults.
func New(s Settings) *Breaker {
	def := DefaultSettings(s.Name)
	if s.FailureRateThreshold <= 0 || s.FailureRateThreshold > 1 {
		s.FailureRateThreshold = def.FailureRateThreshold
	}
	if s.MinimumCalls <= 0 {
		s.MinimumCalls = def.MinimumCalls
	}
	if s.Window <= 0 {
		s.Window = def.Window
	}
	if s.Buckets <= 0 {
		s.Buckets = def.Buckets
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = def.OpenTimeout
	}
	if s.Clock == nil {
		s.Clock = def.Clock
	}

	return &Breaker{
		settings: s,
		state:    StateClosed,
		window:   newWindow(s.Window, s.Buckets, s.Clock.Now()),
	}
}

// Name returns the name of the breaker.
func (b *Breaker) Name() string {
	return b.settings.Name
}

// State returns the current state. An OPEN breaker whose cool-down has
// elapsed reports HALF_OPEN.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.settings.Clock.Now())
	return b.state
}

// Counts returns the calls recorded in the current window.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.window.counts(b.settings.Clock.Now())
}

// Reset forces the breaker back to CLOSED with an empty window.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setState(StateClosed, b.settings.Clock.Now())
	// Calls admitted before the reset must not land in the fresh window.
	b.generation++
	b.trial = false
	b.window.reset()
}

// admission is the ticket handed out by allow and returned to done.
type admission struct {
	generation uint64
	trial      bool
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeIgnored
)

// allow decides whether a call may proceed.
func (b *Breaker) allow() (admission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(b.settings.Clock.Now())

	switch b.state {
	case StateOpen:
		return admission{}, ErrOpen
	case StateHalfOpen:
		if b.trial {
			return admission{}, ErrTrialInFlight
		}
		b.trial = true
		return admission{generation: b.generation, trial: true}, nil
	default:
		return admission{generation: b.generation}, nil
	}
}

// done records the outcome of an admitted call.
func (b *Breaker) done(a admission, o outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Clock.Now()
	b.refresh(now)

	// The breaker changed state after this call was admitted; its outcome
	// says nothing about the current generation.
	if a.generation != b.generation {
		return
	}

	if a.trial {
		b.trial = false
		switch o {
		case outcomeSuccess:
			b.setState(StateClosed, now)
		case outcomeFailure:
			b.setState(StateOpen, now)
		}
		return
	}

	if b.state != StateClosed || o == outcomeIgnored {
		return
	}

	b.window.add(now, o == outcomeFailure)

	c := b.window.counts(now)
	if int(c.Requests) >= b.settings.MinimumCalls && c.FailureRate() >= b.settings.FailureRateThreshold {
		b.setState(StateOpen, now)
	}
}

// refresh applies the time-driven OPEN -> HALF_OPEN transition.
func (b *Breaker) refresh(now time.Time) {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.OpenTimeout {
		b.setState(StateHalfOpen, now)
	}
}

func (b *Breaker) setState(to State, now time.Time) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.generation++
	b.trial = false

	switch to {
	case StateOpen:
		b.openedAt = now
	case StateClosed:
		b.window.reset()
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.settings.Name, from, to)
	}
}

func (b *Breaker) classify(ctx context.Context, err error) outcome {
	if err == nil {
		return outcomeSuccess
	}
	// The caller gave up; that is not the dependency's fault.
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return outcomeIgnored
	}
	if b.settings.IsFailure != nil && !b.settings.IsFailure(err) {
		return outcomeSuccess
	}
	return outcomeFailure
}

// Run invokes op through b and never fails: when the breaker rejects the
// call, or op returns an error or panics, the result of fallback is
// returned instead. The error handed to fallback explains why.
func Run[T any](ctx context.Context, b *Breaker, op func(context.Context) (T, error), fallback func(error) T) T {
	a, err := b.allow()
	if err != nil {
		return fallback(err)
	}

	res, err := call(ctx, op)
	b.done(a, b.classify(ctx, err))
	if err != nil {
		return fallback(err)
	}
	return res
}

func call[T any](ctx context.Context, op func(context.Context) (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("breaker: operation panicked: %v", r)
		}
	}()
	return op(ctx)
}
