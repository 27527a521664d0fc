package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

// Breaker fast-fails calls to a dependency that keeps erroring. After
// threshold consecutive failures it opens for the cooldown period, then
// lets a single probe through; the probe's outcome decides whether the
// breaker closes again or re-opens.
type Breaker struct {
	mu         sync.Mutex
	state      State
	failures   int
	threshold  int
	cooldown   time.Duration
	openedAt   time.Time
	probeInUse bool
	onTrip     func(State, State)
}

// New creates a breaker that opens after threshold consecutive failures
// and stays open for cooldown before probing again.
func New(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// OnStateChange registers a callback invoked on every transition.
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = fn
}

// Allow reports whether a call may proceed right now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return false
		}
		b.transition(StateHalfOpen)
		b.probeInUse = true
		return true
	case StateHalfOpen:
		// One probe at a time.
		if b.probeInUse {
			return false
		}
		b.probeInUse = true
		return true
	}
	return false
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probeInUse = false
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// Failure records a failed call and may trip the breaker open.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInUse = false
	switch b.state {
	case StateHalfOpen:
		b.openedAt = time.Now()
		b.transition(StateOpen)
	case StateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.failures = 0
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onTrip != nil {
		b.onTrip(from, to)
	}
}
