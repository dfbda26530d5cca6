package resilience

import (
	"sync"
	"time"
)

// State is a circuit breaker state.
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
	}
	return "unknown"
}

// BreakerConfig tunes one circuit breaker.
type BreakerConfig struct {
	// Window is the number of most recent call outcomes considered when
	// deciding whether to open.
	Window int
	// FailureRateThreshold opens the breaker when the failure rate over a
	// full window reaches this fraction.
	FailureRateThreshold float64
	// OpenWait is how long the breaker stays open before permitting a
	// half-open trial call.
	OpenWait time.Duration
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Window <= 0 {
		c.Window = 2
	}
	if c.FailureRateThreshold <= 0 {
		c.FailureRateThreshold = 0.5
	}
	if c.OpenWait <= 0 {
		c.OpenWait = time.Second
	}
	return c
}

// Breaker is a count-based sliding window circuit breaker. The open decision
// is made only once the window is full.
type Breaker struct {
	mu sync.Mutex

	cfg   BreakerConfig
	state State

	window []bool // true = failure
	next   int
	filled int

	openedAt time.Time
	trial    bool

	now func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = cfg.withDefaults()
	return &Breaker{
		cfg:    cfg,
		window: make([]bool, cfg.Window),
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed. In the open state it flips to
// half-open once the wait elapses and admits a single trial call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.OpenWait {
			return false
		}
		b.state = StateHalfOpen
		b.trial = true
		return true
	case StateHalfOpen:
		if b.trial {
			return false
		}
		b.trial = true
		return true
	}
	return false
}

// RecordSuccess notes a successful call. A half-open success closes the
// breaker and resets the window.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.state = StateClosed
		b.reset()
	case StateClosed:
		b.record(false)
	}
}

// RecordFailure notes a failed call. A half-open failure reopens the
// breaker immediately; in the closed state the sliding window decides.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		b.record(true)
		if b.filled < b.cfg.Window {
			return
		}
		failures := 0
		for _, failed := range b.window {
			if failed {
				failures++
			}
		}
		rate := float64(failures) / float64(b.cfg.Window)
		if rate >= b.cfg.FailureRateThreshold {
			b.open()
		}
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) record(failed bool) {
	b.window[b.next] = failed
	b.next = (b.next + 1) % b.cfg.Window
	if b.filled < b.cfg.Window {
		b.filled++
	}
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.trial = false
	b.reset()
}

func (b *Breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.next = 0
	b.filled = 0
	b.trial = false
}
