package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensOnFullFailedWindow(t *testing.T) {
	b := NewBreaker(BreakerConfig{Window: 2, FailureRateThreshold: 0.5, OpenWait: time.Second})

	b.RecordFailure()
	if got := b.State(); got != StateClosed {
		t.Fatalf("state after one failure = %v, want closed", got)
	}
	b.RecordFailure()
	if got := b.State(); got != StateOpen {
		t.Fatalf("state after full failed window = %v, want open", got)
	}
	if b.Allow() {
		t.Fatalf("open breaker allowed a call before the wait elapsed")
	}
}

func TestBreakerIgnoresFailuresBelowThreshold(t *testing.T) {
	b := NewBreaker(BreakerConfig{Window: 4, FailureRateThreshold: 0.5, OpenWait: time.Second})

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure()
	if got := b.State(); got != StateClosed {
		t.Fatalf("state at 25%% failure rate = %v, want closed", got)
	}
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	b := NewBreaker(BreakerConfig{Window: 2, FailureRateThreshold: 0.5, OpenWait: time.Second})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	b.RecordFailure()
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	clock = clock.Add(1100 * time.Millisecond)
	if !b.Allow() {
		t.Fatalf("breaker refused the half-open trial after the wait")
	}
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}
	if b.Allow() {
		t.Fatalf("half-open breaker admitted a second concurrent call")
	}

	b.RecordSuccess()
	if got := b.State(); got != StateClosed {
		t.Fatalf("state after trial success = %v, want closed", got)
	}
	if !b.Allow() {
		t.Fatalf("closed breaker refused a call")
	}
}

func TestBreakerReopensOnTrialFailure(t *testing.T) {
	b := NewBreaker(BreakerConfig{Window: 2, FailureRateThreshold: 0.5, OpenWait: time.Second})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	b.RecordFailure()
	clock = clock.Add(2 * time.Second)
	if !b.Allow() {
		t.Fatalf("breaker refused the half-open trial")
	}
	b.RecordFailure()
	if got := b.State(); got != StateOpen {
		t.Fatalf("state after trial failure = %v, want open", got)
	}
	if b.Allow() {
		t.Fatalf("breaker admitted a call right after reopening")
	}
}

func TestRegistryReturnsSameBreakerPerName(t *testing.T) {
	r := NewRegistry(BreakerConfig{})
	r.Configure("card", BreakerConfig{Window: 8, FailureRateThreshold: 0.25, OpenWait: time.Second})

	if r.Breaker("card") != r.Breaker("card") {
		t.Fatalf("registry returned distinct breakers for the same name")
	}
	if r.Breaker("card") == r.Breaker("fraud") {
		t.Fatalf("registry shared a breaker across names")
	}
}
