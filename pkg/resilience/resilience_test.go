package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPolicyRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 4, BaseDelay: time.Millisecond}.Do(context.Background(), "load", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPolicyStopsOnPermanent(t *testing.T) {
	malformed := errors.New("yaml: line 3: did not find expected key")
	calls := 0
	err := Policy{Attempts: 5, BaseDelay: time.Millisecond}.Do(context.Background(), "load", func(context.Context) error {
		calls++
		return Permanent(malformed)
	})
	if err != malformed {
		t.Fatalf("err = %v, want the unwrapped cause", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !IsPermanent(Permanent(malformed)) || IsPermanent(malformed) {
		t.Error("IsPermanent misreports")
	}
}

func TestPolicyExhausts(t *testing.T) {
	down := errors.New("db down")
	calls := 0
	err := Policy{Attempts: 2, BaseDelay: time.Millisecond}.Do(context.Background(), "load", func(context.Context) error {
		calls++
		return down
	})
	if !errors.Is(err, down) || calls != 2 {
		t.Fatalf("err = %v after %d calls, want wrapped cause after 2", err, calls)
	}
}

func TestPolicyAttemptTimeout(t *testing.T) {
	p := Policy{Attempts: 2, BaseDelay: time.Millisecond, AttemptTimeout: 5 * time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), "slow", func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want every attempt to get its own deadline", calls)
	}
}

func TestPolicyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 10, BaseDelay: time.Hour}.Do(ctx, "load", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls, want canceled after 1", err, calls)
	}
}

func TestBackoff(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	tests := []struct {
		attempt  int
		min, max time.Duration
	}{
		{1, 50 * time.Millisecond, 100 * time.Millisecond},
		{3, 200 * time.Millisecond, 400 * time.Millisecond},
		{10, 500 * time.Millisecond, time.Second},
		{80, 500 * time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			if d := p.Backoff(tt.attempt); d < tt.min || d > tt.max {
				t.Fatalf("Backoff(%d) = %v, want within [%v, %v]", tt.attempt, d, tt.min, tt.max)
			}
		}
	}
}

func TestBreakerLifecycle(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var transitions []State
	b := NewBreaker("items", BreakerConfig{
		Threshold: 2,
		Cooldown:  time.Minute,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	b.now = func() time.Time { return now }
	fail := errors.New("db down")

	_ = b.Do(func() error { return fail })
	if b.State() != StateClosed {
		t.Fatalf("opened after one failure")
	}
	_ = b.Do(func() error { return fail })
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }); !errors.Is(err, ErrOpen) || called {
		t.Fatalf("Do while open = %v (called %v), want ErrOpen without calling", err, called)
	}

	now = now.Add(time.Minute)
	_ = b.Do(func() error { return fail })
	if b.State() != StateOpen {
		t.Fatalf("failed probe left state %v, want open", b.State())
	}

	now = now.Add(time.Minute)
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	want := []State{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
}

func TestBreakerSingleProbe(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewBreaker("items", BreakerConfig{Threshold: 1, Cooldown: time.Second})
	b.now = func() time.Time { return now }
	_ = b.Do(func() error { return errors.New("down") })
	now = now.Add(2 * time.Second)

	release := make(chan struct{})
	done := make(chan error)
	go func() { done <- b.Do(func() error { <-release; return nil }) }()
	// Wait for the probe to be admitted.
	for b.State() != StateHalfOpen {
		time.Sleep(time.Millisecond)
	}
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Errorf("second call during probe = %v, want ErrOpen", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("probe: %v", err)
	}
	b.Reset()
	if b.State() != StateClosed {
		t.Errorf("state after Reset = %v", b.State())
	}
}
