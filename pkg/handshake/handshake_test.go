package handshake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeLines records trigger edges and reports the completion line high
// for the first busyReads reads.
type fakeLines struct {
	mu        sync.Mutex
	edges     []bool
	busyReads int
	reads     int
	readErr   error
	trigErr   error
	closed    bool
	// highErr fails every assert, lowFails fails that many releases
	highErr  error
	lowFails int
	lowTries int
}

func (f *fakeLines) SetTrigger(high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trigErr != nil {
		return f.trigErr
	}
	if high && f.highErr != nil {
		return f.highErr
	}
	if !high {
		f.lowTries++
		if f.lowTries <= f.lowFails {
			return errors.New("gpio write failed")
		}
	}
	f.edges = append(f.edges, high)
	return nil
}

func (f *fakeLines) Completion() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, f.readErr
	}
	f.reads++
	if f.busyReads < 0 {
		return true, nil
	}
	return f.reads <= f.busyReads, nil
}

func (f *fakeLines) Close() error {
	f.closed = true
	return nil
}

func TestCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		lines := &fakeLines{busyReads: 5}
		h := NewFromLines(lines, WithPollInterval(0))

		var during State
		called := 0
		err := h.Cycle(ctx, func(context.Context) error {
			called++
			during = h.State()
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called != 1 {
			t.Errorf("expected onDone once, got %d", called)
		}
		if during != Done {
			t.Errorf("expected %s during callback, got %s", Done, during)
		}
		if h.State() != Idle {
			t.Errorf("expected %s after cycle, got %s", Idle, h.State())
		}
		if len(lines.edges) != 2 || !lines.edges[0] || lines.edges[1] {
			t.Errorf("expected high-then-low pulse, got %v", lines.edges)
		}
		if lines.reads != 6 {
			t.Errorf("expected 6 completion reads, got %d", lines.reads)
		}
	})

	t.Run("Stall", func(t *testing.T) {
		lines := &fakeLines{busyReads: -1}
		h := NewFromLines(lines, WithTimeout(50*time.Millisecond), WithPollInterval(time.Millisecond))

		started := time.Now()
		err := h.Cycle(ctx, func(context.Context) error {
			t.Error("onDone must not run after a stall")
			return nil
		})
		if !errors.Is(err, ErrHandshakeStall) {
			t.Fatalf("expected ErrHandshakeStall, got %v", err)
		}
		if elapsed := time.Since(started); elapsed < 50*time.Millisecond || elapsed > 5*time.Second {
			t.Errorf("unexpected stall duration %s", elapsed)
		}
		if h.State() != Idle {
			t.Errorf("expected %s after stall, got %s", Idle, h.State())
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		lines := &fakeLines{busyReads: -1}
		h := NewFromLines(lines, WithTimeout(time.Minute), WithPollInterval(time.Millisecond))

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		err := h.Cycle(cctx, func(context.Context) error { return nil })
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("ReadError", func(t *testing.T) {
		gpioErr := errors.New("gpio gone")
		h := NewFromLines(&fakeLines{readErr: gpioErr})
		err := h.Cycle(ctx, func(context.Context) error {
			t.Error("onDone must not run after a read error")
			return nil
		})
		if !errors.Is(err, gpioErr) {
			t.Errorf("expected wrapped read error, got %v", err)
		}
	})

	t.Run("TriggerError", func(t *testing.T) {
		gpioErr := errors.New("gpio gone")
		lines := &fakeLines{trigErr: gpioErr}
		h := NewFromLines(lines)
		err := h.Cycle(ctx, func(context.Context) error { return nil })
		if !errors.Is(err, gpioErr) {
			t.Errorf("expected wrapped trigger error, got %v", err)
		}
		if lines.reads != 0 {
			t.Errorf("completion line must not be polled after a failed trigger")
		}
	})

	t.Run("ReleaseRetried", func(t *testing.T) {
		lines := &fakeLines{lowFails: 1}
		h := NewFromLines(lines, WithPollInterval(0))
		if err := h.Cycle(ctx, func(context.Context) error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lines.lowTries != 2 {
			t.Errorf("expected 2 release attempts, got %d", lines.lowTries)
		}
		if n := len(lines.edges); n == 0 || lines.edges[n-1] {
			t.Errorf("trigger left asserted: %v", lines.edges)
		}
	})

	t.Run("ReleaseFails", func(t *testing.T) {
		lines := &fakeLines{lowFails: 2}
		h := NewFromLines(lines)
		err := h.Cycle(ctx, func(context.Context) error {
			t.Error("onDone must not run when the trigger cannot be released")
			return nil
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if lines.reads != 0 {
			t.Errorf("completion line must not be polled with the trigger stuck")
		}
	})

	t.Run("AssertFailsStillReleases", func(t *testing.T) {
		gpioErr := errors.New("gpio gone")
		lines := &fakeLines{highErr: gpioErr}
		h := NewFromLines(lines)
		if err := h.Cycle(ctx, func(context.Context) error { return nil }); !errors.Is(err, gpioErr) {
			t.Errorf("expected wrapped assert error, got %v", err)
		}
		if lines.lowTries != 1 || len(lines.edges) != 1 || lines.edges[0] {
			t.Errorf("expected a single release after the failed assert, got %d tries, edges %v", lines.lowTries, lines.edges)
		}
	})

	t.Run("CallbackError", func(t *testing.T) {
		cbErr := errors.New("engine failed")
		h := NewFromLines(&fakeLines{})
		if err := h.Cycle(ctx, func(context.Context) error { return cbErr }); !errors.Is(err, cbErr) {
			t.Errorf("expected callback error, got %v", err)
		}
		if h.State() != Idle {
			t.Errorf("expected %s, got %s", Idle, h.State())
		}
	})

	t.Run("Busy", func(t *testing.T) {
		h := NewFromLines(&fakeLines{})
		err := h.Cycle(ctx, func(ctx context.Context) error {
			if err := h.Cycle(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrBusy) {
				t.Errorf("expected ErrBusy, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestState(t *testing.T) {
	for s, want := range map[State]string{
		Idle:               "IDLE",
		Triggered:          "TRIGGERED",
		AwaitingCompletion: "AWAITING_COMPLETION",
		Done:               "DONE",
		State(42):          "(invalid state)",
	} {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s.String())
		}
	}
}
