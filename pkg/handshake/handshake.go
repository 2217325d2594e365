// Package handshake drives the trigger/completion protocol with the measurement controller.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrHandshakeStall is returned when the completion line never goes low.
	ErrHandshakeStall = errors.New("handshake stalled: completion line never went low")
	// ErrBusy is returned when a cycle is started while another is running.
	ErrBusy = errors.New("handshake cycle already in progress")
)

const (
	DefaultPollInterval = 10 * time.Microsecond
	DefaultTimeout      = 5 * time.Second
)

// Trigger drives the trigger output line.
type Trigger interface {
	SetTrigger(high bool) error
}

// Completion reads the completion input line. High means the controller is busy.
type Completion interface {
	Completion() (high bool, err error)
}

// Lines is a GPIO backend carrying both handshake lines.
type Lines interface {
	Trigger
	Completion
	io.Closer
}

// Handshake synchronizes an acquisition with the external measurement controller.
type Handshake struct {
	trig Trigger
	done Completion

	pulseWidth   time.Duration
	pollInterval time.Duration
	timeout      time.Duration

	state *atomic.Uint32
	log   zerolog.Logger
}

type Option func(*Handshake)

// WithPulseWidth holds the trigger line high for d before releasing it.
func WithPulseWidth(d time.Duration) Option {
	return func(h *Handshake) { h.pulseWidth = d }
}

// WithPollInterval sets the delay between completion line reads.
// Zero polls without sleeping.
func WithPollInterval(d time.Duration) Option {
	return func(h *Handshake) { h.pollInterval = d }
}

// WithTimeout bounds the wait for the completion line.
func WithTimeout(d time.Duration) Option {
	return func(h *Handshake) { h.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(h *Handshake) { h.log = l }
}

// New constructs a Handshake over the given trigger and completion lines.
func New(trig Trigger, done Completion, opts ...Option) *Handshake {
	h := &Handshake{
		trig:         trig,
		done:         done,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		state:        new(atomic.Uint32),
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.timeout <= 0 {
		h.timeout = DefaultTimeout
	}
	return h
}

// NewFromLines constructs a Handshake over a single GPIO backend.
func NewFromLines(lines Lines, opts ...Option) *Handshake {
	return New(lines, lines, opts...)
}

// State returns the current handshake state.
func (h *Handshake) State() State {
	return State(h.state.Load())
}

func (h *Handshake) setState(s State) {
	prev := State(h.state.Swap(uint32(s)))
	h.log.Trace().Stringer("from", prev).Stringer("to", s).Msg("handshake")
}

// Cycle runs one handshake: pulse the trigger, wait for the completion line to
// go low, then call onDone. The state returns to [Idle] once onDone returns,
// whether or not any step failed. onDone is not called if the wait fails.
func (h *Handshake) Cycle(ctx context.Context, onDone func(ctx context.Context) error) error {
	if !h.state.CompareAndSwap(uint32(Idle), uint32(Triggered)) {
		return ErrBusy
	}
	defer h.setState(Idle)

	h.log.Trace().Stringer("from", Idle).Stringer("to", Triggered).Msg("handshake")

	if err := h.pulse(); err != nil {
		return err
	}

	h.setState(AwaitingCompletion)

	waited, err := h.awaitCompletion(ctx)
	if err != nil {
		return err
	}

	h.log.Debug().Dur("waited", waited).Msg("controller signalled completion")

	h.setState(Done)

	return onDone(ctx)
}

func (h *Handshake) pulse() error {
	if err := h.trig.SetTrigger(true); err != nil {
		return errors.Join(fmt.Errorf("failed to assert trigger: %w", err), h.release())
	}
	if h.pulseWidth > 0 {
		time.Sleep(h.pulseWidth)
	}
	return h.release()
}

// release drives the trigger low, retrying once so the controller is not left latched.
func (h *Handshake) release() error {
	err := h.trig.SetTrigger(false)
	if err == nil {
		return nil
	}
	if retry := h.trig.SetTrigger(false); retry != nil {
		return fmt.Errorf("failed to release trigger: %w", errors.Join(err, retry))
	}
	h.log.Warn().Err(err).Msg("trigger released on second attempt")
	return nil
}

// awaitCompletion polls until the completion line reads low.
func (h *Handshake) awaitCompletion(ctx context.Context) (time.Duration, error) {
	started := time.Now()
	deadline := started.Add(h.timeout)

	for {
		hl, err := h.done.Completion()
		if err != nil {
			return time.Since(started), fmt.Errorf("failed to read completion line: %w", err)
		}
		if !hl {
			return time.Since(started), nil
		}

		if err = ctx.Err(); err != nil {
			return time.Since(started), err
		}
		if time.Now().After(deadline) {
			return time.Since(started), fmt.Errorf("%w after %s", ErrHandshakeStall, time.Since(started))
		}

		if h.pollInterval > 0 {
			time.Sleep(h.pollInterval)
		}
	}
}
