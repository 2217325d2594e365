// Package acquire ties the handshake, the sampling engine and the decoder into one acquisition cycle.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
	"github.com/yunginnanet/oasis-ads8422/pkg/engine"
	"github.com/yunginnanet/oasis-ads8422/pkg/sink"
)

// Handshake is the synchronization with the measurement controller. See [handshake.Handshake].
type Handshake interface {
	Cycle(ctx context.Context, onDone func(ctx context.Context) error) error
}

// Acquirer runs acquisition cycles. It never loops on its own; the caller decides when to run the next cycle.
type Acquirer struct {
	hs    Handshake
	src   engine.Source
	dec   *ads8422.Decoder
	sinks []sink.Sink

	cycle *atomic.Uint64
	log   zerolog.Logger
}

type Option func(*Acquirer)

// WithSinks adds consumers of every decoded acquisition.
func WithSinks(sinks ...sink.Sink) Option {
	return func(a *Acquirer) { a.sinks = append(a.sinks, sinks...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Acquirer) { a.log = l }
}

// NewAcquirer constructs an Acquirer.
func NewAcquirer(hs Handshake, src engine.Source, dec *ads8422.Decoder, opts ...Option) *Acquirer {
	a := &Acquirer{
		hs:    hs,
		src:   src,
		dec:   dec,
		cycle: new(atomic.Uint64),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cycles returns the number of cycles started so far.
func (a *Acquirer) Cycles() uint64 {
	return a.cycle.Load()
}

// RunOneCycle triggers the controller, waits for it, samples the echo and decodes it.
// The returned sequence belongs to the caller. Sinks see it before RunOneCycle returns.
func (a *Acquirer) RunOneCycle(ctx context.Context) (ads8422.SampleSequence, error) {
	n := a.cycle.Add(1)
	log := a.log.With().Uint64("cycle", n).Logger()

	var seq ads8422.SampleSequence
	started := time.Now()

	err := a.hs.Cycle(ctx, func(ctx context.Context) error {
		words, err := a.src.Acquire(ctx)
		if err != nil {
			return err
		}
		seq, err = a.dec.Decode(words)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("acquisition failed")
		return nil, fmt.Errorf("cycle %d: %w", n, err)
	}

	log.Info().Int("samples", len(seq)).Dur("took", time.Since(started)).Msg("acquisition complete")

	var errs []error
	for _, s := range a.sinks {
		if err = s.Consume(ctx, n, seq); err != nil {
			log.Warn().Err(err).Msg("sink failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return seq, fmt.Errorf("cycle %d: %w", n, errors.Join(errs...))
	}

	return seq, nil
}
