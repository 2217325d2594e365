package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/l0nax/go-spew/spew"
	"github.com/rs/zerolog"

	"github.com/yunginnanet/oasis-ads8422/internal/config"
	"github.com/yunginnanet/oasis-ads8422/pkg/acquire"
	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
	"github.com/yunginnanet/oasis-ads8422/pkg/engine"
	"github.com/yunginnanet/oasis-ads8422/pkg/ft232h"
	"github.com/yunginnanet/oasis-ads8422/pkg/gpiochip"
	"github.com/yunginnanet/oasis-ads8422/pkg/handshake"
	"github.com/yunginnanet/oasis-ads8422/pkg/sink"
)

var log zerolog.Logger

var pprint = spew.ConfigState{
	Indent:   "\t",
	SortKeys: true,
	SpewKeys: true,
}

func init() {
	cw := zerolog.ConsoleWriter{Out: os.Stdout}
	log = zerolog.New(cw).With().Timestamp().Logger()
}

func flags() (cfgPath string, cycles int, debug bool, dump bool) {
	cfi := flag.String("config", "", "YAML configuration file")
	cyi := flag.Int("cycles", -1, "Acquisition cycles to run, 0 runs until interrupted (overrides config)")
	dbi := flag.Bool("debug", false, "Debug logging")
	dmi := flag.Bool("dump", false, "Dump the effective configuration")
	flag.Parse()
	return *cfi, *cyi, *dbi, *dmi
}

func loadConfig(path string) *config.Config {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}
	return cfg
}

func openLines(h config.HandshakeConfig) handshake.Lines {
	switch h.Backend {
	case config.BackendFT232H:
		ft, err := ft232h.ConnectFT232h(ft232h.Select(h.FT232H.Index, h.FT232H.Serial))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to FT232H")
		}
		ft.SetLogger(log)

		log.Info().Any("info", ft.Info()).Msgf("connected to FT232H: %s", ft)

		if err = ft.SetTriggerPin(uint(h.Trigger)); err != nil {
			log.Fatal().Err(err).Msg("failed to configure trigger pin")
		}
		if err = ft.SetCompletionPin(uint(h.Completion)); err != nil {
			log.Fatal().Err(err).Msg("failed to configure completion pin")
		}

		log.Info().Stringer("trigger", ft.TriggerPin()).Stringer("completion", ft.CompletionPin()).
			Msg("handshake pins configured")
		return ft
	default:
		lines, err := gpiochip.Open(h.Chip, h.Trigger, h.Completion)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to request handshake lines")
		}
		log.Info().Stringer("lines", lines).Msg("handshake lines requested")
		return lines
	}
}

func main() {
	cfgPath, cycles, debug, dump := flags()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := loadConfig(cfgPath)
	if cycles >= 0 {
		cfg.Cycles = cycles
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	if dump {
		pprint.Fdump(os.Stdout, cfg)
	}

	dec, err := ads8422.NewDecoder(cfg.Calibration())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize decoder")
	}
	if err = dec.SelfCheck(cfg.Patterns()...); err != nil {
		log.Fatal().Err(err).Msg("bit map self-check failed")
	}

	cal := dec.Config()
	log.Debug().Float64("vref", cal.ReferenceVoltage).
		Str("bitmap", fmt.Sprint(cal.BitMap)).
		Msg("decoder ready")

	src, err := engine.New(cfg.Engine.Command,
		engine.WithDir(cfg.Engine.Dir),
		engine.WithExpectedSamples(cfg.Engine.ExpectedSamples),
		engine.WithTimeout(cfg.Engine.Timeout),
		engine.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine command")
	}

	lines := openLines(cfg.Handshake)

	hs := handshake.NewFromLines(lines,
		handshake.WithPulseWidth(cfg.Handshake.PulseWidth),
		handshake.WithPollInterval(cfg.Handshake.PollInterval),
		handshake.WithTimeout(cfg.Handshake.Timeout),
		handshake.WithLogger(log),
	)

	var opts []acquire.Option
	opts = append(opts, acquire.WithLogger(log))
	if cfg.Output.Dir != "" {
		opts = append(opts, acquire.WithSinks(sink.TextFile{Dir: cfg.Output.Dir, Prefix: cfg.Output.Prefix}))
	}

	acq := acquire.NewAcquirer(hs, src, dec, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, acq, cfg.Cycles)
	stop()

	if cerr := lines.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("failed to release handshake lines")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("acquisition stopped")
	}

	log.Info().Uint64("cycles", acq.Cycles()).Msg("done")
}

// run drives acquisition cycles until the count is reached, the context ends, or a cycle fails.
// Failed cycles are never retried: the hardware may be mid-chirp.
func run(ctx context.Context, acq *acquire.Acquirer, cycles int) error {
	for i := 0; cycles == 0 || i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := acq.RunOneCycle(ctx); err != nil {
			return err
		}
	}
	return nil
}
