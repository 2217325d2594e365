// Package engine runs the native sampling engine and collects the raw register words it prints.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

var (
	ErrEngineLaunch = errors.New("failed to launch sampling engine")
	ErrEngineExit   = errors.New("sampling engine failed")
	ErrNoCommand    = errors.New("no engine command provided")
)

// stderrTail bounds how much of the engine's stderr ends up in an error.
const stderrTail = 512

// Source produces the raw register words of one acquisition.
type Source interface {
	Acquire(ctx context.Context) ([]ads8422.RawWord, error)
}

// Engine launches the sampling engine as a synchronous subprocess.
type Engine struct {
	Path string
	Args []string
	Dir  string
	// Env is appended to the inherited environment.
	Env []string

	// ExpectedSamples, when non-zero, is the sample count the engine was built for.
	ExpectedSamples int
	// Timeout bounds a single engine run. Zero means no bound.
	Timeout time.Duration

	log zerolog.Logger
}

type Option func(*Engine)

func WithDir(dir string) Option {
	return func(e *Engine) { e.Dir = dir }
}

func WithEnv(env ...string) Option {
	return func(e *Engine) { e.Env = append(e.Env, env...) }
}

func WithExpectedSamples(n int) Option {
	return func(e *Engine) { e.ExpectedSamples = n }
}

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.Timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an Engine from a shell-style command line, e.g. "./oasis_read_ADC_parallel".
func New(cmdline string, opts ...Option) (*Engine, error) {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("bad engine command %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	return NewArgv(argv[0], argv[1:], opts...), nil
}

// NewArgv constructs an Engine from an already split command.
func NewArgv(path string, args []string, opts ...Option) *Engine {
	e := &Engine{
		Path: path,
		Args: args,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine{Path:%s, Args:%v, Dir:%s}", e.Path, e.Args, e.Dir)
}

// Acquire runs the engine to completion and parses everything it printed.
// The process is always reaped before Acquire returns.
func (e *Engine) Acquire(ctx context.Context) ([]ads8422.RawWord, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	e.log.Debug().Str("path", e.Path).Strs("args", e.Args).Msg("launching sampling engine")

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineLaunch, err)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w%s", ErrEngineExit, err, tail(stderr.Bytes()))
	}

	e.log.Debug().Dur("took", time.Since(started)).Int("bytes", stdout.Len()).Msg("sampling engine exited")

	words, err := ParseRawWords(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	if e.ExpectedSamples > 0 && len(words) != e.ExpectedSamples {
		return nil, fmt.Errorf("%w: expected %d samples, got %d",
			ads8422.ErrMalformedSampleData, e.ExpectedSamples, len(words))
	}

	e.log.Debug().Int("samples", len(words)).Msg("parsed engine output")

	return words, nil
}

func tail(stderr []byte) string {
	stderr = bytes.TrimSpace(stderr)
	if len(stderr) == 0 {
		return ""
	}
	if len(stderr) > stderrTail {
		stderr = stderr[len(stderr)-stderrTail:]
	}
	return fmt.Sprintf(" (stderr: %s)", stderr)
}
