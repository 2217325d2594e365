// Package sink hands decoded acquisitions to their consumers.
package sink

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

// Sink consumes the samples of one acquisition cycle. Implementations must not modify seq.
type Sink interface {
	Consume(ctx context.Context, cycle uint64, seq ads8422.SampleSequence) error
}

// Func adapts a function to a [Sink].
type Func func(ctx context.Context, cycle uint64, seq ads8422.SampleSequence) error

func (f Func) Consume(ctx context.Context, cycle uint64, seq ads8422.SampleSequence) error {
	return f(ctx, cycle, seq)
}

// TextFile saves each acquisition as a bracketed list of voltages, one file per cycle.
type TextFile struct {
	Dir    string
	Prefix string
}

// Path returns the file a cycle is saved to.
func (tf TextFile) Path(cycle uint64) string {
	return filepath.Join(tf.Dir, tf.Prefix+strconv.FormatUint(cycle, 10)+".txt")
}

func (tf TextFile) Consume(ctx context.Context, cycle uint64, seq ads8422.SampleSequence) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if tf.Dir != "" {
		if err := os.MkdirAll(tf.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(tf.Path(cycle))
	if err != nil {
		return fmt.Errorf("failed to create sample file: %w", err)
	}

	if err = WriteText(f, seq); err != nil {
		return errors.Join(err, f.Close())
	}

	return f.Close()
}

// WriteText writes seq as "[v0, v1, ...]", each value in the shortest
// round-trip form with a trailing ".0" on whole numbers, e.g. "[0.0, -4.096, 1.25e-05]".
func WriteText(w io.Writer, seq ads8422.SampleSequence) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)

	bw.WriteByte('[')
	for i, v := range seq {
		if i > 0 {
			bw.WriteString(", ")
		}
		bw.Write(appendRepr(buf[:0], float64(v)))
	}
	bw.WriteByte(']')

	return bw.Flush()
}

// appendRepr formats v in positional notation for decimal exponents -4..15
// and in exponent notation otherwise. Positional values always carry a decimal point.
func appendRepr(dst []byte, v float64) []byte {
	if v != 0 {
		e := strconv.AppendFloat(nil, v, 'e', -1, 64)
		exp, err := strconv.Atoi(string(e[bytes.LastIndexByte(e, 'e')+1:]))
		if err == nil && (exp < -4 || exp >= 16) {
			return append(dst, e...)
		}
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, v, 'f', -1, 64)
	if bytes.IndexByte(dst[start:], '.') < 0 {
		dst = append(dst, ".0"...)
	}
	return dst
}
