package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

func TestWriteText(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var b bytes.Buffer
		if err := WriteText(&b, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.String() != "[]" {
			t.Errorf("expected [], got %s", b.String())
		}
	})

	t.Run("Values", func(t *testing.T) {
		var b bytes.Buffer
		seq := ads8422.SampleSequence{0, -4.096, 2.048, 0.000125}
		if err := WriteText(&b, seq); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "[0.0, -4.096, 2.048, 0.000125]"; b.String() != want {
			t.Errorf("expected %s, got %s", want, b.String())
		}
	})
}

func TestAppendRepr(t *testing.T) {
	for v, want := range map[float64]string{
		0:                     "0.0",
		1:                     "1.0",
		-4.096:                "-4.096",
		4.096 * 32767 / 32768: "4.095875",
		0.0001:                "0.0001",
		0.0000125:             "1.25e-05",
		-0.00001:              "-1e-05",
		1e15:                  "1000000000000000.0",
		1e16:                  "1e+16",
	} {
		if got := string(appendRepr(nil, v)); got != want {
			t.Errorf("%v: expected %s, got %s", v, want, got)
		}
	}
}

func TestTextFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tf := TextFile{Dir: dir, Prefix: "echo_"}

	seq := ads8422.SampleSequence{1, 2, 3}
	if err := tf.Consume(context.Background(), 7, seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tf.Path(7) != filepath.Join(dir, "echo_7.txt") {
		t.Errorf("unexpected path %s", tf.Path(7))
	}

	data, err := os.ReadFile(tf.Path(7))
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(data) != "[1.0, 2.0, 3.0]" {
		t.Errorf("unexpected contents %q", data)
	}
	if seq[0] != 1 || seq[1] != 2 || seq[2] != 3 {
		t.Errorf("sequence was modified: %v", seq)
	}

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := tf.Consume(ctx, 8, seq); err == nil {
			t.Error("expected error")
		}
	})
}
