package ads8422

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMalformedSampleData = errors.New("malformed sample data")
	ErrSelfCheck           = errors.New("bit map self-check failed")
)

// SampleSequence holds the voltages of one acquisition, in acquisition order.
type SampleSequence []Voltage

// Config represents the calibration of the acquisition board.
type Config struct {
	ReferenceVoltage float64
	BitMap           BitMap
}

// DefaultConfig provides the board defaults.
func DefaultConfig() Config {
	return Config{
		ReferenceVoltage: DefaultVRef,
		BitMap:           DefaultBitMap,
	}
}

// Validate checks the reference voltage and the bit map.
func (cfg Config) Validate() error {
	if math.IsNaN(cfg.ReferenceVoltage) || math.IsInf(cfg.ReferenceVoltage, 0) || cfg.ReferenceVoltage <= 0 {
		return fmt.Errorf("invalid reference voltage %v", cfg.ReferenceVoltage)
	}
	return cfg.BitMap.Validate()
}

// Decoder turns raw register words into voltages.
//
// A Decoder is immutable once constructed and may be shared between goroutines.
type Decoder struct {
	cfg Config
}

// NewDecoder constructs a Decoder with the given calibration.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg}, nil
}

// Config returns a copy of the decoder calibration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// Code returns the signed ADC code carried by word.
func (d *Decoder) Code(word RawWord) Code16 {
	return d.cfg.BitMap.Remap(word)
}

// Sample converts a single register word to a voltage.
func (d *Decoder) Sample(word RawWord) Voltage {
	return ConvertCodeToVolts(d.cfg.BitMap.Remap(word), d.cfg.ReferenceVoltage)
}

// Decode converts every word, preserving order. Either all words are decoded or none are.
func (d *Decoder) Decode(words []RawWord) (SampleSequence, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrMalformedSampleData)
	}
	seq := make(SampleSequence, len(words))
	for i, w := range words {
		seq[i] = d.Sample(w)
	}
	return seq, nil
}

// Pattern is a known register word and the code it must decode to.
type Pattern struct {
	Word RawWord
	Code Code16
}

// WalkingBits returns one pattern per data bit, each with only that bit set.
func (m BitMap) WalkingBits() []Pattern {
	patterns := make([]Pattern, NumBits)
	for k := 0; k < NumBits; k++ {
		patterns[k] = Pattern{
			Word: 1 << m[k],
			Code: Code16(Convert16(uint16(1) << k)),
		}
	}
	return patterns
}

// SelfCheck verifies the bit map against known patterns, such as a calibration
// pattern captured during board bring-up. With no patterns it walks a single
// bit through every data line of the board wiring ([DefaultBitMap]), so a
// decoder configured with any other map needs explicit patterns.
func (d *Decoder) SelfCheck(patterns ...Pattern) error {
	if len(patterns) == 0 {
		patterns = DefaultBitMap.WalkingBits()
	}
	var errs []error
	for _, p := range patterns {
		if got := d.Code(p.Word); got != p.Code {
			errs = append(errs, fmt.Errorf("word 0x%08X: expected code %d, got %d", uint32(p.Word), p.Code, got))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSelfCheck, errors.Join(errs...))
	}
	return nil
}
