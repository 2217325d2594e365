// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
	"github.com/yunginnanet/oasis-ads8422/pkg/gpiochip"
)

const (
	BackendGPIOChip = "gpiochip"
	BackendFT232H   = "ft232h"
)

type Config struct {
	ReferenceVoltage float64         `yaml:"reference_voltage"`
	BitMap           []uint8         `yaml:"bitmap"`
	SelfCheck        []PatternConfig `yaml:"self_check"`
	Engine           EngineConfig    `yaml:"engine"`
	Handshake        HandshakeConfig `yaml:"handshake"`
	Output           OutputConfig    `yaml:"output"`

	// Cycles is the number of acquisitions to run. 0 runs until interrupted.
	Cycles int `yaml:"cycles"`
}

// ---- SELF CHECK ----

// PatternConfig is a register word with a known expected code.
type PatternConfig struct {
	Word uint32 `yaml:"word"`
	Code int16  `yaml:"code"`
}

// ---- ENGINE ----

type EngineConfig struct {
	Command         string        `yaml:"command"`
	Dir             string        `yaml:"dir"`
	ExpectedSamples int           `yaml:"expected_samples"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ---- HANDSHAKE ----

type HandshakeConfig struct {
	Backend      string        `yaml:"backend"`
	Chip         string        `yaml:"chip"`
	Trigger      int           `yaml:"trigger"`
	Completion   int           `yaml:"completion"`
	PulseWidth   time.Duration `yaml:"pulse_width"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	FT232H       FT232HConfig  `yaml:"ft232h"`
}

// FT232HConfig selects the bridge. Trigger and completion are C-bus pin masks on this backend.
type FT232HConfig struct {
	Index  int    `yaml:"index"`
	Serial string `yaml:"serial"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	// Dir enables the text sink when set.
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Default returns the configuration of the acquisition board: one cycle,
// the engine next to the binary, and the handshake on GPIO1/GPIO0.
func Default() *Config {
	return &Config{
		ReferenceVoltage: ads8422.DefaultVRef,
		Engine: EngineConfig{
			Command: "./oasis_read_ADC_parallel",
		},
		Handshake: HandshakeConfig{
			Backend:      BackendGPIOChip,
			Chip:         gpiochip.DefaultChip,
			Trigger:      gpiochip.DefaultTrigger,
			Completion:   gpiochip.DefaultCompletion,
			PollInterval: 10 * time.Microsecond,
			Timeout:      5 * time.Second,
		},
		Output: OutputConfig{
			Prefix: "oasis_",
		},
		Cycles: 1,
	}
}

// Load reads a YAML file over [Default].
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Calibration returns the decoder configuration.
// It MUST be called only after Validate().
func (cfg *Config) Calibration() ads8422.Config {
	c := ads8422.DefaultConfig()
	c.ReferenceVoltage = cfg.ReferenceVoltage
	if len(cfg.BitMap) == ads8422.NumBits {
		copy(c.BitMap[:], cfg.BitMap)
	}
	return c
}

// Patterns returns the configured self-check patterns.
func (cfg *Config) Patterns() []ads8422.Pattern {
	patterns := make([]ads8422.Pattern, 0, len(cfg.SelfCheck))
	for _, p := range cfg.SelfCheck {
		patterns = append(patterns, ads8422.Pattern{Word: ads8422.RawWord(p.Word), Code: ads8422.Code16(p.Code)})
	}
	return patterns
}
