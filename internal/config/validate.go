// internal/config/validate.go
package config

import (
	"fmt"
	"math"

	"github.com/yunginnanet/oasis-ads8422/pkg/ads8422"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if math.IsNaN(cfg.ReferenceVoltage) || math.IsInf(cfg.ReferenceVoltage, 0) || cfg.ReferenceVoltage <= 0 {
		return fmt.Errorf("reference_voltage must be positive, got %v", cfg.ReferenceVoltage)
	}

	if len(cfg.BitMap) != 0 {
		if len(cfg.BitMap) != ads8422.NumBits {
			return fmt.Errorf("bitmap must have %d entries, got %d", ads8422.NumBits, len(cfg.BitMap))
		}
		var m ads8422.BitMap
		copy(m[:], cfg.BitMap)
		if err := m.Validate(); err != nil {
			return fmt.Errorf("bitmap: %w", err)
		}
		// the built-in self-check only knows the board wiring
		if m != ads8422.DefaultBitMap && len(cfg.SelfCheck) == 0 {
			return fmt.Errorf("bitmap differs from the board wiring: self_check patterns are required")
		}
	}

	// ------------------------------------------------------------
	// ENGINE
	// ------------------------------------------------------------

	if cfg.Engine.Command == "" {
		return fmt.Errorf("engine.command is required")
	}
	if cfg.Engine.ExpectedSamples < 0 {
		return fmt.Errorf("engine.expected_samples must not be negative")
	}
	if cfg.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must not be negative")
	}

	// ------------------------------------------------------------
	// HANDSHAKE
	// ------------------------------------------------------------

	h := cfg.Handshake
	switch h.Backend {
	case BackendGPIOChip:
		if h.Chip == "" {
			return fmt.Errorf("handshake.chip is required for backend %q", h.Backend)
		}
		if h.Trigger < 0 || h.Completion < 0 {
			return fmt.Errorf("handshake lines must not be negative")
		}
	case BackendFT232H:
		if h.Trigger <= 0 || h.Completion <= 0 || h.Trigger > 0xFF || h.Completion > 0xFF {
			return fmt.Errorf("handshake pins must be non-zero C-bus masks for backend %q", h.Backend)
		}
		if h.FT232H.Index < 0 && h.FT232H.Serial == "" {
			return fmt.Errorf("handshake.ft232h needs an index or a serial")
		}
	default:
		return fmt.Errorf("unknown handshake.backend %q", h.Backend)
	}
	if h.Trigger == h.Completion {
		return fmt.Errorf("handshake trigger and completion must differ")
	}
	if h.PulseWidth < 0 || h.PollInterval < 0 {
		return fmt.Errorf("handshake durations must not be negative")
	}
	if h.Timeout <= 0 {
		return fmt.Errorf("handshake.timeout must be positive")
	}

	if cfg.Cycles < 0 {
		return fmt.Errorf("cycles must not be negative")
	}

	return nil
}
