// internal/config/normalize.go
package config

import "path/filepath"

// Normalize applies post-validation normalization.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Output.Dir != "" {
		cfg.Output.Dir = filepath.Clean(cfg.Output.Dir)
	}

	if cfg.Engine.Dir != "" {
		cfg.Engine.Dir = filepath.Clean(cfg.Engine.Dir)
	}
}
