package schemavalidator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config is the environment-driven configuration of a Validator.
type Config struct {
	// Mode is "throw" or "boolean". ENV: SCHEMAVALIDATOR_MODE
	Mode string `env:"SCHEMAVALIDATOR_MODE,default=throw"`
	// LocalReferences enables id:// references. ENV: SCHEMAVALIDATOR_LOCAL_REFS
	LocalReferences bool `env:"SCHEMAVALIDATOR_LOCAL_REFS,default=true"`
	// DuplicateKeys is "ignore", "warn" or "error". ENV: SCHEMAVALIDATOR_DUPLICATE_KEYS
	DuplicateKeys string `env:"SCHEMAVALIDATOR_DUPLICATE_KEYS,default=ignore"`
}

// ConfigFromEnv populates a Config with envdecode; defaults are provided via
// struct tags.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// Options converts the Config into Validator options.
func (c Config) Options() ([]Option, error) {
	var opts []Option
	switch strings.ToLower(c.Mode) {
	case "", "throw":
		opts = append(opts, WithMode(ModeThrowOnInvalid))
	case "boolean", "bool":
		opts = append(opts, WithMode(ModeBoolean))
	default:
		return nil, fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch strings.ToLower(c.DuplicateKeys) {
	case "", "ignore":
		opts = append(opts, WithDuplicateKeys(Ignore))
	case "warn":
		opts = append(opts, WithDuplicateKeys(Warn))
	case "error":
		opts = append(opts, WithDuplicateKeys(Error))
	default:
		return nil, fmt.Errorf("unknown duplicate key policy %q", c.DuplicateKeys)
	}
	opts = append(opts, WithLocalReferences(c.LocalReferences))
	return opts, nil
}

// NewFromEnv builds a Validator from ConfigFromEnv. Extra options are applied
// after the environment-derived ones.
func NewFromEnv(extra ...Option) (*Validator, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...), nil
}
