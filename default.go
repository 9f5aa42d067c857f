package schemavalidator

import (
	"context"
	"log/slog"
	"sync"
)

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the process-wide Validator. It is constructed once, on first
// use, from the environment (see Config); an invalid environment falls back
// to the built-in defaults and is logged. It starts UNINITIALIZED like any
// other Validator, so Init must still be called. Prefer New when the caller
// can own the instance.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := NewFromEnv()
		if err != nil {
			slog.Default().Warn("validator.default.env_invalid", slog.String("err", err.Error()))
			v = New()
		}
		defaultValidator = v
	})
	return defaultValidator
}

// Init calls Init on the Default validator.
func Init(ctx context.Context, src Source) error { return Default().Init(ctx, src) }

// RegisterSchema calls RegisterSchema on the Default validator.
func RegisterSchema(ctx context.Context, id string, schema any) error {
	return Default().RegisterSchema(ctx, id, schema)
}

// Validate calls Validate on the Default validator.
func Validate(ctx context.Context, schema, data any) (bool, error) {
	return Default().Validate(ctx, schema, data)
}
