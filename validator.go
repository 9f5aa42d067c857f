package schemavalidator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/reoring/schemavalidator/i18n"
	"github.com/reoring/schemavalidator/internal/jsonscan"
)

// Validator brokers schema registration and validation to one engine
// instance, gated by the initialization state machine
// (UNINITIALIZED -> READY | FAILED, FAILED -> READY | FAILED).
//
// Init must not run concurrently with any other method on the same
// Validator. Once READY, RegisterSchema and Validate may be called from
// multiple goroutines if the engine allows it (the bundled engines do).
type Validator struct {
	id      string
	cfg     config
	log     *slog.Logger
	metrics *metrics

	// lc is swapped as a whole so state and engine are observed together.
	lc atomic.Pointer[lifecycle]
}

type lifecycle struct {
	state  State
	engine Engine
}

// New returns an UNINITIALIZED Validator owning no engine yet.
func New(opts ...Option) *Validator {
	cfg := config{localRefs: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		cfg.loader = NewModuleLoader(nil)
	}
	id := uuid.NewString()
	v := &Validator{
		id:      id,
		cfg:     cfg,
		log:     cfg.logger.With(slog.String("validator_id", id)),
		metrics: newMetrics(cfg.registerer),
	}
	v.lc.Store(&lifecycle{state: StateUninitialized})
	return v
}

// ID returns the identifier attached to this Validator's log records.
func (v *Validator) ID() string { return v.id }

// State returns the current lifecycle state.
func (v *Validator) State() State { return v.lc.Load().state }

// Mode returns the configured reporting mode.
func (v *Validator) Mode() Mode { return v.cfg.mode }

// Init loads the engine module described by src and constructs the engine.
// While READY it does nothing and returns nil, leaving the engine and its
// registered schemas untouched. On failure the Validator becomes FAILED and
// an *InitError is returned; Init may then be retried.
func (v *Validator) Init(ctx context.Context, src Source) error {
	if v.State() == StateReady {
		v.log.DebugContext(ctx, "validator.init.noop")
		return nil
	}
	eng, err := v.loadEngine(ctx, src)
	if err != nil {
		v.lc.Store(&lifecycle{state: StateFailed})
		v.metrics.initTotal.WithLabelValues(resultFailure).Inc()
		v.log.ErrorContext(ctx, "validator.init.fail", slog.String("source", src.String()), slog.String("err", err.Error()))
		return &InitError{Source: src.String(), Cause: err}
	}
	v.lc.Store(&lifecycle{state: StateReady, engine: eng})
	v.metrics.initTotal.WithLabelValues(resultSuccess).Inc()
	v.log.InfoContext(ctx, "validator.init.ready", slog.String("source", src.String()), slog.String("mode", v.cfg.mode.String()))
	return nil
}

func (v *Validator) loadEngine(ctx context.Context, src Source) (eng Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			eng, err = nil, fmt.Errorf("panic while loading engine: %v", r)
		}
	}()
	mod, err := v.cfg.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, errors.New("loader returned no module")
	}
	eng, err = mod.NewEngine()
	if err != nil {
		return nil, err
	}
	if eng == nil {
		return nil, errors.New("module returned no engine")
	}
	return eng, nil
}

// Close releases resources held by the engine (for example a remote cache
// connection) when it implements io.Closer. The Validator must not be used
// afterwards.
func (v *Validator) Close() error {
	lc := v.lc.Load()
	if c, ok := lc.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// engine returns the READY engine or ErrNotInitialized.
func (v *Validator) engine() (Engine, error) {
	lc := v.lc.Load()
	if lc.state != StateReady {
		return nil, ErrNotInitialized
	}
	return lc.engine, nil
}

// RegisterSchema makes schema resolvable as a reference under id for later
// Validate calls. schema is JSON text (string or []byte), YAML, Ref, or any
// value serializable to JSON. The id is forwarded as given; by convention it
// uses the id:// scheme. Failures are reported as *RegistrationError.
func (v *Validator) RegisterSchema(ctx context.Context, id string, schema any) error {
	eng, err := v.engine()
	if err != nil {
		return err
	}
	if id == "" {
		v.metrics.operationsTotal.WithLabelValues(opRegister, resultRejected).Inc()
		return &RegistrationError{ID: id, Message: i18n.T(i18n.CodeEmptySchemaID, nil)}
	}
	text, err := registrationText(schema, v.cfg.localRefs)
	if err != nil {
		v.metrics.operationsTotal.WithLabelValues(opRegister, resultRejected).Inc()
		return &RegistrationError{ID: id, Message: err.Error()}
	}
	_, err = v.invoke(opRegister, func() (bool, error) {
		return true, eng.AddSchema(ctx, id, text)
	})
	if err != nil {
		msg := faultMessage(thrownValue(err))
		v.metrics.operationsTotal.WithLabelValues(opRegister, resultFailure).Inc()
		v.log.WarnContext(ctx, "validator.register.fail", slog.String("schema_id", id), slog.String("err", msg))
		return &RegistrationError{ID: id, Message: msg}
	}
	v.metrics.operationsTotal.WithLabelValues(opRegister, resultSuccess).Inc()
	v.log.DebugContext(ctx, "validator.register.ok", slog.String("schema_id", id))
	return nil
}

// registrationText normalizes a schema for registration. Unlike Validate,
// strings are always schema text here; only an explicit Ref is a reference.
func registrationText(schema any, local bool) (string, error) {
	switch s := schema.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return canonicalSchema(schema, local)
}

// Validate checks data against schema.
//
// schema is inline JSON text, a bare reference string (http://, https:// or,
// unless disabled, id://), a Ref, YAML, or any value serializable to JSON.
// data is JSON text (string or []byte), YAML, or any serializable value.
//
// A reference with any other scheme yields *InvalidReferenceError without
// calling the engine. Engine errors yield *ValidationError. When the engine
// reports false, ModeBoolean returns (false, nil) and ModeThrowOnInvalid
// returns a *ValidationError.
func (v *Validator) Validate(ctx context.Context, schema, data any) (bool, error) {
	eng, err := v.engine()
	if err != nil {
		return false, err
	}
	schemaText, err := canonicalSchema(schema, v.cfg.localRefs)
	if err != nil {
		v.metrics.operationsTotal.WithLabelValues(opValidate, resultRejected).Inc()
		var ire *InvalidReferenceError
		if errors.As(err, &ire) {
			v.log.DebugContext(ctx, "validator.validate.reference_rejected", slog.String("ref", ire.Ref))
			return false, ire
		}
		return false, &ValidationError{Details: map[string]any{DetailMessage: "invalid schema: " + err.Error()}}
	}
	dataText, err := canonicalData(data)
	if err != nil {
		v.metrics.operationsTotal.WithLabelValues(opValidate, resultRejected).Inc()
		return false, &ValidationError{Details: map[string]any{DetailMessage: "invalid data: " + err.Error()}}
	}
	if verr := v.checkDuplicates(ctx, dataText); verr != nil {
		v.metrics.operationsTotal.WithLabelValues(opValidate, resultRejected).Inc()
		return false, verr
	}

	ok, err := v.invoke(opValidate, func() (bool, error) {
		return eng.Validate(ctx, schemaText, dataText)
	})
	if err != nil {
		verr := newValidationError(err)
		v.metrics.operationsTotal.WithLabelValues(opValidate, resultInvalid).Inc()
		v.log.DebugContext(ctx, "validator.validate.invalid", slog.String("err", verr.Error()))
		return false, verr
	}
	if !ok {
		v.metrics.operationsTotal.WithLabelValues(opValidate, resultInvalid).Inc()
		if v.cfg.mode == ModeBoolean {
			return false, nil
		}
		return false, &ValidationError{Details: map[string]any{DetailMessage: i18n.T(i18n.CodeDoesNotConform, nil)}}
	}
	v.metrics.operationsTotal.WithLabelValues(opValidate, resultValid).Inc()
	return true, nil
}

func (v *Validator) checkDuplicates(ctx context.Context, data string) *ValidationError {
	var mode jsonscan.DuplicateStrictness
	switch v.cfg.duplicateKeys {
	case Warn:
		mode = jsonscan.DupWarn
	case Error:
		mode = jsonscan.DupError
	default:
		return nil
	}
	dups := jsonscan.DetectDuplicateKeys([]byte(data), mode)
	if len(dups) == 0 {
		return nil
	}
	if mode == jsonscan.DupWarn {
		for _, d := range dups {
			v.log.WarnContext(ctx, "validator.validate.duplicate_key", slog.String("path", d.Pointer()))
		}
		return nil
	}
	d := dups[0]
	return &ValidationError{Details: map[string]any{
		d.Pointer(): i18n.T(i18n.CodeDuplicateKey, map[string]string{"key": d.Key}),
	}}
}

// invoke runs one engine call, converting a panic into an error so the
// caller can normalize it like any other engine failure.
func (v *Validator) invoke(op string, fn func() (bool, error)) (ok bool, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if e, isErr := r.(error); isErr {
				err = e
			} else {
				err = &Fault{Value: r}
			}
		}
		v.metrics.operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()
	return fn()
}
