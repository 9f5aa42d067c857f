// Package enginetest provides in-memory engine doubles for exercising the
// validator lifecycle without a real validation engine.
package enginetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	sv "github.com/reoring/schemavalidator"
)

// Call records one engine invocation.
type Call struct {
	Op     string // "add" or "validate"
	ID     string
	Schema string
	Data   string
}

// Engine is a recording sv.Engine. AddSchema stores valid JSON under new ids
// and rejects duplicates; Validate resolves {"$ref": id} against the stored
// schemas and reports true unless ValidateFunc says otherwise.
type Engine struct {
	// ValidateFunc, when set, decides the Validate outcome after references
	// have been resolved. schema is the resolved schema text.
	ValidateFunc func(schema, data string) (bool, error)

	mu      sync.Mutex
	calls   []Call
	schemas map[string]string
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine { return &Engine{schemas: map[string]string{}} }

func (e *Engine) AddSchema(_ context.Context, id, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Op: "add", ID: id, Schema: content})
	if !json.Valid([]byte(content)) {
		return fmt.Errorf("Invalid schema. %q is not JSON", content)
	}
	if _, dup := e.schemas[id]; dup {
		return fmt.Errorf("schema %q already registered", id)
	}
	e.schemas[id] = content
	return nil
}

func (e *Engine) Validate(_ context.Context, schema, data string) (bool, error) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Op: "validate", Schema: schema, Data: data})
	resolved := schema
	var ref struct {
		Ref string `json:"$ref"`
	}
	if err := json.Unmarshal([]byte(schema), &ref); err == nil && ref.Ref != "" {
		s, ok := e.schemas[ref.Ref]
		if !ok {
			e.mu.Unlock()
			return false, fmt.Errorf("Schema not found. %s", ref.Ref)
		}
		resolved = s
	}
	fn := e.ValidateFunc
	e.mu.Unlock()
	if fn != nil {
		return fn(resolved, data)
	}
	return true, nil
}

// Calls returns a copy of the recorded calls.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Schema returns the content registered under id.
func (e *Engine) Schema(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.schemas[id]
	return s, ok
}

// Module hands out Engine as its only engine instance.
type Module struct {
	Engine *Engine
	Err    error

	mu          sync.Mutex
	constructed int
}

func (m *Module) NewEngine() (sv.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.constructed++
	return m.Engine, nil
}

// Constructed reports how many engines were built.
func (m *Module) Constructed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.constructed
}

// ErrLoad is returned by Loader while it is failing.
var ErrLoad = errors.New("enginetest: module failed to load")

// Loader is a sv.Loader returning Module. The first FailFirst loads fail
// with ErrLoad.
type Loader struct {
	Module    sv.Module
	FailFirst int

	mu      sync.Mutex
	sources []sv.Source
}

func (l *Loader) Load(_ context.Context, src sv.Source) (sv.Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources = append(l.sources, src)
	if len(l.sources) <= l.FailFirst {
		return nil, ErrLoad
	}
	return l.Module, nil
}

// Loads reports how many times Load was called.
func (l *Loader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

// New returns an Engine wired into a Module and a Loader.
func New() (*Engine, *Module, *Loader) {
	e := NewEngine()
	m := &Module{Engine: e}
	return e, m, &Loader{Module: m}
}
