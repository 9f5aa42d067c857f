package schemavalidator

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Engine is the binding to a validation engine. Implementations own the
// identifier registry; the Validator never inspects it.
//
// Validate reports conformance either through the boolean (boolean-return
// engines) or by returning an error describing the violations
// (throw-on-invalid engines). Errors may carry structured detail as JSON
// object text, or a non-textual payload via *Fault.
type Engine interface {
	AddSchema(ctx context.Context, id, content string) error
	Validate(ctx context.Context, schema, data string) (bool, error)
}

// Module is a loaded engine module. NewEngine constructs one engine instance.
type Module interface {
	NewEngine() (Engine, error)
}

// Loader resolves a Source into a Module.
type Loader interface {
	Load(ctx context.Context, src Source) (Module, error)
}

// ModuleFactory builds a Module from a descriptor.
type ModuleFactory func(d Descriptor) (Module, error)

// Fault is an engine failure carrying an arbitrary payload. String and []byte
// payloads are treated as text; anything else is reported under the
// "error" detail key.
type Fault struct {
	Value any
}

func (f *Fault) Error() string { return fmt.Sprintf("engine fault: %v", f.Value) }

var (
	modulesMu sync.RWMutex
	modules   = map[string]ModuleFactory{}
)

// RegisterModule makes an engine module available to ModuleLoader under name.
// Engine packages call it from init. Registering the same name twice or a nil
// factory panics.
func RegisterModule(name string, f ModuleFactory) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	if f == nil {
		panic("schemavalidator: RegisterModule factory is nil")
	}
	if _, dup := modules[name]; dup {
		panic("schemavalidator: RegisterModule called twice for " + name)
	}
	modules[name] = f
}

// Modules returns the sorted names of registered engine modules.
func Modules() []string {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	names := make([]string, 0, len(modules))
	for n := range modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupModule(name string) (ModuleFactory, bool) {
	modulesMu.RLock()
	f, ok := modules[name]
	modulesMu.RUnlock()
	return f, ok
}
