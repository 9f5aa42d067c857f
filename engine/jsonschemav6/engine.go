// Package jsonschemav6 binds github.com/santhosh-tekuri/jsonschema/v6 as a
// throw-on-invalid engine. Importing it registers the "jsonschema" module.
//
// Non-conforming data is reported as an error whose text is a JSON object
// mapping instance locations (JSON Pointers) to violation messages.
package jsonschemav6

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	sv "github.com/reoring/schemavalidator"
	"github.com/reoring/schemavalidator/remote"
)

// Name is the module name registered with schemavalidator.
const Name = "jsonschema"

func init() { sv.RegisterModule(Name, NewModule) }

// inlineBase is where schema text is added before compiling.
const inlineBase = "mem:///inline/"

// compiledCacheSize bounds the number of compiled schemas kept per engine.
const compiledCacheSize = 256

// Module constructs engines sharing one descriptor.
type Module struct {
	draft        *jsonschema.Draft
	assertFormat bool
	fetcher      *remote.Fetcher
}

// NewModule validates d and returns a Module.
func NewModule(d sv.Descriptor) (sv.Module, error) {
	draft, err := draftFor(d.Draft)
	if err != nil {
		return nil, err
	}
	f, err := remote.FromConfig(d.Remote)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	return &Module{draft: draft, assertFormat: d.AssertFormat, fetcher: f}, nil
}

func draftFor(name string) (*jsonschema.Draft, error) {
	switch strings.TrimPrefix(strings.ToLower(name), "draft") {
	case "", "2020-12", "2020":
		return jsonschema.Draft2020, nil
	case "2019-09", "2019":
		return jsonschema.Draft2019, nil
	case "7", "-07":
		return jsonschema.Draft7, nil
	case "6", "-06":
		return jsonschema.Draft6, nil
	case "4", "-04":
		return jsonschema.Draft4, nil
	}
	return nil, fmt.Errorf("unsupported draft %q", name)
}

func (m *Module) NewEngine() (sv.Engine, error) {
	cache, err := lru.New[uint64, *jsonschema.Schema](compiledCacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{m: m, docs: map[string]any{}, compiled: cache}, nil
}

// Close releases the remote cache connection, if any.
func (m *Module) Close() error {
	if m.fetcher == nil {
		return nil
	}
	return m.fetcher.Close()
}

// compiler returns a compiler seeded with docs. Remote documents are
// retrieved with ctx.
func (m *Module) compiler(ctx context.Context, docs map[string]any) (*jsonschema.Compiler, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(m.draft)
	if m.assertFormat {
		c.AssertFormat()
	}
	loader := jsonschema.SchemeURLLoader{}
	if m.fetcher != nil {
		l := &httpLoader{ctx: ctx, f: m.fetcher}
		loader["http"] = l
		loader["https"] = l
	}
	c.UseLoader(loader)
	for u, d := range docs {
		if err := c.AddResource(u, d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// httpLoader adapts remote.Fetcher to jsonschema.URLLoader for one call.
type httpLoader struct {
	ctx context.Context
	f   *remote.Fetcher
}

func (l *httpLoader) Load(url string) (any, error) {
	doc, err := l.f.Fetch(l.ctx, url)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(doc))
}

// Engine keeps the registered documents and a bounded cache of compiled
// schemas keyed by schema text.
type Engine struct {
	m *Module

	mu       sync.Mutex
	docs     map[string]any
	compiled *lru.Cache[uint64, *jsonschema.Schema]
}

// Close releases the module's resources.
func (e *Engine) Close() error { return e.m.Close() }

// AddSchema registers content under id. id must be an absolute URI.
func (e *Engine) AddSchema(ctx context.Context, id, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u, err := url.Parse(id); err != nil || u.Scheme == "" {
		return fmt.Errorf("Invalid schema id %q: must be an absolute URI", id)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("Invalid schema. %v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.docs[id]; dup {
		return fmt.Errorf("schema with key or id %q already exists", id)
	}
	c, err := e.m.compiler(ctx, e.docs)
	if err != nil {
		return err
	}
	if err := c.AddResource(id, doc); err != nil {
		return fmt.Errorf("Invalid schema. %v", err)
	}
	if _, err := c.Compile(id); err != nil {
		return fmt.Errorf("Invalid schema. %v", err)
	}
	e.docs[id] = doc
	return nil
}

// Validate compiles schema (or takes it from the cache) and validates data
// against it.
func (e *Engine) Validate(ctx context.Context, schema, data string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sch, err := e.compile(ctx, schema)
	if err != nil {
		return false, err
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("invalid data: %v", err)
	}
	if err := sch.Validate(inst); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return false, violations(verr)
		}
		return false, err
	}
	return true, nil
}

// compile builds schema on a fresh compiler seeded with the registered
// documents. Registrations only add documents, so a cached schema stays
// valid after later AddSchema calls.
func (e *Engine) compile(ctx context.Context, schema string) (*jsonschema.Schema, error) {
	key := xxhash.Sum64String(schema)
	if sch, ok := e.compiled.Get(key); ok {
		return sch, nil
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("Invalid schema. %v", err)
	}

	e.mu.Lock()
	docs := make(map[string]any, len(e.docs))
	for u, d := range e.docs {
		docs[u] = d
	}
	e.mu.Unlock()

	c, err := e.m.compiler(ctx, docs)
	if err != nil {
		return nil, err
	}
	loc := fmt.Sprintf("%s%016x.json", inlineBase, key)
	if err := c.AddResource(loc, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(loc)
	if err != nil {
		return nil, err
	}
	e.compiled.Add(key, sch)
	return sch, nil
}

// Registered reports how many schemas were added with AddSchema.
func (e *Engine) Registered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docs)
}

// Compiled reports how many compiled schemas are cached.
func (e *Engine) Compiled() int { return e.compiled.Len() }

var printer = message.NewPrinter(language.English)

// violations flattens a validation error into {"<pointer>": "<message>"}
// text. Messages at the same location are joined.
func violations(verr *jsonschema.ValidationError) error {
	byPath := map[string][]string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			p := pointer(v.InstanceLocation)
			byPath[p] = append(byPath[p], v.ErrorKind.LocalizedString(printer))
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(verr)

	out := make(map[string]string, len(byPath))
	for p, msgs := range byPath {
		sort.Strings(msgs)
		out[p] = strings.Join(msgs, "; ")
	}
	b, err := json.Marshal(out)
	if err != nil {
		return verr
	}
	return &violationError{text: string(b)}
}

type violationError struct{ text string }

func (v *violationError) Error() string { return v.text }

func pointer(tokens []string) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteByte('/')
		t = strings.ReplaceAll(t, "~", "~0")
		sb.WriteString(strings.ReplaceAll(t, "/", "~1"))
	}
	return sb.String()
}
