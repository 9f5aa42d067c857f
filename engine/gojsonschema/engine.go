// Package gojsonschema binds github.com/xeipuuv/gojsonschema as a
// boolean-return engine. Importing it registers the "gojsonschema" module.
//
// Data that does not conform is reported as (false, nil); errors are
// reserved for schemas that cannot be compiled and unparsable data. With
// Descriptor.DetailedErrors the violations are instead returned as an error
// whose text maps JSON Pointers to descriptions.
package gojsonschema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xeipuuv/gojsonschema"

	sv "github.com/reoring/schemavalidator"
)

// Name is the module name registered with schemavalidator.
const Name = "gojsonschema"

// rootField is how gojsonschema names the document root.
const rootField = "(root)"

// compiledCacheSize bounds the number of compiled schemas kept per engine.
const compiledCacheSize = 128

func init() { sv.RegisterModule(Name, NewModule) }

// Module constructs engines for one draft.
type Module struct {
	draft    gojsonschema.Draft
	auto     bool
	detailed bool
}

// NewModule validates d and returns a Module. Remote retrieval is handled by
// the library itself and cannot be configured.
func NewModule(d sv.Descriptor) (sv.Module, error) {
	if d.Remote.Enabled {
		return nil, errors.New("gojsonschema: remote retrieval settings are not supported")
	}
	m := &Module{detailed: d.DetailedErrors}
	switch strings.TrimPrefix(strings.ToLower(d.Draft), "draft") {
	case "":
		m.auto = true
		m.draft = gojsonschema.Hybrid
	case "7", "-07":
		m.draft = gojsonschema.Draft7
	case "6", "-06":
		m.draft = gojsonschema.Draft6
	case "4", "-04":
		m.draft = gojsonschema.Draft4
	default:
		return nil, fmt.Errorf("gojsonschema: unsupported draft %q", d.Draft)
	}
	return m, nil
}

func (m *Module) NewEngine() (sv.Engine, error) {
	cache, err := lru.New[uint64, *gojsonschema.Schema](compiledCacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{m: m, schemas: map[string]string{}, compiled: cache}, nil
}

// Engine keeps registered schema text and a cache of compiled schemas.
type Engine struct {
	m *Module

	mu       sync.Mutex
	ids      []string
	schemas  map[string]string
	compiled *lru.Cache[uint64, *gojsonschema.Schema]
}

// loader returns a SchemaLoader holding every registered schema.
func (e *Engine) loader() (*gojsonschema.SchemaLoader, error) {
	sl := gojsonschema.NewSchemaLoader()
	sl.Draft = e.m.draft
	sl.AutoDetect = e.m.auto
	sl.Validate = true
	for _, id := range e.ids {
		if err := sl.AddSchema(id, gojsonschema.NewStringLoader(e.schemas[id])); err != nil {
			return nil, err
		}
	}
	return sl, nil
}

func (e *Engine) AddSchema(ctx context.Context, id, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.schemas[id]; dup {
		return fmt.Errorf("schema with key or id %q already exists", id)
	}
	sl, err := e.loader()
	if err != nil {
		return err
	}
	if err := sl.AddSchema(id, gojsonschema.NewStringLoader(content)); err != nil {
		return fmt.Errorf("Invalid schema. %v", err)
	}
	e.ids = append(e.ids, id)
	e.schemas[id] = content
	// References may now resolve differently.
	e.compiled.Purge()
	return nil
}

func (e *Engine) Validate(ctx context.Context, schema, data string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sch, err := e.compile(schema)
	if err != nil {
		return false, err
	}
	res, err := sch.Validate(gojsonschema.NewStringLoader(data))
	if err != nil {
		return false, fmt.Errorf("invalid data: %v", err)
	}
	if res.Valid() {
		return true, nil
	}
	if e.m.detailed {
		return false, violations(res.Errors())
	}
	return false, nil
}

// violations renders result errors as {"<pointer>": "<description>"} text.
// Descriptions at the same location are joined.
func violations(errs []gojsonschema.ResultError) error {
	byPath := map[string][]string{}
	for _, re := range errs {
		p := pointer(re.Context().String())
		byPath[p] = append(byPath[p], re.Description())
	}
	out := make(map[string]string, len(byPath))
	for p, descs := range byPath {
		sort.Strings(descs)
		out[p] = strings.Join(descs, "; ")
	}
	b, err := json.Marshal(out)
	if err != nil {
		return errors.New("data does not conform to schema")
	}
	return errors.New(string(b))
}

// pointer converts a gojsonschema context ("(root)", "(root).items.0") into
// a JSON Pointer.
func pointer(field string) string {
	if field == "" || field == rootField {
		return ""
	}
	field = strings.TrimPrefix(field, rootField+".")
	var sb strings.Builder
	for _, t := range strings.Split(field, ".") {
		sb.WriteByte('/')
		t = strings.ReplaceAll(t, "~", "~0")
		sb.WriteString(strings.ReplaceAll(t, "/", "~1"))
	}
	return sb.String()
}

func (e *Engine) compile(schema string) (*gojsonschema.Schema, error) {
	key := xxhash.Sum64String(schema)
	e.mu.Lock()
	defer e.mu.Unlock()
	if sch, ok := e.compiled.Get(key); ok {
		return sch, nil
	}
	sl, err := e.loader()
	if err != nil {
		return nil, err
	}
	sch, err := sl.Compile(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, err
	}
	e.compiled.Add(key, sch)
	return sch, nil
}
