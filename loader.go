package schemavalidator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ModuleLoader is the default Loader. It resolves a Source as follows:
//   - Content is parsed as a Descriptor (YAML or JSON);
//   - a Locator equal to a registered module name selects that module with
//     default settings;
//   - any other Locator (optionally prefixed with file://) is read from Fs
//     and parsed as a Descriptor.
type ModuleLoader struct {
	Fs afero.Fs
}

// NewModuleLoader returns a ModuleLoader reading descriptors from fs. A nil fs
// means the OS filesystem.
func NewModuleLoader(fs afero.Fs) *ModuleLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ModuleLoader{Fs: fs}
}

// Load implements Loader.
func (l *ModuleLoader) Load(ctx context.Context, src Source) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := l.descriptor(src)
	if err != nil {
		return nil, err
	}
	f, ok := lookupModule(d.Engine)
	if !ok {
		return nil, fmt.Errorf("unknown engine module %q (registered: %s)", d.Engine, strings.Join(Modules(), ", "))
	}
	return f(d)
}

func (l *ModuleLoader) descriptor(src Source) (Descriptor, error) {
	if len(src.Content) > 0 {
		return ParseDescriptor(src.Content)
	}
	loc := strings.TrimSpace(src.Locator)
	if loc == "" {
		return Descriptor{}, errors.New("empty module source")
	}
	if _, ok := lookupModule(loc); ok {
		return Descriptor{Engine: loc}, nil
	}
	path := strings.TrimPrefix(loc, "file://")
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read module descriptor: %w", err)
	}
	return ParseDescriptor(b)
}

// ParseDescriptor decodes a YAML or JSON module descriptor. Unknown fields are
// rejected.
func ParseDescriptor(b []byte) (Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptor{}, errors.New("empty module descriptor")
		}
		return Descriptor{}, fmt.Errorf("parse module descriptor: %w", err)
	}
	if d.Engine == "" {
		return Descriptor{}, errors.New("module descriptor: engine is required")
	}
	return d, nil
}
