package jsonschema

import (
	json "github.com/goccy/go-json"
	invopop "github.com/invopop/jsonschema"
)

// ReflectOpt tunes Reflect.
type ReflectOpt struct {
	// AllowAdditional permits properties not declared by the struct.
	AllowAdditional bool
}

// Reflect derives a JSON Schema from the Go type of v (typically a pointer to
// a zero struct) and returns it as JSON text. Struct tags follow
// invopop/jsonschema conventions (`json`, `jsonschema`). The result carries
// no $id so it can be registered under any identifier.
func Reflect(v any, opts ...ReflectOpt) ([]byte, error) {
	var opt ReflectOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	r := &invopop.Reflector{
		Anonymous:                 true,
		DoNotReference:            true, // inline defs
		ExpandedStruct:            true, // put struct at root
		AllowAdditionalProperties: opt.AllowAdditional,
	}
	return json.Marshal(r.Reflect(v))
}

// ReflectType is Reflect for the type parameter T.
func ReflectType[T any](opts ...ReflectOpt) ([]byte, error) {
	return Reflect(new(T), opts...)
}
