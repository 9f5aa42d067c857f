package schemavalidator

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/schemavalidator/jsonschema"
)

// Reference schemes accepted by Validate.
const (
	SchemeHTTP  = "http://"
	SchemeHTTPS = "https://"
	SchemeID    = "id://" // locally registered schemas
)

var errNilSchema = errors.New("schema is nil")

// allowedReference reports whether ref may be forwarded to the engine.
func allowedReference(ref string, local bool) bool {
	switch {
	case strings.HasPrefix(ref, SchemeHTTP), strings.HasPrefix(ref, SchemeHTTPS):
		return true
	case local && strings.HasPrefix(ref, SchemeID):
		return true
	}
	return false
}

// canonicalSchema turns a caller-supplied schema into the JSON text handed to
// the engine. Strings that are not JSON are references and go through the
// scheme gate before being wrapped as {"$ref": ref}.
func canonicalSchema(schema any, local bool) (string, error) {
	switch s := schema.(type) {
	case nil:
		return "", errNilSchema
	case Ref:
		return referenceSchema(string(s), local)
	case string:
		return textOrReference(s, local)
	case []byte:
		return textOrReference(string(s), local)
	case YAML:
		return yamlToJSON(string(s))
	}
	return marshal(schema)
}

// canonicalData turns a caller-supplied document into JSON text. Strings and
// byte slices are taken as JSON text already.
func canonicalData(data any) (string, error) {
	switch d := data.(type) {
	case string:
		return d, nil
	case []byte:
		return string(d), nil
	case YAML:
		return yamlToJSON(string(d))
	}
	return marshal(data)
}

// isJSONText mirrors the engine-side rule that object schemas start with '{';
// other JSON values (boolean schemas) are accepted when they parse.
func isJSONText(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "{") || json.Valid([]byte(t))
}

func textOrReference(s string, local bool) (string, error) {
	if isJSONText(s) {
		return s, nil
	}
	return referenceSchema(strings.TrimSpace(s), local)
}

func referenceSchema(ref string, local bool) (string, error) {
	if !allowedReference(ref, local) {
		return "", &InvalidReferenceError{Ref: ref}
	}
	return marshal(jsonschema.Ref(ref))
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize %T: %w", v, err)
	}
	return string(b), nil
}

func yamlToJSON(text string) (string, error) {
	var node any
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return "", fmt.Errorf("parse yaml: %w", err)
	}
	return marshal(yamlNormalizeValue(node))
}

// yamlNormalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like values recursively.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
