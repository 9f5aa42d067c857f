package schemavalidator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/schemavalidator/i18n"
)

// Detail keys used when the engine does not supply a field mapping.
const (
	DetailMessage = "message" // textual engine output that is not a JSON object
	DetailError   = "error"   // non-textual engine output
)

// ErrNotInitialized is returned by every operation other than Init while the
// Validator is not READY. It is a sentinel for errors.Is and is not localized.
var ErrNotInitialized = errors.New("engine not initialized; call Init first")

// InitError reports a failed Init attempt. The Validator is FAILED and Init
// may be called again.
type InitError struct {
	Source string
	Cause  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s (source %q): %v", i18n.T(i18n.CodeInitFailed, nil), e.Source, e.Cause)
}

func (e *InitError) Unwrap() error { return e.Cause }

// RegistrationError reports a schema the engine (or the facade) refused.
// Message is plain text; engine error values are not retained.
type RegistrationError struct {
	ID      string
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s for %q: %s", i18n.T(i18n.CodeRegistrationFailed, nil), e.ID, e.Message)
}

// InvalidReferenceError reports a schema reference whose scheme is not
// allowed. The engine is never called for such references.
type InvalidReferenceError struct {
	Ref string
}

func (e *InvalidReferenceError) Error() string {
	return i18n.T(i18n.CodeInvalidReference, map[string]string{"ref": e.Ref})
}

// Issue is one entry of a ValidationError.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer, or DetailMessage/DetailError for fallback details.
	Message string `json:"message"`
}

// Issues is a path-sorted list of validation entries.
type Issues []Issue

// ValidationError reports data that does not satisfy a schema. Details maps
// failing field paths to their detail as supplied by the engine; when the
// engine gave no mapping it holds a single DetailMessage or DetailError entry.
type ValidationError struct {
	Details map[string]any
}

// Issues returns the details sorted by path.
func (e *ValidationError) Issues() Issues {
	paths := make([]string, 0, len(e.Details))
	for p := range e.Details {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	iss := make(Issues, 0, len(paths))
	for _, p := range paths {
		iss = append(iss, Issue{Path: p, Message: detailText(e.Details[p])})
	}
	return iss
}

// Message returns the single message detail when present, otherwise the
// summary produced by Error.
func (e *ValidationError) Message() string {
	if s, ok := e.Details[DetailMessage].(string); ok {
		return s
	}
	return e.Error()
}

// Error summarizes the first few issues.
func (e *ValidationError) Error() string {
	iss := e.Issues()
	if len(iss) == 0 {
		return "validation failed"
	}
	const maxShown = 3
	b := &strings.Builder{}
	b.WriteString("validation failed: ")
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		p := iss[i].Path
		if p == "" {
			p = "/"
		}
		fmt.Fprintf(b, "%s: %s", p, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsValidationError extracts a *ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func detailText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// ---- engine fault normalization ----

// thrownValue recovers what the engine raised: the payload of a *Fault, or
// the text of any other error.
func thrownValue(err error) any {
	var f *Fault
	if errors.As(err, &f) {
		return f.Value
	}
	return err.Error()
}

// faultDetails normalizes a raised value. Text that parses as a non-empty JSON
// object becomes the detail mapping; other text is kept under DetailMessage;
// non-text is kept under DetailError.
func faultDetails(v any) map[string]any {
	switch t := v.(type) {
	case string:
		return textDetails(t)
	case []byte:
		return textDetails(string(t))
	}
	return map[string]any{DetailError: v}
}

func textDetails(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err == nil && len(m) > 0 {
		return m
	}
	return map[string]any{DetailMessage: s}
}

// faultMessage flattens a raised value into plain text.
func faultMessage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case error:
		return t.Error()
	}
	return fmt.Sprint(v)
}

func newValidationError(err error) *ValidationError {
	return &ValidationError{Details: faultDetails(thrownValue(err))}
}
