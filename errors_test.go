package schemavalidator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFaultDetails_Tiers(t *testing.T) {
	require.Equal(t, map[string]any{"age": "must be integer"}, faultDetails(`{"age":"must be integer"}`))
	require.Equal(t, map[string]any{"message": "bad type at /age"}, faultDetails("bad type at /age"))
	require.Equal(t, map[string]any{"message": "{}"}, faultDetails("{}"))
	require.Equal(t, map[string]any{"message": "null"}, faultDetails("null"))
	require.Equal(t, map[string]any{"/a": "x"}, faultDetails([]byte(`{"/a":"x"}`)))
	require.Equal(t, map[string]any{"error": 3.5}, faultDetails(3.5))
}

func TestThrownValue(t *testing.T) {
	require.Equal(t, "plain", thrownValue(errors.New("plain")))
	require.Equal(t, 7, thrownValue(fmt.Errorf("wrapped: %w", &Fault{Value: 7})))
}

func TestFaultMessage(t *testing.T) {
	require.Equal(t, "text", faultMessage("text"))
	require.Equal(t, "bytes", faultMessage([]byte("bytes")))
	require.Equal(t, "err", faultMessage(errors.New("err")))
	require.Equal(t, "map[a:1]", faultMessage(map[string]int{"a": 1}))
}

func TestValidationError_Summary(t *testing.T) {
	verr := &ValidationError{Details: map[string]any{
		"/d":   "four",
		"/a":   "one",
		"":     "root",
		"/c":   map[string]any{"n": 1},
		"/b/0": "two",
	}}
	iss := verr.Issues()
	require.Len(t, iss, 5)
	require.Equal(t, "", iss[0].Path)
	require.Equal(t, "/a", iss[1].Path)
	require.Equal(t, `{"n":1}`, iss[3].Message)

	require.Equal(t, "validation failed: /: root; /a: one; /b/0: two; ... (total 5)", verr.Error())
	require.Equal(t, verr.Error(), verr.Message())

	single := &ValidationError{Details: map[string]any{DetailMessage: "bad"}}
	require.Equal(t, "bad", single.Message())
	require.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestAsValidationError(t *testing.T) {
	verr := &ValidationError{Details: map[string]any{"x": "y"}}
	got, ok := AsValidationError(fmt.Errorf("ctx: %w", verr))
	require.True(t, ok)
	require.Same(t, verr, got)

	_, ok = AsValidationError(errors.New("other"))
	require.False(t, ok)
	_, ok = AsValidationError(nil)
	require.False(t, ok)
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t, "engine not initialized; call Init first", ErrNotInitialized.Error())

	ie := &InitError{Source: "x.yaml", Cause: errors.New("missing")}
	require.Equal(t, `engine initialization failed (source "x.yaml"): missing`, ie.Error())

	re := &RegistrationError{ID: "id://a", Message: "Invalid schema"}
	require.Equal(t, `schema registration failed for "id://a": Invalid schema`, re.Error())

	ire := &InvalidReferenceError{Ref: "ftp://x"}
	require.Equal(t, "reference 'ftp://x' uses a scheme that is not allowed", ire.Error())
}
