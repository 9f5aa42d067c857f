// Package middleware validates HTTP request bodies against a schema before
// they reach a handler.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	sv "github.com/reoring/schemavalidator"
)

// DefaultMaxBodySize caps the request body read by ValidateJSON.
const DefaultMaxBodySize = 1 << 20

// ctxKeyBody is the context key for the validated body.
type ctxKeyBody struct{}

// ContextWithBody attaches a validated body to the context.
func ContextWithBody(ctx context.Context, body []byte) context.Context {
	return context.WithValue(ctx, ctxKeyBody{}, body)
}

// BodyFromContext retrieves the body stored by ValidateJSON.
func BodyFromContext(ctx context.Context) ([]byte, bool) {
	b, ok := ctx.Value(ctxKeyBody{}).([]byte)
	return b, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues sv.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON checks each request body against schema (a reference such as
// "id://order" or an inline schema) using v. Conforming requests continue
// with the body restored and also stored in the context. Non-conforming
// bodies get 422 with an Issues payload; validator misuse (for example an
// uninitialized validator) gets 500.
func ValidateJSON(v *sv.Validator, schema any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, DefaultMaxBodySize))
			if err != nil {
				status := http.StatusBadRequest
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			ok, err := v.Validate(r.Context(), schema, body)
			if err != nil {
				if verr, isVE := sv.AsValidationError(err); isVE {
					writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(verr.Issues()))
					return
				}
				var ire *sv.InvalidReferenceError
				status := http.StatusInternalServerError
				if errors.As(err, &ire) {
					status = http.StatusBadRequest
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			if !ok {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(sv.Issues{}))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r.WithContext(ContextWithBody(r.Context(), body)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
