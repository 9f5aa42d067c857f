package jsonschemav6_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sv "github.com/reoring/schemavalidator"
	"github.com/reoring/schemavalidator/engine/jsonschemav6"
	js "github.com/reoring/schemavalidator/jsonschema"
)

var person = js.Object(map[string]*js.Schema{
	"name":  js.String(),
	"age":   js.Integer(),
	"email": js.String(),
}, "name", "age", "email")

func ready(t *testing.T, opts ...sv.Option) *sv.Validator {
	t.Helper()
	v := sv.New(opts...)
	require.NoError(t, v.Init(context.Background(), sv.Locate(jsonschemav6.Name)))
	return v
}

func TestPersonScenario(t *testing.T) {
	ctx := context.Background()
	v := ready(t)
	require.NoError(t, v.RegisterSchema(ctx, "id://person", person))

	ok, err := v.Validate(ctx, "id://person", map[string]any{"name": "John", "age": 30, "email": "john@example.com"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = v.Validate(ctx, "id://person", `{"name":"John","age":"thirty"}`)
	require.False(t, ok)
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE, "got %T: %v", err, err)
	require.Contains(t, verr.Details, "/age")
	require.Contains(t, verr.Details, "")
	require.Contains(t, verr.Details[""], "email")
}

func TestInlineSchemaAndReferences(t *testing.T) {
	ctx := context.Background()
	v := ready(t)
	require.NoError(t, v.RegisterSchema(ctx, "id://name", `{"type":"string","minLength":1}`))

	schema := `{"type":"object","properties":{"n":{"$ref":"id://name"}}}`
	ok, err := v.Validate(ctx, schema, `{"n":"x"}`)
	require.NoError(t, err)
	require.True(t, ok)

	// Same text again is served from the compiled cache.
	_, err = v.Validate(ctx, schema, `{"n":""}`)
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE)
	require.Contains(t, verr.Details, "/n")

	_, err = v.Validate(ctx, "id://missing", `{}`)
	_, isVE = sv.AsValidationError(err)
	require.True(t, isVE)
}

func TestRegisterSchema_Rejections(t *testing.T) {
	ctx := context.Background()
	v := ready(t)

	var re *sv.RegistrationError
	require.ErrorAs(t, v.RegisterSchema(ctx, "person", `{"type":"object"}`), &re)
	require.Contains(t, re.Message, "absolute URI")

	require.ErrorAs(t, v.RegisterSchema(ctx, "id://bad", `{"type":12}`), &re)
	require.Contains(t, re.Message, "Invalid schema")

	// A rejected schema leaves the id free.
	require.NoError(t, v.RegisterSchema(ctx, "id://bad", `{"type":"integer"}`))

	require.ErrorAs(t, v.RegisterSchema(ctx, "id://bad", `{"type":"integer"}`), &re)
	require.Contains(t, re.Message, "already exists")
}

func TestBooleanModeStillReportsViolations(t *testing.T) {
	ctx := context.Background()
	v := ready(t, sv.WithMode(sv.ModeBoolean))
	ok, err := v.Validate(ctx, js.Integer(), "1.5")
	require.False(t, ok)
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE)
	require.Contains(t, verr.Details, "")
}

func TestDescriptorOptions(t *testing.T) {
	ctx := context.Background()
	v := sv.New()
	require.NoError(t, v.Init(ctx, sv.Content([]byte("engine: jsonschema\ndraft: \"7\"\nassertFormat: true\n"))))

	ok, err := v.Validate(ctx, `{"type":"string","format":"email"}`, `"john@example.com"`)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = v.Validate(ctx, `{"type":"string","format":"email"}`, `"not-an-email"`)
	require.Error(t, err)

	_, err = jsonschemav6.NewModule(sv.Descriptor{Engine: jsonschemav6.Name, Draft: "3"})
	require.ErrorContains(t, err, "unsupported draft")
}

func TestRemoteReferences(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"type":"integer","minimum":0}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	desc := "engine: jsonschema\nremote:\n  enabled: true\n  timeout: 2s\n  cache: memory\n"
	v := sv.New()
	require.NoError(t, v.Init(ctx, sv.Content([]byte(desc))))

	ok, err := v.Validate(ctx, srv.URL+"/count.json", "3")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = v.Validate(ctx, sv.Ref(srv.URL+"/count.json"), "-1")
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE)
	require.Contains(t, verr.Details, "")
	require.EqualValues(t, 1, hits.Load())
}

func TestRemoteReferencesDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()

	_, err := ready(t).Validate(context.Background(), srv.URL+"/s.json", "1")
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE)
	require.True(t, strings.Contains(verr.Error(), "validation failed"))
}

func newEngine(t *testing.T) *jsonschemav6.Engine {
	t.Helper()
	mod, err := jsonschemav6.NewModule(sv.Descriptor{Engine: jsonschemav6.Name})
	require.NoError(t, err)
	eng, err := mod.NewEngine()
	require.NoError(t, err)
	return eng.(*jsonschemav6.Engine)
}

func TestInlineSchemasStayOutOfRegistry(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	require.NoError(t, eng.AddSchema(ctx, "id://base", `{"type":"integer"}`))

	for i := 0; i < 1000; i++ {
		schema := fmt.Sprintf(`{"allOf":[{"$ref":"id://base"}],"maximum":%d}`, i)
		ok, err := eng.Validate(ctx, schema, "0")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 1, eng.Registered())
	require.LessOrEqual(t, eng.Compiled(), 256)

	require.NoError(t, eng.AddSchema(ctx, "id://other", `{"$ref":"id://base"}`))
	require.Equal(t, 2, eng.Registered())

	// Schemas compiled before a registration keep working.
	ok, err := eng.Validate(ctx, `{"allOf":[{"$ref":"id://base"}],"maximum":999}`, "1000")
	require.False(t, ok)
	require.Error(t, err)
	ok, err = eng.Validate(ctx, `{"$ref":"id://other"}`, "3")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRemoteRetrievalHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	v := sv.New()
	require.NoError(t, v.Init(context.Background(), sv.Content([]byte("engine: jsonschema\nremote:\n  enabled: true\n  timeout: 30s\n"))))
	defer func() { require.NoError(t, v.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := v.Validate(ctx, srv.URL+"/slow.json", "1")
	require.Less(t, time.Since(start), 4*time.Second)
	verr, isVE := sv.AsValidationError(err)
	require.True(t, isVE, "got %T: %v", err, err)
	require.Contains(t, verr.Error(), "context deadline exceeded")
}

func TestModuleClose(t *testing.T) {
	mod, err := jsonschemav6.NewModule(sv.Descriptor{Engine: jsonschemav6.Name, Remote: sv.RemoteConfig{Enabled: true, Cache: "memory"}})
	require.NoError(t, err)
	require.NoError(t, mod.(*jsonschemav6.Module).Close())

	require.NoError(t, ready(t).Close())
}
