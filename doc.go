// Package schemavalidator provides a uniform API for validating JSON-like
// documents against JSON Schemas through a pluggable validation engine.
//
// - A lifecycle state machine around the engine (UNINITIALIZED -> READY | FAILED)
// - A schema registry facade: schemas registered under identifiers (id://...)
// - A validation facade normalizing schemas, references and data to JSON text
// - A stable error model: InitError, ErrNotInitialized, RegistrationError,
//   InvalidReferenceError and ValidationError (field path -> detail)
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Engines live under engine/ and register themselves with RegisterModule.
// - Remote schema retrieval and its caches live under remote/.
//
// Typical usage:
//
//	import _ "github.com/reoring/schemavalidator/engine/jsonschemav6"
//
//	v := schemavalidator.New()
//	err := v.Init(ctx, schemavalidator.Locate("jsonschema"))
//	err = v.RegisterSchema(ctx, "id://person", personSchema)
//	ok, err := v.Validate(ctx, "id://person", map[string]any{"name": "John"})
//	if verr, isInvalid := schemavalidator.AsValidationError(err); isInvalid {
//		for _, is := range verr.Issues() {
//			log.Printf("%s: %s", is.Path, is.Message)
//		}
//	}
package schemavalidator
