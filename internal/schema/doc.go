// Package schema validates specification documents (workspaces, models,
// measurements and patch sets) against versioned JSON schemas.
//
// The JSON-schema matching itself is delegated to
// [github.com/santhosh-tekuri/jsonschema/v6]. This package owns everything
// around it: resolving which schema version applies, loading and caching
// schema documents, wiring cross-document $ref resolution, and translating
// engine errors into a single caller-facing error type.
//
// # Components
//
//   - [Loader] / [FSLoader]: reads "{version}/{name}" from an [io/fs.FS].
//   - [Store]: process-wide URI to document cache, write-once per URI.
//   - [Resolver]: serves $ref targets to the engine, relative to a version
//     directory URI, with that version's defs.json registered up front.
//   - [Validator]: the facade. Resolves the version, loads, compiles and
//     validates, and returns nil or an [*InvalidSpecification].
//
// # Basic Usage
//
//	store := schema.NewStore(schema.NewFSLoader(schema.Bundled()))
//	v := schema.New(store, schema.WithLogger(logger))
//
//	if err := v.Validate(doc, "workspace.json", ""); err != nil {
//		var invalid *schema.InvalidSpecification
//		if errors.As(err, &invalid) {
//			fmt.Println(invalid.Path(), invalid.Reason())
//		}
//	}
//
// A Store is meant to be created once and shared; it is safe for concurrent
// use. Validators built on the same Store share loaded and compiled schemas.
//
// # Errors
//
// Loading failures (unknown version, missing or malformed schema files)
// satisfy errors.Is(err, [ErrSchemaLoad]). Documents that violate their
// schema produce [*InvalidSpecification], which satisfies
// errors.Is(err, [ErrInvalidSpecification]). Engine error types are never
// returned.
package schema
