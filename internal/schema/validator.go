package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
)

// Option configures a Validator.
type Option func(*Validator)

// WithDefaultVersion sets the version used when a caller passes none.
func WithDefaultVersion(version string) Option {
	return func(v *Validator) {
		if version != "" {
			v.defaultVersion = version
		}
	}
}

// WithLogger sets the logger used for the version mismatch warning.
// The default is slog.Default at the time of the call.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithObserver sets the observer notified of every validation outcome.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		if o != nil {
			v.observer = o
		}
	}
}

// Validator checks documents against the schemas held by a [Store].
// It is safe for concurrent use.
type Validator struct {
	store          *Store
	defaultVersion string
	logger         *slog.Logger
	observer       Observer
}

// New returns a Validator backed by store.
func New(store *Store, opts ...Option) *Validator {
	v := &Validator{
		store:          store,
		defaultVersion: DefaultVersion,
		observer:       NopObserver{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// DefaultVersion returns the version used when none is requested.
func (v *Validator) DefaultVersion() string {
	return v.defaultVersion
}

// Store returns the store backing the validator.
func (v *Validator) Store() *Store {
	return v.store
}

// Validate checks doc against schemaName. An empty version selects the
// default version; any other version is used as-is after a warning.
//
// It returns nil when doc is valid, an [*InvalidSpecification] when it is
// not, and an error matching [ErrSchemaLoad] when the schema is unavailable.
func (v *Validator) Validate(doc any, schemaName, version string) error {
	if version == "" {
		version = v.defaultVersion
	}
	if version != v.defaultVersion {
		logging.WithSchema(v.log(), schemaName, version).Warn(fmt.Sprintf(
			"Specification requested version %s but latest is %s. Upgrade your specification or downgrade specval.",
			version, v.defaultVersion))
	}

	err := v.validate(doc, schemaName, version)
	v.observer.Validated(schemaName, version, err)
	return err
}

func (v *Validator) validate(doc any, schemaName, version string) error {
	sch, err := v.compile(schemaName, version)
	if err != nil {
		return err
	}

	if err := sch.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return newInvalidSpecification(verr, schemaName, version)
		}
		return errors.Wrapf(err, "validating against %s", schemaName)
	}
	return nil
}

// Compile loads and compiles a schema without validating anything, so a
// schema set can be checked ahead of use. The compiled schema is cached
// exactly as a validation would cache it.
func (v *Validator) Compile(schemaName, version string) error {
	if version == "" {
		version = v.defaultVersion
	}
	_, err := v.compile(schemaName, version)
	return err
}

func (v *Validator) compile(schemaName, version string) (*jsonschema.Schema, error) {
	uri := SchemaURI(version, schemaName)
	if _, err := v.store.GetOrLoad(uri); err != nil {
		return nil, err
	}

	return v.store.Compiled(uri, func() (*jsonschema.Schema, error) {
		defs, err := v.store.GetOrLoad(SchemaURI(version, DefsName))
		if err != nil {
			return nil, err
		}
		r, err := NewResolver(VersionBaseURI(version), defs, v.store)
		if err != nil {
			return nil, err
		}
		logging.WithSchema(v.log(), schemaName, version).Log(context.Background(), logging.LevelTrace,
			"compiling schema", logging.URI(uri))
		return r.Compile(uri)
	})
}

// Resolver returns a resolver for version, with its defs.json registered.
func (v *Validator) Resolver(version string) (*Resolver, error) {
	if version == "" {
		version = v.defaultVersion
	}
	defs, err := v.store.GetOrLoad(SchemaURI(version, DefsName))
	if err != nil {
		return nil, err
	}
	return NewResolver(VersionBaseURI(version), defs, v.store)
}

// Versions returns the versions the store's lister knows about.
func (v *Validator) Versions() ([]string, error) {
	lister, err := v.store.Lister()
	if err != nil {
		return nil, err
	}
	return lister.Versions()
}

// Schemas returns the schema names available for version.
func (v *Validator) Schemas(version string) ([]string, error) {
	if version == "" {
		version = v.defaultVersion
	}
	lister, err := v.store.Lister()
	if err != nil {
		return nil, err
	}
	return lister.List(version)
}

func (v *Validator) log() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return slog.Default()
}

var defaultValidator = sync.OnceValue(func() *Validator {
	return New(NewStore(NewFSLoader(Bundled())))
})

// Validate checks doc against a bundled schema using a process-wide
// validator. See [Validator.Validate].
func Validate(doc any, schemaName, version string) error {
	return defaultValidator().Validate(doc, schemaName, version)
}
