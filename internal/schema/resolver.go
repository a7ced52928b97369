package schema

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/thoreinstein/specval/internal/errors"
)

// Resolver turns $ref pointers into the documents and sub-schemas they
// designate. It is bound to one version directory.
//
// The referrer, normally the version's defs.json, is registered up front so
// references like "defs.json#/definitions/channel" never trigger a load.
// Every other document is fetched through the [Store].
type Resolver struct {
	base        *url.URL
	referrerURI string
	referrer    any
	store       *Store
}

// NewResolver returns a resolver for the directory baseURI. A missing
// trailing slash is added: without it "defs.json" would resolve against the
// parent directory.
func NewResolver(baseURI string, referrer any, store *Store) (*Resolver, error) {
	if !strings.HasSuffix(baseURI, "/") {
		baseURI += "/"
	}
	base, err := url.Parse(baseURI)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing base URI %q", baseURI)
	}
	if !base.IsAbs() {
		return nil, errors.Newf("base URI %q is not absolute", baseURI)
	}

	r := &Resolver{
		base:     base,
		referrer: referrer,
		store:    store,
	}
	r.referrerURI = base.ResolveReference(&url.URL{Path: DefsName}).String()
	return r, nil
}

// BaseURI returns the directory URI references are resolved against.
func (r *Resolver) BaseURI() string {
	return r.base.String()
}

// ResolveURI resolves ref against the base URI.
func (r *Resolver) ResolveURI(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "parsing reference %q", ref)
	}
	return r.base.ResolveReference(u).String(), nil
}

// Load implements jsonschema.URLLoader.
func (r *Resolver) Load(uri string) (any, error) {
	if documentKey(uri) == r.referrerURI && r.referrer != nil {
		return r.referrer, nil
	}
	return r.store.GetOrLoad(uri)
}

// Resolve returns the value designated by ref: the whole document when ref
// has no fragment, otherwise the value at the fragment's JSON pointer.
func (r *Resolver) Resolve(ref string) (any, error) {
	abs, err := r.ResolveURI(ref)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing reference %q", abs)
	}
	fragment := u.Fragment
	u.Fragment = ""

	doc, err := r.Load(u.String())
	if err != nil {
		return nil, err
	}
	if fragment == "" {
		return doc, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, errors.Newf("reference %q: only JSON pointer fragments are supported", ref)
	}
	return lookupPointer(doc, fragment)
}

// Compile compiles the schema at schemaURI with Draft 2020-12 defaults.
// Format keywords are annotations only.
func (r *Resolver) Compile(schemaURI string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	c.UseLoader(r)

	if r.referrer != nil {
		if err := c.AddResource(r.referrerURI, r.referrer); err != nil {
			return nil, &SchemaLoadError{Path: r.referrerURI, Err: err}
		}
	}

	sch, err := c.Compile(schemaURI)
	if err != nil {
		return nil, &SchemaLoadError{Path: schemaURI, Err: err}
	}
	return sch, nil
}

// lookupPointer walks a JSON pointer through a document tree.
func lookupPointer(doc any, pointer string) (any, error) {
	cur := doc
	for _, raw := range strings.Split(pointer, "/")[1:] {
		tok := unescapePointerToken(raw)
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[tok]
			if !ok {
				return nil, errors.Wrapf(errors.ErrNotFound, "pointer %q: no key %q", pointer, tok)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(v) {
				return nil, errors.Wrapf(errors.ErrNotFound, "pointer %q: bad index %q", pointer, tok)
			}
			cur = v[i]
		default:
			return nil, errors.Wrapf(errors.ErrNotFound, "pointer %q: cannot descend into %T", pointer, cur)
		}
	}
	return cur, nil
}
