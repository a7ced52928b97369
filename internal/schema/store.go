package schema

import (
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/singleflight"

	"github.com/thoreinstein/specval/internal/errors"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreObserver sets the observer notified of loads and cache lookups.
func WithStoreObserver(o Observer) StoreOption {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLister sets the Lister used to enumerate versions and schema names.
// It defaults to the loader itself when the loader implements [Lister].
func WithLister(l Lister) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.lister = l
		}
	}
}

// Store caches schema documents by URI for the lifetime of the process.
//
// Entries are write-once: the first successful load of a URI is kept and
// every later lookup returns the same document instance. Failed loads are
// not cached. Concurrent first lookups of the same URI share one load.
//
// Store implements the engine's URL loader, so it also backs any
// cross-document $ref the engine follows.
type Store struct {
	loader   Loader
	lister   Lister
	observer Observer

	mu       sync.RWMutex
	docs     map[string]any
	compiled map[string]*jsonschema.Schema

	group singleflight.Group
}

// NewStore returns an empty store that loads documents with loader.
func NewStore(loader Loader, opts ...StoreOption) *Store {
	s := &Store{
		loader:   loader,
		observer: NopObserver{},
		docs:     make(map[string]any),
		compiled: make(map[string]*jsonschema.Schema),
	}
	if l, ok := loader.(Lister); ok {
		s.lister = l
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loader returns the loader backing the store.
func (s *Store) Loader() Loader {
	return s.loader
}

// Lister returns the store's lister, or an error matching [ErrNotListable]
// when it has none.
func (s *Store) Lister() (Lister, error) {
	if s.lister == nil {
		return nil, errors.Wrapf(ErrNotListable, "loader %T", s.loader)
	}
	return s.lister, nil
}

// GetOrLoad returns the document for uri, loading it on first use.
// Any fragment in uri is ignored.
func (s *Store) GetOrLoad(uri string) (any, error) {
	key := documentKey(uri)

	if doc, ok := s.lookup(key); ok {
		s.observer.CacheHit(key)
		return doc, nil
	}
	s.observer.CacheMiss(key)

	doc, err, _ := s.group.Do("doc:"+key, func() (any, error) {
		// Another caller may have finished loading between the miss and here.
		if doc, ok := s.lookup(key); ok {
			return doc, nil
		}

		p, err := PathFromURI(key)
		if err != nil {
			return nil, err
		}
		doc, err := s.loader.Load(p)
		s.observer.SchemaLoaded(key, err)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.docs[key] = doc
		s.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Load implements jsonschema.URLLoader.
func (s *Store) Load(url string) (any, error) {
	return s.GetOrLoad(url)
}

// Add pre-seeds the store with a document. It reports false and leaves the
// store unchanged if uri already has an entry.
func (s *Store) Add(uri string, doc any) bool {
	key := documentKey(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[key]; ok {
		return false
	}
	s.docs[key] = doc
	return true
}

// Compiled returns the compiled schema cached for uri, calling compile on
// first use. Like documents, compiled schemas are write-once.
func (s *Store) Compiled(uri string, compile func() (*jsonschema.Schema, error)) (*jsonschema.Schema, error) {
	key := documentKey(uri)

	s.mu.RLock()
	sch, ok := s.compiled[key]
	s.mu.RUnlock()
	if ok {
		return sch, nil
	}

	v, err, _ := s.group.Do("schema:"+key, func() (any, error) {
		s.mu.RLock()
		sch, ok := s.compiled[key]
		s.mu.RUnlock()
		if ok {
			return sch, nil
		}

		sch, err := compile()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.compiled[key] = sch
		s.mu.Unlock()
		return sch, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jsonschema.Schema), nil
}

// Len returns the number of cached documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// URIs returns the URIs of the cached documents, sorted.
func (s *Store) URIs() []string {
	s.mu.RLock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.RUnlock()
	slices.Sort(uris)
	return uris
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	return doc, ok
}
