package schema

// Observer receives events from a [Store] and a [Validator].
// Implementations must be safe for concurrent use.
type Observer interface {
	// SchemaLoaded is called after every loader invocation.
	SchemaLoaded(uri string, err error)
	// CacheHit is called when a document is served from the store.
	CacheHit(uri string)
	// CacheMiss is called when a document is not yet in the store.
	CacheMiss(uri string)
	// Validated is called once per validation with its outcome.
	Validated(schemaName, version string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) SchemaLoaded(string, error)      {}
func (NopObserver) CacheHit(string)                 {}
func (NopObserver) CacheMiss(string)                {}
func (NopObserver) Validated(string, string, error) {}
