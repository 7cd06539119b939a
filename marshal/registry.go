package marshal

import (
	"slices"

	"github.com/wherewhere/wrapgen/typedesc"
)

// Entry is one ambient adapter: a (managed, wrapper) type pair with its two
// conversions and any auxiliary trailing parameters the conversion accepts.
// Generic entries are declared with open shapes and instantiated per use.
type Entry struct {
	Managed     typedesc.Type
	Wrapper     typedesc.Type
	ToWrapper   Conv
	ToManaged   Conv
	ExtraParams []typedesc.Type
}

// Registry is the ordered, immutable set of ambient adapters available to
// every resolution regardless of user annotations. It must be fully
// constructed before any resolution begins; [Resolver] only ever reads it, so
// a single Registry is safe for concurrent use across target/wrapper pairs.
//
// The registry is an explicit configuration value. Which adapters belong in
// it is the caller's decision, not discovered from the environment.
type Registry struct {
	entries []Entry
}

// NewRegistry creates a registry from the given entries. Resolution consults
// them in the given order; earlier entries win.
func NewRegistry(entries ...Entry) *Registry {
	return &Registry{entries: slices.Clone(entries)}
}

// Entries returns the adapter entries in resolution order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}
