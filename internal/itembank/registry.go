package itembank

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/mod/semver"
)

// Registry publishes bank snapshots copy-on-write. Readers get the current
// snapshot without locking; every published version stays resolvable so a
// session pinned to an older version keeps its interpretation.
type Registry struct {
	current atomic.Pointer[Bank]

	mu       sync.RWMutex
	versions map[string]*Bank
}

// NewRegistry creates a registry with b as the current snapshot.
func NewRegistry(b *Bank) *Registry {
	r := &Registry{versions: make(map[string]*Bank)}
	r.versions[b.Version()] = b
	r.current.Store(b)
	return r
}

// Current returns the latest published snapshot.
func (r *Registry) Current() *Bank {
	return r.current.Load()
}

// Publish makes b the current snapshot. The version must be strictly newer
// than the current one.
func (r *Registry) Publish(b *Bank) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	if semver.Compare(b.Version(), cur.Version()) <= 0 {
		return fmt.Errorf("%w: version %s is not newer than %s", ErrInvalidBank, b.Version(), cur.Version())
	}
	r.versions[b.Version()] = b
	r.current.Store(b)
	return nil
}

// Version returns the snapshot published under version.
func (r *Registry) Version(version string) (*Bank, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.versions[version]
	if !ok {
		return nil, fmt.Errorf("bank version %q not published", version)
	}
	return b, nil
}

// Add makes b resolvable by version without changing the current
// snapshot. Re-adding a known version is a no-op.
func (r *Registry) Add(b *Bank) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.versions[b.Version()]; !ok {
		r.versions[b.Version()] = b
	}
}
