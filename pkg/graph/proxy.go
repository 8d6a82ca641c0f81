package graph

import (
	"fmt"
	"sync"

	"github.com/cuemby/silo/pkg/fields"
)

// Loader is the narrow facade capability a Proxy needs: load a record
// by UUID, or fail. Implemented by *store.Store; kept as an interface
// here so this package never imports store (store imports graph, not
// the other way around).
type Loader interface {
	Load(uuid string) (any, error)
}

// ErrDangling is wrapped into the error a Proxy returns when its target
// has been deleted or has expired.
var ErrDangling = fmt.Errorf("graph: dangling reference")

// Proxy stands in for an unresolved composite: a tuple of (target UUID,
// loader, root object, path). It transitions from unloaded to loaded
// at most once; every subsequent access is a no-op that returns the
// cached value.
type Proxy struct {
	target string
	loader Loader
	root   any
	path   []PathSegment

	mu     sync.Mutex
	loaded bool
	value  any
	err    error
}

// New builds an unloaded proxy for targetUUID, bound to root and the
// path within it that this proxy currently occupies.
func New(targetUUID string, loader Loader, root any, path []PathSegment) *Proxy {
	return &Proxy{target: targetUUID, loader: loader, root: root, path: path}
}

// UUID returns the target identifier without triggering a load.
func (p *Proxy) UUID() string { return p.target }

// Loaded reports whether this proxy has already transitioned, without
// triggering a load.
func (p *Proxy) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Get triggers the load transition (idempotently) and returns the
// resolved target. Any field read, write, membership test, method
// invocation, or encode request on an unloaded proxy is expected to
// call through Get.
func (p *Proxy) Get() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.value, p.err
	}

	obj, loadErr := p.loader.Load(p.target)
	if loadErr != nil {
		p.err = loadErr
		p.loaded = true
		return nil, p.err
	}
	if obj == nil {
		p.err = fmt.Errorf("%w: %s", ErrDangling, p.target)
		p.loaded = true
		return nil, p.err
	}

	if rewriteErr := p.rewrite(obj); rewriteErr != nil {
		// The object still resolved; a failed slot rewrite does not
		// invalidate the load, it only means the caller who holds the
		// old parent slot keeps seeing the proxy instead of the real
		// value. Cache the resolved object regardless so repeated
		// Get() calls on this same proxy are idempotent.
		p.value = obj
		p.loaded = true
		return p.value, nil
	}

	p.value = obj
	p.loaded = true
	return p.value, nil
}

// rewrite replaces the slot at p.path within p.root with obj: an
// object field via the Accessor capability, or a container cell via
// direct map/slice mutation.
func (p *Proxy) rewrite(obj any) error {
	if len(p.path) == 0 {
		return fmt.Errorf("graph: proxy has an empty path")
	}

	first := p.path[0]
	if !first.isField() {
		return fmt.Errorf("graph: proxy path must start with a field segment")
	}
	acc, ok := p.root.(fields.Accessor)
	if !ok {
		return fmt.Errorf("graph: proxy root %T does not implement fields.Accessor", p.root)
	}

	if len(p.path) == 1 {
		return acc.SetFieldValue(first.Field, obj)
	}

	cur, initialized := acc.FieldValue(first.Field)
	if !initialized {
		return fmt.Errorf("graph: field %q is not initialized", first.Field)
	}
	for _, seg := range p.path[1 : len(p.path)-1] {
		next, err := containerAt(cur, seg.Key)
		if err != nil {
			return err
		}
		cur = next
	}
	last := p.path[len(p.path)-1]
	return setContainerAt(cur, last.Key, obj)
}
