package store

import (
	"sync"

	"github.com/cuemby/silo/pkg/fields"
)

// Registry maps persisted class names to factories that instantiate a
// fields.Accessor for that class without running a constructor.
// Callers register every persisted type up front;
// the decoder never synthesizes a type it wasn't told about, except via
// the DynamicObject fallback.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]fields.Factory
}

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]fields.Factory)}
}

// Register associates class with a factory. Re-registering the same
// class name replaces the prior factory.
func (r *Registry) Register(class string, f fields.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[class] = f
}

// lookup returns the registered factory for class, if any.
func (r *Registry) lookup(class string) (fields.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[class]
	return f, ok
}

// resolution is what resolve returns: the factory to instantiate, the
// (possibly renamed) class name to persist against the fresh object, and
// whether an alias had to be fabricated.
type resolution struct {
	factory   fields.Factory
	className string
	fabricated bool
}

// resolve applies the class-rename map first, falls back to the
// registry, and fabricates a DynamicObject-backed alias only for names
// absent from both; the rename map takes precedence over fabrication.
func (r *Registry) resolve(persistedClass string, renameMap map[string]string) resolution {
	class := persistedClass
	if renamed, ok := renameMap[persistedClass]; ok && renamed != "" {
		class = renamed
	}

	if f, ok := r.lookup(class); ok {
		return resolution{factory: f, className: class}
	}

	fabricatedClass := class
	return resolution{
		factory:    func() fields.Accessor { return NewDynamicObject(fabricatedClass) },
		className:  fabricatedClass,
		fabricated: true,
	}
}
