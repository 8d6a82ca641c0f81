package store

import (
	"testing"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
)

// node is a minimal fields.Accessor used across this package's tests,
// map-backed like DynamicObject but with caller-declared field kinds
// and an optional Typed sample, so tests can exercise the admissibility
// rule and scalar coercion without a hand-written struct per scenario.
type node struct {
	uuid   string
	class  string
	kinds  map[string]fields.Kind
	sample map[string]any
	values map[string]any
	set    map[string]bool
}

func newNode(class string) *node {
	return &node{
		class:  class,
		kinds:  map[string]fields.Kind{},
		sample: map[string]any{},
		values: map[string]any{},
		set:    map[string]bool{},
	}
}

func (n *node) ClassName() string { return n.class }
func (n *node) GetUUID() string   { return n.uuid }
func (n *node) SetUUID(id string) { n.uuid = id }

func (n *node) FieldNames() []string {
	names := make([]string, 0, len(n.values))
	for name := range n.values {
		names = append(names, name)
	}
	return names
}

func (n *node) FieldKind(name string) fields.Kind {
	if k, ok := n.kinds[name]; ok {
		return k
	}
	return fields.Scalar
}

func (n *node) FieldValue(name string) (any, bool) {
	return n.values[name], n.set[name]
}

func (n *node) SetFieldValue(name string, value any) error {
	n.values[name] = value
	n.set[name] = true
	return nil
}

func (n *node) UnsetFieldValue(name string) error {
	delete(n.values, name)
	delete(n.set, name)
	return nil
}

func (n *node) FieldSample(name string) any {
	return n.sample[name]
}

// withKind marks name as declaring kind, for tests that need a
// Proxyable/Composite/Container field rather than the Scalar default.
func (n *node) withKind(name string, kind fields.Kind) *node {
	n.kinds[name] = kind
	return n
}

func (n *node) withSample(name string, sample any) *node {
	n.sample[name] = sample
	return n
}

func openTestStore(t *testing.T) (*Store, *Registry) {
	t.Helper()
	dir := t.TempDir()
	reg := NewRegistry()
	bus := events.NewBus()
	st, err := New(DefaultConfig(dir), reg, bus)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st, reg
}
