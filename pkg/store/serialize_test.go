package store

import (
	"testing"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
)

func TestStoreAndLoadRoundTrip(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "widget-1")
	n.SetFieldValue("count", 42.0)

	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty UUID")
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.(*node)
	if v, _ := got.FieldValue("name"); v != "widget-1" {
		t.Fatalf("name = %v, want widget-1", v)
	}
	if v, _ := got.FieldValue("count"); v != 42.0 {
		t.Fatalf("count = %v, want 42", v)
	}
}

func TestStoreIsIdempotentWhenUnchanged(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "widget-1")

	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := st.Store(n, id, 0); err != nil {
		t.Fatalf("second Store: %v", err)
	}

	meta, err := st.LoadMetadata(id)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.Version != 1 {
		t.Fatalf("expected version to stay 1 for an unchanged write, got %d", meta.Version)
	}
}

func TestStoreBumpsVersionOnChange(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "widget-1")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	n.SetFieldValue("name", "widget-2")
	if _, err := st.Store(n, id, 0); err != nil {
		t.Fatalf("second Store: %v", err)
	}

	meta, err := st.LoadMetadata(id)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.Version != 2 {
		t.Fatalf("expected version 2 after a changed write, got %d", meta.Version)
	}
}

func TestSelfReferenceThroughProxyableFieldStaysLazy(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Node", func() fields.Accessor {
		return newNode("Node").withKind("self", fields.Proxyable)
	})

	n := newNode("Node").withKind("self", fields.Proxyable)
	n.SetFieldValue("name", "root")
	n.SetFieldValue("self", n)

	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	st.ClearCache()

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.(*node)
	selfVal, _ := got.FieldValue("self")
	p, ok := selfVal.(interface{ Loaded() bool })
	if !ok {
		t.Fatalf("expected self field to decode to a proxy, got %T", selfVal)
	}
	if p.Loaded() {
		t.Fatal("expected the self-referencing proxy to stay unresolved until forced")
	}
}

func TestCompositeKindFieldResolvesEagerlyOnLoad(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Node", func() fields.Accessor {
		return newNode("Node").withKind("child", fields.Composite)
	})

	child := newNode("Node").withKind("child", fields.Composite)
	child.SetFieldValue("name", "child")

	parent := newNode("Node").withKind("child", fields.Composite)
	parent.SetFieldValue("name", "parent")
	parent.SetFieldValue("child", child)

	id, err := st.Store(parent, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.(*node)
	childVal, _ := got.FieldValue("child")
	childNode, ok := childVal.(*node)
	if !ok {
		t.Fatalf("expected child field to be eagerly resolved to *node, got %T", childVal)
	}
	if v, _ := childNode.FieldValue("name"); v != "child" {
		t.Fatalf("child name = %v, want child", v)
	}
}

func TestChildWritePolicyNeverSkipsNestedStore(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry()
	reg.Register("Node", func() fields.Accessor { return newNode("Node") })
	bus := events.NewBus()
	cfg := DefaultConfig(dir)
	cfg.ChildWrite = Never
	st, err := New(cfg, reg, bus)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	child := newNode("Node")
	child.SetFieldValue("name", "child")
	parent := newNode("Node")
	parent.SetFieldValue("name", "parent")
	parent.SetFieldValue("child", child)

	if _, err := st.Store(parent, "", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if child.uuid != "" && st.Exists(child.uuid) {
		t.Fatal("expected ChildWrite=Never to leave the embedded composite unwritten")
	}
}

func TestReservedNameCollisionGetsRenamed(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Node", func() fields.Accessor { return newNode("Node") })

	n := newNode("Node")
	n.SetFieldValue("name", "has-its-own-reference-field")
	n.SetFieldValue("__reference", "not-a-real-uuid")

	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	meta, err := st.LoadMetadata(id)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.ReservedReferenceName == "__reference" {
		t.Fatal("expected a renamed reserved reference field when the node already owns __reference")
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.(*node)
	if v, _ := got.FieldValue("__reference"); v != "not-a-real-uuid" {
		t.Fatalf("expected the node's own __reference field to survive untouched, got %v", v)
	}
}
