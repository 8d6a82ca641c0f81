package store

import (
	"os"
	"testing"
	"time"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
)

func TestLoadReturnsNilForExpiredRecord(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "short-lived")
	id, err := st.Store(n, "", time.Millisecond)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected an expired record to load as nil, got %v", loaded)
	}
}

func TestLoadEntersSafeModeOnChecksumMismatch(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "tamper-me")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := os.WriteFile(st.dataPath(id), []byte(`{"name":"tampered"}`), 0o644); err != nil {
		t.Fatalf("tampering with record: %v", err)
	}
	st.ClearCache()

	if _, err := st.Load(id); err == nil {
		t.Fatal("expected a checksum-mismatch error")
	}
	if !st.SafeMode() {
		t.Fatal("expected a checksum mismatch to put the store into safe mode")
	}
}

func TestLoadFabricatesAliasForUnknownClass(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Known", func() fields.Accessor { return newNode("Known") })

	n := newNode("Ghost")
	n.SetFieldValue("name", "orphaned")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.(fields.Accessor)
	if !ok {
		t.Fatalf("expected a fabricated accessor, got %T", loaded)
	}
	if v, _ := got.FieldValue("name"); v != "orphaned" {
		t.Fatalf("name = %v, want orphaned", v)
	}
}

func TestLoadHonorsClassRenameMapOverFabrication(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry()
	reg.Register("NewName", func() fields.Accessor { return newNode("NewName") })
	cfg := DefaultConfig(dir)
	cfg.ClassRenameMap = map[string]string{"OldName": "NewName"}
	st, err := New(cfg, reg, events.NewBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n := newNode("OldName")
	n.SetFieldValue("name", "renamed-class")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	st.ClearCache()

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.(*node)
	if !ok {
		t.Fatalf("expected the renamed class to resolve to a registered *node, got %T", loaded)
	}
	if got.ClassName() != "NewName" {
		t.Fatalf("ClassName() = %q, want NewName", got.ClassName())
	}
}

func TestDecodeCoercesScalarsViaTypedSample(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor {
		return newNode("Widget").withSample("count", int(0))
	})

	n := newNode("Widget").withSample("count", int(0))
	n.SetFieldValue("count", 7)
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
	v, _ := got.FieldValue("count")
	if _, ok := v.(int); !ok {
		t.Fatalf("expected count to be coerced back to int, got %T (%v)", v, v)
	}
}

func TestLoadOfMissingRecordReturnsNotFound(t *testing.T) {
	st, _ := openTestStore(t)
	_, err := st.Load("00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Fatal("expected an error for a missing record")
	}
	storeErr, ok := err.(*Error)
	if !ok || storeErr.Kind != NotFound {
		t.Fatalf("expected NotFound kind, got %#v", err)
	}
}

func TestLoadReturnsMetadataNotFoundWhenDataExistsWithoutMetadata(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "orphan-data")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := os.Remove(st.metaPath(id)); err != nil {
		t.Fatalf("removing metadata: %v", err)
	}
	st.ClearCache()

	_, err = st.Load(id)
	storeErr, ok := err.(*Error)
	if !ok || storeErr.Kind != MetadataNotFound {
		t.Fatalf("expected MetadataNotFound kind, got %#v", err)
	}
	if !st.SafeMode() {
		t.Fatal("expected a missing-metadata record to put the store into safe mode")
	}
}
