package store

import (
	"testing"

	"github.com/cuemby/silo/pkg/fields"
)

func TestEnterSafeModeBlocksWrites(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	if err := st.EnterSafeMode("operator requested"); err != nil {
		t.Fatalf("EnterSafeMode: %v", err)
	}
	if !st.SafeMode() {
		t.Fatal("expected SafeMode() true after EnterSafeMode")
	}

	n := newNode("Widget")
	n.SetFieldValue("name", "should-not-persist")
	_, err := st.Store(n, "", 0)
	if err == nil {
		t.Fatal("expected Store to fail while in safe mode")
	}
	storeErr, ok := err.(*Error)
	if !ok || storeErr.Kind != SafeMode {
		t.Fatalf("expected SafeMode kind, got %#v", err)
	}
}

func TestExitSafeModeRestoresWrites(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	if err := st.EnterSafeMode("manual"); err != nil {
		t.Fatalf("EnterSafeMode: %v", err)
	}
	if err := st.ExitSafeMode(); err != nil {
		t.Fatalf("ExitSafeMode: %v", err)
	}
	if st.SafeMode() {
		t.Fatal("expected SafeMode() false after ExitSafeMode")
	}

	n := newNode("Widget")
	n.SetFieldValue("name", "can-persist-again")
	if _, err := st.Store(n, "", 0); err != nil {
		t.Fatalf("Store after ExitSafeMode: %v", err)
	}
}

func TestClearCacheEmptiesBothCaches(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "cached")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := st.Load(id); err != nil {
		t.Fatalf("Load: %v", err)
	}

	st.ClearCache()

	if _, ok := st.objCache.Get(id); ok {
		t.Fatal("expected object cache to be empty after ClearCache")
	}
	if _, ok := st.metaCache.Get(id); ok {
		t.Fatal("expected metadata cache to be empty after ClearCache")
	}
}

func TestClearCacheResetsIdentityAndInProgressMaps(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "tracked")
	if _, err := st.Store(n, "", 0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	st.mu.Lock()
	st.identity[n] = "stale-uuid"
	st.inProgress["stale-uuid"] = true
	st.mu.Unlock()

	st.ClearCache()

	st.mu.Lock()
	identityLen, inProgressLen := len(st.identity), len(st.inProgress)
	st.mu.Unlock()
	if identityLen != 0 {
		t.Fatalf("expected identity map to be empty after ClearCache, got %d entries", identityLen)
	}
	if inProgressLen != 0 {
		t.Fatalf("expected in-progress map to be empty after ClearCache, got %d entries", inProgressLen)
	}
}
