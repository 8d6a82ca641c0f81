package store

import (
	"os"
	"testing"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
)

func TestRebuildStubsRecoversDroppedIndex(t *testing.T) {
	st, reg := openTestStore(t)
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })

	n := newNode("Widget")
	n.SetFieldValue("name", "indexed")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := os.RemoveAll(st.stubsRoot()); err != nil {
		t.Fatalf("clearing stubs: %v", err)
	}
	if ids, _ := st.List("Widget"); len(ids) != 0 {
		t.Fatalf("expected the stub index to be empty after clearing it, got %v", ids)
	}

	rebuilt, err := st.RebuildStubs()
	if err != nil {
		t.Fatalf("RebuildStubs: %v", err)
	}
	if rebuilt != 1 {
		t.Fatalf("RebuildStubs rebuilt %d records, want 1", rebuilt)
	}

	ids, err := st.List("Widget")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("List after rebuild = %v, want [%s]", ids, id)
	}
}

func TestRebuildShardsMovesRecordsToConfiguredDepth(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry()
	reg.Register("Widget", func() fields.Accessor { return newNode("Widget") })
	cfg := DefaultConfig(dir)
	st, err := New(cfg, reg, events.NewBus())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n := newNode("Widget")
	n.SetFieldValue("name", "flat")
	id, err := st.Store(n, "", 0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Reopen with sharding enabled; the record still lives at the flat
	// root path until RebuildShards relocates it.
	cfg.ShardDepth = 2
	sharded, err := New(cfg, reg, events.NewBus())
	if err != nil {
		t.Fatalf("New (sharded): %v", err)
	}

	moved, err := sharded.RebuildShards()
	if err != nil {
		t.Fatalf("RebuildShards: %v", err)
	}
	if moved != 1 {
		t.Fatalf("RebuildShards moved %d records, want 1", moved)
	}

	loaded, err := sharded.Load(id)
	if err != nil {
		t.Fatalf("Load after rebuild-shards: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected the relocated record to still load")
	}
}
