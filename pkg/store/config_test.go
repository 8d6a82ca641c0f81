package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silo.yaml")
	body := "lockTimeout: 30s\nshardDepth: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadConfig(path, dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LockTimeout != 30*time.Second {
		t.Fatalf("LockTimeout = %v, want 30s", cfg.LockTimeout)
	}
	if cfg.ShardDepth != 2 {
		t.Fatalf("ShardDepth = %d, want 2", cfg.ShardDepth)
	}
	if cfg.Root != dir {
		t.Fatalf("Root = %q, want %q (unset in the file, should keep the default)", cfg.Root, dir)
	}
	if cfg.MaxNestingDepth != 64 {
		t.Fatalf("MaxNestingDepth = %d, want the default of 64", cfg.MaxNestingDepth)
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), t.TempDir())
	if err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
