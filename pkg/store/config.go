package store

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ChildWritePolicy controls whether an embedded composite encountered
// during serialization is itself recursed into and written.
type ChildWritePolicy int

const (
	// Always recurses into every embedded composite and writes it
	// (creating or updating its record) unconditionally.
	Always ChildWritePolicy = iota
	// IfAbsent emits only the child's reference marker when the child's
	// record already exists on disk, without writing it or recursing
	// into its own fields; an absent child is stored as under Always.
	IfAbsent
	// Never emits the child's reference marker without recursing into
	// it at all: do not touch child storage unless the operator
	// explicitly re-stores the child, rather than computing and
	// comparing a checksum it will not act on.
	Never
)

// Config is the flat, programmatically-constructed or YAML-loaded
// configuration for one Store.
type Config struct {
	// Root is the storage root directory.
	Root string `yaml:"root"`
	// LockTimeout bounds how long Acquire waits for a lock.
	LockTimeout time.Duration `yaml:"lockTimeout"`
	// MaxNestingDepth bounds recursive transform depth.
	MaxNestingDepth int `yaml:"maxNestingDepth"`
	// DefaultTTL is applied when a new record is first written by a
	// Store call that doesn't specify a ttl of its own. Zero means
	// records never expire by default.
	DefaultTTL time.Duration `yaml:"defaultTTL"`
	// ChildWrite selects the recursion policy for embedded composites.
	ChildWrite ChildWritePolicy `yaml:"childWrite"`
	// ClassRenameMap maps persisted class names to currently known
	// replacement names, applied before alias fabrication. Takes
	// precedence over fabricating a new alias for an unknown class.
	ClassRenameMap map[string]string `yaml:"classRenameMap"`
	// ShardDepth is the number of leading UUID characters used to
	// nest .obj/.metadata files into prefix subdirectories. Zero
	// disables sharding.
	ShardDepth int `yaml:"shardDepth"`
	// ObjectCacheSize / MetadataCacheSize bound the two caches
	// (component 6). Zero selects a sane default.
	ObjectCacheSize   int `yaml:"objectCacheSize"`
	MetadataCacheSize int `yaml:"metadataCacheSize"`
	// CacheTTL bounds how long cache entries survive regardless of
	// access pattern.
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// DefaultConfig returns a Config with sane defaults: a 10s lock
// timeout and a generously high nesting-depth guard.
func DefaultConfig(root string) Config {
	return Config{
		Root:              root,
		LockTimeout:       10 * time.Second,
		MaxNestingDepth:   64,
		ChildWrite:        Always,
		ClassRenameMap:    map[string]string{},
		ObjectCacheSize:   4096,
		MetadataCacheSize: 4096,
		CacheTTL:          10 * time.Minute,
	}
}

// rawConfig mirrors Config for YAML decoding, with every field a
// pointer (absent vs. zero-valued) and durations as human-readable
// strings ("30s") rather than raw nanosecond integers.
type rawConfig struct {
	Root              *string           `yaml:"root"`
	LockTimeout       *string           `yaml:"lockTimeout"`
	MaxNestingDepth   *int              `yaml:"maxNestingDepth"`
	DefaultTTL        *string           `yaml:"defaultTTL"`
	ChildWrite        *ChildWritePolicy `yaml:"childWrite"`
	ClassRenameMap    map[string]string `yaml:"classRenameMap"`
	ShardDepth        *int              `yaml:"shardDepth"`
	ObjectCacheSize   *int              `yaml:"objectCacheSize"`
	MetadataCacheSize *int              `yaml:"metadataCacheSize"`
	CacheTTL          *string           `yaml:"cacheTTL"`
}

// LoadConfig reads a YAML config file and overlays it onto
// DefaultConfig(root), so a file only needs to set the fields it wants
// to override.
func LoadConfig(path, root string) (Config, error) {
	cfg := DefaultConfig(root)
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, newErr(IO, "", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, newErr(Serialization, "", err)
	}

	if raw.Root != nil {
		cfg.Root = *raw.Root
	}
	if raw.LockTimeout != nil {
		if cfg.LockTimeout, err = time.ParseDuration(*raw.LockTimeout); err != nil {
			return cfg, newErr(Serialization, "", err)
		}
	}
	if raw.MaxNestingDepth != nil {
		cfg.MaxNestingDepth = *raw.MaxNestingDepth
	}
	if raw.DefaultTTL != nil {
		if cfg.DefaultTTL, err = time.ParseDuration(*raw.DefaultTTL); err != nil {
			return cfg, newErr(Serialization, "", err)
		}
	}
	if raw.ChildWrite != nil {
		cfg.ChildWrite = *raw.ChildWrite
	}
	if raw.ClassRenameMap != nil {
		cfg.ClassRenameMap = raw.ClassRenameMap
	}
	if raw.ShardDepth != nil {
		cfg.ShardDepth = *raw.ShardDepth
	}
	if raw.ObjectCacheSize != nil {
		cfg.ObjectCacheSize = *raw.ObjectCacheSize
	}
	if raw.MetadataCacheSize != nil {
		cfg.MetadataCacheSize = *raw.MetadataCacheSize
	}
	if raw.CacheTTL != nil {
		if cfg.CacheTTL, err = time.ParseDuration(*raw.CacheTTL); err != nil {
			return cfg, newErr(Serialization, "", err)
		}
	}
	return cfg, nil
}
