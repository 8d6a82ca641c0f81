package store

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
)

// shardDir returns the directory a record's files live under: the
// storage root itself, or a subdirectory named by the record's leading
// ShardDepth UUID characters when sharding is enabled.
func (s *Store) shardDir(id string) string {
	if s.cfg.ShardDepth <= 0 || len(id) < s.cfg.ShardDepth {
		return s.cfg.Root
	}
	return filepath.Join(s.cfg.Root, id[:s.cfg.ShardDepth])
}

func (s *Store) dataPath(id string) string {
	return filepath.Join(s.shardDir(id), id+".obj")
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.shardDir(id), id+".metadata")
}

func (s *Store) stubsRoot() string {
	return filepath.Join(s.cfg.Root, "stubs")
}

// classHash names the stub subdirectory for class:
// `stubs/<md5(class)>/`.
func classHash(class string) string {
	sum := md5.Sum([]byte(class))
	return hex.EncodeToString(sum[:])
}

func (s *Store) stubDir(class string) string {
	return filepath.Join(s.stubsRoot(), classHash(class))
}

func (s *Store) stubPath(class, id string) string {
	return filepath.Join(s.stubDir(class), id+".stub")
}

func (s *Store) classNamesPath() string {
	return filepath.Join(s.stubsRoot(), "classnames.json")
}
