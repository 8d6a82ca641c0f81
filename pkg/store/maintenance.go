package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/silo/pkg/fsio"
)

// RebuildStubs walks every .obj file under the storage root (and its
// shard subdirectories, if any), reads each record's metadata, and
// regenerates the stubs
// side-index from scratch, discarding whatever was there before. This
// is the CLI's `maintenance rebuild-stubs` operation, for recovering
// from a side-index that drifted out of sync with the data files it
// indexes.
func (s *Store) RebuildStubs() (int, error) {
	if err := os.RemoveAll(s.stubsRoot()); err != nil {
		return 0, newErr(IO, "", err)
	}

	located, err := s.locateAllRecords()
	if err != nil {
		return 0, err
	}

	rebuilt := 0
	for id := range located {
		meta, err := s.readMetadataIfExists(id)
		if err != nil || meta == nil {
			continue
		}
		if err := s.refreshStub(id, nil, meta.ClassName); err != nil {
			return rebuilt, err
		}
		rebuilt++
	}
	return rebuilt, nil
}

// RebuildShards relocates every record whose data/metadata files
// currently live somewhere other than where the store's configured
// ShardDepth says they belong: sharded into prefix subdirectories when
// ShardDepth > 0, flattened back to the storage root when it is zero.
// It is the CLI's `maintenance rebuild-shards` operation.
func (s *Store) RebuildShards() (int, error) {
	located, err := s.locateAllRecords()
	if err != nil {
		return 0, err
	}

	moved := 0
	for id, currentDir := range located {
		wantDir := s.shardDir(id)
		if currentDir == wantDir {
			continue
		}
		if err := s.relocate(id, currentDir, wantDir); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (s *Store) relocate(id, fromDir, toDir string) error {
	return s.withExclusive(id, func() error {
		data, err := fsio.Read(s.fsys, filepath.Join(fromDir, id+".obj"))
		if err != nil {
			return newErr(IO, id, err)
		}
		meta, err := fsio.Read(s.fsys, filepath.Join(fromDir, id+".metadata"))
		if err != nil {
			return newErr(IO, id, err)
		}

		if err := fsio.AtomicWrite(s.fsys, filepath.Join(toDir, id+".obj"), data, true); err != nil {
			return newErr(IO, id, err)
		}
		if err := fsio.AtomicWrite(s.fsys, filepath.Join(toDir, id+".metadata"), meta, true); err != nil {
			return newErr(IO, id, err)
		}

		if err := fsio.Delete(s.fsys, filepath.Join(fromDir, id+".obj")); err != nil {
			return newErr(IO, id, err)
		}
		if err := fsio.Delete(s.fsys, filepath.Join(fromDir, id+".metadata")); err != nil {
			return newErr(IO, id, err)
		}
		s.objCache.Evict(id)
		s.metaCache.Evict(id)
		return nil
	})
}

// locateAllRecords walks the storage root one level deep (flat layout
// plus any existing shard subdirectories) and returns each record's
// UUID mapped to the directory its .obj file currently lives in.
func (s *Store) locateAllRecords() (map[string]string, error) {
	located := map[string]string{}
	dirs := []string{s.cfg.Root}

	top, err := s.fsys.ReadDir(s.cfg.Root)
	if err != nil {
		return nil, newErr(IO, "", err)
	}
	for _, e := range top {
		if e.IsDir() && e.Name() != "stubs" {
			dirs = append(dirs, filepath.Join(s.cfg.Root, e.Name()))
		}
	}

	for _, dir := range dirs {
		entries, err := s.fsys.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".obj") {
				continue
			}
			located[strings.TrimSuffix(e.Name(), ".obj")] = dir
		}
	}
	return located, nil
}
