package store

import (
	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fsio"
	"github.com/cuemby/silo/pkg/uid"
)

// Delete removes a record's data, metadata, and stub files. With force
// false, deleting a record that doesn't exist is a NotFound error;
// with force true it is a no-op.
func (s *Store) Delete(id string, force bool) error {
	if !uid.Valid(id) {
		return newErr(InvalidUUID, id, nil)
	}
	return s.withExclusive(id, func() error {
		return s.deleteLocked(id, force)
	})
}

func (s *Store) deleteLocked(id string, force bool) error {
	s.bus.Publish(events.DeleteBefore, events.Simple(id))

	exists := fsio.Exists(s.fsys, s.dataPath(id))
	if !exists && !force {
		return newErr(NotFound, id, nil)
	}

	meta, err := s.readMetadataIfExists(id)
	if err != nil {
		return err
	}

	if err := fsio.Delete(s.fsys, s.dataPath(id)); err != nil {
		return newErr(IO, id, err)
	}
	if err := fsio.Delete(s.fsys, s.metaPath(id)); err != nil {
		return newErr(IO, id, err)
	}
	if meta != nil {
		if err := s.removeStub(id, meta.ClassName); err != nil {
			return err
		}
	}

	s.objCache.Evict(id)
	s.metaCache.Evict(id)
	s.bus.Publish(events.CacheEntryRemoved, events.Simple(id))

	s.bus.Publish(events.DeleteAfter, events.Simple(id))
	return nil
}
