package store

import (
	"time"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/uid"
)

// SetExpiration updates a record's expiry without touching its data
// file: a ttl of zero clears expiry entirely.
func (s *Store) SetExpiration(id string, ttl time.Duration) error {
	if !uid.Valid(id) {
		return newErr(InvalidUUID, id, nil)
	}
	return s.withExclusive(id, func() error {
		meta, err := s.readMetadataIfExists(id)
		if err != nil {
			return err
		}
		if meta == nil {
			return newErr(MetadataNotFound, id, nil)
		}
		meta.SetTTL(ttl, time.Now())
		meta.Version++
		if err := s.writeMetadata(id, meta); err != nil {
			return err
		}
		s.cacheMetadata(id, meta)
		s.bus.Publish(events.LifetimeChanged, events.Simple(id))
		return nil
	})
}

// GetExpiration returns a record's absolute expiry time, or nil if it
// never expires.
func (s *Store) GetExpiration(id string) (*time.Time, error) {
	meta, err := s.LoadMetadata(id)
	if err != nil {
		return nil, err
	}
	if meta.TimestampExpiresAt == nil {
		return nil, nil
	}
	t := time.Unix(0, int64(*meta.TimestampExpiresAt*1e9))
	return &t, nil
}

// GetClassName returns a record's persisted class name without
// decoding its data file.
func (s *Store) GetClassName(id string) (string, error) {
	meta, err := s.LoadMetadata(id)
	if err != nil {
		return "", err
	}
	return meta.ClassName, nil
}
