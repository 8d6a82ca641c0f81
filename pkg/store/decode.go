package store

import (
	"encoding/json"
	"time"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
	"github.com/cuemby/silo/pkg/fsio"
	"github.com/cuemby/silo/pkg/graph"
	"github.com/cuemby/silo/pkg/record"
	"github.com/cuemby/silo/pkg/uid"
)

// Load resolves id to its reconstructed object, satisfying
// graph.Loader so a *Store can be handed directly to graph.New as the
// loader every lazy proxy calls back into. A record past its expiry
// loads as (nil, nil) rather than an error: expired records read back
// as absent.
func (s *Store) Load(id string) (any, error) {
	return s.loadSubset(id, nil)
}

// loadSubset is Load's general form: a nil subset loads and decodes
// every field, going through the object cache exactly as Load always
// has (a cached object is returned only while its record's metadata
// says it has not expired); a non-nil subset decodes only the named
// fields and bypasses the cache, since the result is not the canonical
// full object.
func (s *Store) loadSubset(id string, subset []string) (any, error) {
	if !uid.Valid(id) {
		return nil, newErr(InvalidUUID, id, nil)
	}

	if subset == nil {
		if cached, ok := s.objCache.Get(id); ok {
			if meta, err := s.readMetadataIfExists(id); err == nil && meta != nil && !meta.Expired(time.Now()) {
				s.bus.Publish(events.CacheHit, events.Simple(id))
				return cached, nil
			}
		}
	}

	var result any
	err := s.withShared(id, func() error {
		r, loadErr := s.loadLocked(id, subset)
		result = r
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadLocked(id string, subset []string) (any, error) {
	s.bus.Publish(events.LoadBefore, events.Simple(id))

	meta, err := s.readMetadataIfExists(id)
	if err != nil {
		s.enableSafeModeOnCorruption(id, err)
		return nil, err
	}
	if meta == nil {
		if fsio.Exists(s.fsys, s.dataPath(id)) {
			mErr := newErr(MetadataNotFound, id, nil)
			s.enableSafeModeOnCorruption(id, mErr)
			return nil, mErr
		}
		return nil, newErr(NotFound, id, nil)
	}

	if meta.Expired(time.Now()) {
		s.bus.Publish(events.ObjectExpired, events.Simple(id))
		return nil, nil
	}

	data, err := s.readData(id)
	if err != nil {
		return nil, err
	}

	if !record.VerifyChecksum(data, meta.Checksum, meta.ChecksumAlgorithm) {
		cerr := newErr(ChecksumMismatch, id, nil)
		s.enableSafeModeOnCorruption(id, cerr)
		s.bus.Publish(events.FailureChecksum, events.Simple(id))
		return nil, cerr
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		ferr := newErr(InvalidFormat, id, err)
		s.enableSafeModeOnCorruption(id, ferr)
		s.bus.Publish(events.FailureInvalidData, events.Simple(id))
		return nil, ferr
	}

	obj, err := s.reconstruct(id, meta, filterFields(raw, subset))
	if err != nil {
		return nil, err
	}

	if subset == nil {
		s.cacheObject(id, obj)
		s.cacheMetadata(id, meta)
	}
	s.bus.Publish(events.LoadAfter, events.Simple(id))
	return obj, nil
}

// filterFields restricts raw to the named keys when subset is
// non-nil, leaving raw untouched otherwise.
func filterFields(raw map[string]any, subset []string) map[string]any {
	if subset == nil {
		return raw
	}
	out := make(map[string]any, len(subset))
	for _, name := range subset {
		if v, ok := raw[name]; ok {
			out[name] = v
		}
	}
	return out
}

// reconstruct resolves the persisted class name, instantiates a fresh
// value through the registry without running any constructor, assigns
// every field from the decoded document (building lazy proxies for
// reference markers per the admissibility rule), and runs AfterLoad.
func (s *Store) reconstruct(id string, meta *record.Metadata, raw map[string]any) (fields.Accessor, error) {
	res := s.registry.resolve(meta.ClassName, s.cfg.ClassRenameMap)
	if res.fabricated {
		s.bus.Publish(events.ClassAliasCreated, events.Simple(id, "class", meta.ClassName))
	}

	obj := res.factory()
	if identObj, ok := obj.(uid.Identifiable); ok {
		identObj.SetUUID(id)
	}

	reservedName := meta.ReservedReferenceName
	if reservedName == "" {
		reservedName = record.DefaultReservedReferenceName
	}

	for name, v := range raw {
		decoded, err := s.decodeValue(obj, id, v, reservedName, []graph.PathSegment{graph.FieldSeg(name)}, obj.FieldKind(name))
		if err != nil {
			return nil, err
		}
		if err := obj.SetFieldValue(name, decoded); err != nil {
			return nil, newErr(Serialization, id, err)
		}
	}

	if hook, ok := obj.(fields.Hook); ok {
		hook.AfterLoad(obj)
	}
	return obj, nil
}

// decodeValue turns one decoded JSON value into the in-memory shape a
// field or container cell should hold: a lazy proxy for a reference
// marker under a Proxyable/Container field, an eagerly resolved value
// for a Composite field (the admissibility rule's forced eager load),
// or a recursively decoded container/scalar otherwise.
func (s *Store) decodeValue(root fields.Accessor, rootID string, v any, reservedName string, path []graph.PathSegment, kind fields.Kind) (any, error) {
	if targetUUID, ok := graph.AsMarker(v, reservedName); ok {
		p := graph.New(targetUUID, s, root, path)
		if kind == fields.Composite {
			real, err := p.Get()
			if err != nil {
				return nil, err
			}
			return real, nil
		}
		return p, nil
	}

	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			childPath := appendPath(path, graph.KeySeg(k))
			d, err := s.decodeValue(root, rootID, vv, reservedName, childPath, fields.Container)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil

	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			childPath := appendPath(path, graph.KeySeg(i))
			d, err := s.decodeValue(root, rootID, vv, reservedName, childPath, fields.Container)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil

	default:
		if kind == fields.Scalar {
			if typed, ok := root.(fields.Typed); ok {
				if sample := typed.FieldSample(topFieldName(path)); sample != nil {
					coerced, err := fields.CoerceTo(v, sample)
					if err != nil {
						return nil, newErr(TypeConversion, rootID, err)
					}
					return coerced, nil
				}
			}
		}
		return v, nil
	}
}

func appendPath(path []graph.PathSegment, seg graph.PathSegment) []graph.PathSegment {
	out := make([]graph.PathSegment, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func topFieldName(path []graph.PathSegment) string {
	if len(path) == 0 {
		return ""
	}
	return path[0].Field
}
