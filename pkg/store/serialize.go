package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fields"
	"github.com/cuemby/silo/pkg/graph"
	"github.com/cuemby/silo/pkg/record"
	"github.com/cuemby/silo/pkg/uid"
)

// Store persists value, assigning it a UUID if it doesn't have one
// already, and returns the UUID under which it now lives. An empty
// explicitUUID lets the store
// choose; a non-empty one is used unless the value already carries an
// identity through a set "uuid" field or the store's identity map
// (a uid.Identifiable value always takes it). A zero ttl applies the
// store's configured default to a new record and keeps an existing
// record's expiry. When the serialized data and class are unchanged,
// nothing is written and ttl is not applied.
func (s *Store) Store(value fields.Accessor, explicitUUID string, ttl time.Duration) (string, error) {
	return s.storeNode(value, explicitUUID, ttl)
}

func (s *Store) storeNode(value fields.Accessor, explicitUUID string, ttl time.Duration) (string, error) {
	id, err := s.resolveUUIDForStore(value, explicitUUID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.inProgress[id] {
		s.mu.Unlock()
		return id, nil
	}
	s.inProgress[id] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inProgress, id)
		s.mu.Unlock()
	}()

	var result string
	err = s.withExclusive(id, func() error {
		r, storeErr := s.storeLocked(value, id, ttl)
		result = r
		return storeErr
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (s *Store) storeLocked(value fields.Accessor, id string, ttl time.Duration) (string, error) {
	s.bus.Publish(events.StoreBefore, events.Simple(id))

	var fieldSubset []string
	if hook, ok := value.(fields.Hook); ok {
		fieldSubset = hook.BeforeStore(value)
	}

	names := value.FieldNames()
	sort.Strings(names)
	if len(fieldSubset) > 0 {
		names = intersect(names, fieldSubset)
	}

	reservedName := record.DefaultReservedReferenceName
	for _, n := range names {
		if n == reservedName {
			reservedName = uniqueReservedName(names)
			break
		}
	}

	out := make(map[string]any, len(names))
	for _, name := range names {
		v, initialized := value.FieldValue(name)
		if !initialized {
			continue
		}
		transformed, skip, err := s.transform(v, reservedName, id, 1)
		if err != nil {
			return "", err
		}
		if skip {
			continue
		}
		out[name] = transformed
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", newErr(Serialization, id, err)
	}

	checksum, algo := record.Checksum(data)
	className := fields.ClassNameOf(value)

	prior, err := s.readMetadataIfExists(id)
	if err != nil {
		return "", err
	}

	if prior != nil && prior.Checksum == checksum && prior.ClassName == className {
		s.cacheObject(id, value)
		return id, nil
	}

	meta := &record.Metadata{
		ClassName:             className,
		Version:               1,
		Checksum:              checksum,
		ChecksumAlgorithm:     algo,
		UUID:                  id,
		ReservedReferenceName: reservedName,
		TimestampCreation:     nowUnix(),
	}
	if prior != nil {
		meta.TimestampCreation = prior.TimestampCreation
		meta.Version = prior.Version + 1
		meta.TimestampExpiresAt = prior.TimestampExpiresAt
	}
	switch {
	case ttl > 0:
		meta.SetTTL(ttl, time.Now())
	case prior == nil && s.cfg.DefaultTTL > 0:
		meta.SetTTL(s.cfg.DefaultTTL, time.Now())
	}

	if err := s.writeData(id, data); err != nil {
		return "", err
	}
	if err := s.writeMetadata(id, meta); err != nil {
		return "", err
	}
	if prior == nil || prior.ClassName != className {
		if err := s.refreshStub(id, prior, className); err != nil {
			return "", err
		}
	}

	s.cacheObject(id, value)
	s.cacheMetadata(id, meta)

	s.bus.Publish(events.ObjectSaved, events.Simple(id, "class", className))
	s.bus.Publish(events.MetadataSaved, events.Simple(id))
	s.bus.Publish(events.StoreAfter, events.Simple(id))
	return id, nil
}

// resolveUUIDForStore assigns value its identity for this store call,
// checked in this order: the Identifiable capability,
// then a conventional unset "uuid" field, then an out-of-band
// process-local identity map keyed on the value itself.
func (s *Store) resolveUUIDForStore(value fields.Accessor, explicit string) (string, error) {
	if ident, ok := value.(uid.Identifiable); ok {
		if explicit != "" {
			ident.SetUUID(explicit)
			return explicit, nil
		}
		if existing := ident.GetUUID(); existing != "" {
			return existing, nil
		}
		id := string(uid.Unique(s))
		ident.SetUUID(id)
		return id, nil
	}

	for _, name := range value.FieldNames() {
		if name != "uuid" {
			continue
		}
		if v, initialized := value.FieldValue(name); initialized {
			if str, ok := v.(string); ok && str != "" {
				return str, nil
			}
			break
		}
		id := explicit
		if id == "" {
			id = string(uid.Unique(s))
		}
		if err := value.SetFieldValue(name, id); err != nil {
			return "", newErr(Serialization, id, err)
		}
		return id, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.identity[value]; ok {
		return id, nil
	}
	id := explicit
	if id == "" {
		id = string(uid.Unique(s))
	}
	s.identity[value] = id
	return id, nil
}

// transform walks an arbitrary field or container value, recursing into
// nested composites, maps, and slices. It returns
// (result, skip, err): skip means the value is a process-external
// resource or callable that gets omitted from the serialized output
// rather than aborting the whole store, with a warning logged at the
// call site that detected it.
func (s *Store) transform(v any, reservedName, rootID string, depth int) (any, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	if depth > s.cfg.MaxNestingDepth {
		return nil, false, newErr(MaxNestingExceeded, rootID, nil)
	}

	if p, ok := v.(*graph.Proxy); ok {
		if !p.Loaded() {
			return graph.Marker(reservedName, p.UUID()), false, nil
		}
		loaded, err := p.Get()
		if err != nil {
			return nil, false, newErr(DanglingReference, rootID, err)
		}
		return s.transform(loaded, reservedName, rootID, depth)
	}

	if acc, ok := v.(fields.Accessor); ok {
		return s.transformComposite(acc, reservedName, rootID, depth)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v, false, nil

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false, nil
		}
		return s.transform(rv.Elem().Interface(), reservedName, rootID, depth)

	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			t, skip, err := s.transform(rv.Index(i).Interface(), reservedName, rootID, depth+1)
			if err != nil {
				return nil, false, err
			}
			if skip {
				out[i] = nil
				continue
			}
			out[i] = t
		}
		return out, false, nil

	case reflect.Map:
		keys := rv.MapKeys()
		strKeys := make([]string, 0, len(keys))
		byKey := make(map[string]reflect.Value, len(keys))
		for _, k := range keys {
			ks, err := mapKeyString(k)
			if err != nil {
				return nil, false, newErr(UnsupportedKey, rootID, err)
			}
			strKeys = append(strKeys, ks)
			byKey[ks] = k
		}
		sort.Strings(strKeys)
		out := make(map[string]any, len(strKeys))
		for _, ks := range strKeys {
			t, skip, err := s.transform(rv.MapIndex(byKey[ks]).Interface(), reservedName, rootID, depth+1)
			if err != nil {
				return nil, false, err
			}
			if skip {
				continue
			}
			out[ks] = t
		}
		return out, false, nil

	case reflect.Func:
		s.logger.warn("omitting unsupported callable field", rootID, fmt.Errorf("%T", v))
		return nil, true, nil

	case reflect.Chan, reflect.UnsafePointer:
		s.logger.warn("omitting unsupported resource field", rootID, fmt.Errorf("%T", v))
		return nil, true, nil

	default:
		return v, false, nil
	}
}

func mapKeyString(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", fmt.Errorf("unsupported map key kind %s", k.Kind())
	}
}

// transformComposite applies the child-write policy to an
// embedded composite and returns its reference marker.
func (s *Store) transformComposite(acc fields.Accessor, reservedName, rootID string, depth int) (any, bool, error) {
	id, err := s.resolveUUIDForStore(acc, "")
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	already := s.inProgress[id]
	s.mu.Unlock()
	if already {
		return graph.Marker(reservedName, id), false, nil
	}

	switch s.cfg.ChildWrite {
	case Never:
		return graph.Marker(reservedName, id), false, nil
	case IfAbsent:
		if s.Exists(id) {
			return graph.Marker(reservedName, id), false, nil
		}
	}

	if _, err := s.storeNode(acc, id, 0); err != nil {
		return nil, false, err
	}
	return graph.Marker(reservedName, id), false, nil
}

func intersect(names, subset []string) []string {
	want := make(map[string]bool, len(subset))
	for _, n := range subset {
		want[n] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if want[n] {
			out = append(out, n)
		}
	}
	return out
}

// uniqueReservedName picks a reference-marker field name that collides
// with none of the node's own fields; the reserved name is
// configurable per record specifically to dodge this collision.
func uniqueReservedName(fieldNames []string) string {
	taken := make(map[string]bool, len(fieldNames))
	for _, n := range fieldNames {
		taken[n] = true
	}
	candidate := record.DefaultReservedReferenceName
	for i := 0; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", record.DefaultReservedReferenceName, i)
	}
	return candidate
}
