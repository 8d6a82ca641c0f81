package store

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fsio"
	"github.com/cuemby/silo/pkg/record"
	"github.com/cuemby/silo/pkg/uid"
)

func (s *Store) writeData(id string, data []byte) error {
	if err := fsio.AtomicWrite(s.fsys, s.dataPath(id), data, true); err != nil {
		return newErr(IO, id, err)
	}
	return nil
}

func (s *Store) readData(id string) ([]byte, error) {
	data, err := fsio.Read(s.fsys, s.dataPath(id))
	if err != nil {
		return nil, newErr(IO, id, err)
	}
	return data, nil
}

// ReadRaw returns a record's data file bytes as written on disk, without
// decoding or checksum verification, for use by tools like the CLI's
// `check` command that need to verify a checksum themselves.
func (s *Store) ReadRaw(id string) ([]byte, error) {
	if !uid.Valid(id) {
		return nil, newErr(InvalidUUID, id, nil)
	}
	return s.readData(id)
}

func (s *Store) writeMetadata(id string, m *record.Metadata) error {
	data, err := m.Encode()
	if err != nil {
		return newErr(Serialization, id, err)
	}
	if err := fsio.AtomicWrite(s.fsys, s.metaPath(id), data, true); err != nil {
		return newErr(IO, id, err)
	}
	return nil
}

// readMetadataIfExists returns the record's metadata, or (nil, nil) if
// no metadata file exists yet — the "prior version" lookup storeNode
// needs before deciding whether anything changed.
func (s *Store) readMetadataIfExists(id string) (*record.Metadata, error) {
	if cached, ok := s.metaCache.Get(id); ok {
		return cached, nil
	}
	if !fsio.Exists(s.fsys, s.metaPath(id)) {
		return nil, nil
	}
	data, err := fsio.Read(s.fsys, s.metaPath(id))
	if err != nil {
		return nil, newErr(IO, id, err)
	}
	m, err := record.Decode(data)
	if err != nil {
		return nil, newErr(InvalidFormat, id, err)
	}
	s.metaCache.Put(id, m)
	return m, nil
}

// LoadMetadata returns a record's metadata document without decoding
// its data file.
func (s *Store) LoadMetadata(id string) (*record.Metadata, error) {
	if !uid.Valid(id) {
		return nil, newErr(InvalidUUID, id, nil)
	}
	m, err := s.readMetadataIfExists(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, newErr(MetadataNotFound, id, nil)
	}
	return m, nil
}

func (s *Store) cacheMetadata(id string, m *record.Metadata) {
	s.metaCache.Put(id, m)
}

// refreshStub removes the prior class's stub entry (if the class
// changed or this is the first write) and creates the current one,
// maintaining the stubs/<md5(class)>/<uuid>.stub side-index that List
// and Count iterate without touching data files.
func (s *Store) refreshStub(id string, prior *record.Metadata, newClass string) error {
	if prior != nil && prior.ClassName != "" && prior.ClassName != newClass {
		oldPath := s.stubPath(prior.ClassName, id)
		if err := fsio.Delete(s.fsys, oldPath); err != nil {
			return newErr(IO, id, err)
		}
		s.bus.Publish(events.StubRemoved, events.Simple(id, "class", prior.ClassName))
	}

	dir := s.stubDir(newClass)
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return newErr(IO, id, err)
	}
	f, err := s.fsys.OpenFile(s.stubPath(newClass, id), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return newErr(IO, id, err)
	}
	if closeErr := f.Close(); closeErr != nil {
		return newErr(IO, id, closeErr)
	}
	s.bus.Publish(events.StubCreated, events.Simple(id, "class", newClass))
	s.trackClassName(newClass)
	return nil
}

func (s *Store) removeStub(id string, className string) error {
	if className == "" {
		return nil
	}
	if err := fsio.Delete(s.fsys, s.stubPath(className, id)); err != nil {
		return newErr(IO, id, err)
	}
	s.bus.Publish(events.StubRemoved, events.Simple(id, "class", className))
	return nil
}

// trackClassName maintains stubs/classnames.json, a small side-index of
// every class name ever seen, so `list` and the CLI's `stats` command
// can enumerate classes without walking every stub directory.
func (s *Store) trackClassName(class string) {
	names, _ := s.readClassNames()
	for _, n := range names {
		if n == class {
			return
		}
	}
	names = append(names, class)
	sort.Strings(names)
	data, err := json.Marshal(names)
	if err != nil {
		return
	}
	_ = fsio.AtomicWrite(s.fsys, s.classNamesPath(), data, true)
}

func (s *Store) readClassNames() ([]string, error) {
	data, err := fsio.Read(s.fsys, s.classNamesPath())
	if err != nil {
		return nil, nil
	}
	var names []string
	if jsonErr := json.Unmarshal(data, &names); jsonErr != nil {
		return nil, jsonErr
	}
	return names, nil
}
