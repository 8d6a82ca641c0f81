package store

import (
	"sort"
	"strings"

	"github.com/cuemby/silo/pkg/record"
)

// List returns every UUID currently stored under class, by walking the
// stub side-index rather than every data file. An empty class lists
// every record across every known class.
func (s *Store) List(class string) ([]string, error) {
	if class == "" {
		return s.listAllClasses()
	}
	return s.listClass(class)
}

func (s *Store) listClass(class string) ([]string, error) {
	entries, err := s.fsys.ReadDir(s.stubDir(class))
	if err != nil {
		return nil, nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := stubNameToUUID(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// listAllClasses unions listClass over every class name this store has
// ever recorded a stub for, rather than walking every data file.
func (s *Store) listAllClasses() ([]string, error) {
	classes, err := s.ClassNames()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, class := range classes {
		classIDs, err := s.listClass(class)
		if err != nil {
			return nil, err
		}
		ids = append(ids, classIDs...)
	}
	sort.Strings(ids)
	return ids, nil
}

// ClassNames returns every class name this store has ever recorded a
// stub for, used by the CLI's `stats` command and by List when no
// class is given.
func (s *Store) ClassNames() ([]string, error) {
	return s.readClassNames()
}

// Count returns the number of records stored under class, or across
// every class when class is empty.
func (s *Store) Count(class string) (int, error) {
	ids, err := s.List(class)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Record is the read-only view Match hands its predicate: a UUID, its
// decoded metadata, and the decoded object itself (limited to Subset's
// fields when Subset was requested).
type Record struct {
	UUID     string
	Metadata *record.Metadata
	Object   any
}

// Match returns every UUID, optionally scoped to class, whose decoded
// object satisfies predicate. limit caps the number of matches
// returned (zero means unlimited); subset, when non-empty, limits
// which fields are decoded before the object is handed to predicate. A
// load error for one candidate is logged and that candidate is
// skipped rather than aborting the whole match.
func (s *Store) Match(predicate func(*Record) bool, class string, limit int, subset []string) ([]string, error) {
	ids, err := s.List(class)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		meta, err := s.readMetadataIfExists(id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			continue
		}
		obj, err := s.loadSubset(id, subset)
		if err != nil {
			s.logger.warn("match: skipping record that failed to load", id, err)
			continue
		}
		if obj == nil {
			continue
		}
		if predicate(&Record{UUID: id, Metadata: meta, Object: obj}) {
			out = append(out, id)
		}
	}
	return out, nil
}

func stubNameToUUID(name string) (string, bool) {
	if !strings.HasSuffix(name, ".stub") {
		return "", false
	}
	return strings.TrimSuffix(name, ".stub"), true
}
