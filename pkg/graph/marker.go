// Package graph implements the value-level primitives shared by the
// serializer and decoder: the reference-marker encoding that stands in
// for an embedded composite on disk, and the lazy proxy that stands in
// for one in memory.
package graph

import "github.com/cuemby/silo/pkg/uid"

// Marker builds the on-disk reference marker: a one-field JSON object
// whose key is the reserved reference name in effect for the enclosing
// record and whose value is the referenced UUID.
func Marker(reservedName, targetUUID string) map[string]any {
	return map[string]any{reservedName: targetUUID}
}

// AsMarker reports whether v decodes to a reference marker under
// reservedName, returning the target UUID it names. The value must be
// a valid UUID, so a user field that happens to be a single-entry
// map[string]any{reservedName: "some string"} is not misread as a
// reference.
func AsMarker(v any, reservedName string) (targetUUID string, ok bool) {
	m, isMap := v.(map[string]any)
	if !isMap || len(m) != 1 {
		return "", false
	}
	raw, has := m[reservedName]
	if !has {
		return "", false
	}
	s, isString := raw.(string)
	if !isString || !uid.Valid(s) {
		return "", false
	}
	return s, true
}
