// Package uid generates and validates the 36-character identifiers that
// name every record in the store, and defines the capability a value can
// implement to carry its own identity across repeated stores.
package uid

import (
	"github.com/google/uuid"
)

// ID is a validated, canonical 36-character UUID string.
type ID string

// Identifiable is the capability a composite may implement to carry its
// own identity. When present, Store assigns the chosen ID during store so
// that later calls stay idempotent on identity.
type Identifiable interface {
	GetUUID() string
	SetUUID(id string)
}

// New generates a version-4 UUID.
func New() ID {
	return ID(uuid.New().String())
}

// Valid reports whether s is a canonical 36-character UUID with hyphens in
// the expected positions. This is the boundary-crossing check run on
// every UUID entering or leaving the store.
func Valid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Exister is satisfied by anything that can tell whether a UUID is
// already in use, so that Unique can avoid collisions when minting a
// fresh identifier for a value that has none yet.
type Exister interface {
	Exists(id string) bool
}

// Unique generates version-4 UUIDs until one does not collide with an
// existing record.
func Unique(store Exister) ID {
	for {
		candidate := New()
		if !store.Exists(string(candidate)) {
			return candidate
		}
	}
}
