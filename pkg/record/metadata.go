// Package record defines the metadata document stored alongside every
// record's data file: class name, creation time, version, checksum,
// optional expiry, and the reserved reference-marker name in effect
// for that record.
package record

import (
	"encoding/hex"
	"encoding/json"
	"hash/crc32"
	"time"
)

// DefaultReservedReferenceName is the field name used in a data file to
// signal "this sub-object is a reference", absent a per-record
// override.
const DefaultReservedReferenceName = "__reference"

// ChecksumAlgorithm names the digest used to compute Metadata.Checksum.
type ChecksumAlgorithm string

const (
	// CRC32 is this implementation's chosen default: the algorithm is
	// ambiguous in the original source, so we record CRC32 as the
	// policy and always write checksumAlgorithm so future readers never
	// have to guess.
	CRC32 ChecksumAlgorithm = "crc32"
)

// Metadata is the small JSON document persisted at
// <root>/<uuid>.metadata.
type Metadata struct {
	ClassName             string            `json:"className"`
	TimestampCreation     float64           `json:"timestampCreation"`
	Version               int               `json:"version"`
	Checksum              string            `json:"checksum"`
	ChecksumAlgorithm     ChecksumAlgorithm `json:"checksumAlgorithm,omitempty"`
	TimestampExpiresAt    *float64          `json:"timestampExpiresAt"`
	UUID                  string            `json:"uuid"`
	ReservedReferenceName string            `json:"reservedReferenceName"`
}

// Checksum computes the default digest (CRC32) over the exact bytes that
// will be written as a data file, and returns it as a lowercase hex
// string alongside the algorithm tag recorded for it.
func Checksum(data []byte) (sum string, algo ChecksumAlgorithm) {
	c := crc32.ChecksumIEEE(data)
	buf := make([]byte, 4)
	buf[0] = byte(c >> 24)
	buf[1] = byte(c >> 16)
	buf[2] = byte(c >> 8)
	buf[3] = byte(c)
	return hex.EncodeToString(buf), CRC32
}

// VerifyChecksum recomputes the digest named by algo (falling back to
// CRC32 when algo is empty, tolerating metadata written before the
// algorithm field existed) and compares it against want.
func VerifyChecksum(data []byte, want string, algo ChecksumAlgorithm) bool {
	if algo == "" {
		algo = CRC32
	}
	switch algo {
	case CRC32:
		got, _ := Checksum(data)
		return got == want
	default:
		got, _ := Checksum(data)
		return got == want
	}
}

// Expired reports whether the metadata's expiry has passed as of now. A
// nil TimestampExpiresAt means "never expires".
func (m *Metadata) Expired(now time.Time) bool {
	if m.TimestampExpiresAt == nil {
		return false
	}
	return *m.TimestampExpiresAt-float64(now.UnixNano())/1e9 <= 0
}

// SetExpiresAt sets the expiry to an absolute time, or clears it when at
// is nil.
func (m *Metadata) SetExpiresAt(at *time.Time) {
	if at == nil {
		m.TimestampExpiresAt = nil
		return
	}
	v := float64(at.UnixNano()) / 1e9
	m.TimestampExpiresAt = &v
}

// SetTTL sets the expiry to now+ttl. A non-positive ttl clears expiry
// (never expires).
func (m *Metadata) SetTTL(ttl time.Duration, now time.Time) {
	if ttl <= 0 {
		m.TimestampExpiresAt = nil
		return
	}
	at := now.Add(ttl)
	m.SetExpiresAt(&at)
}

// Encode marshals the metadata to its on-disk JSON form.
func (m *Metadata) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a metadata JSON document.
func Decode(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
