// Package util contains the small value types shared by every bridge
// package: 32-byte hashes, chain/lane tags and account ids.
package util

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Hash256Size is the length in bytes of a [Hash256].
const Hash256Size = 32

// Hash256 is a 32-byte hash: a state root, a header hash or a derived
// account id, depending on context.
type Hash256 [Hash256Size]byte

// Equals reports whether h and other have the same bytes.
func (h Hash256) Equals(other Hash256) bool {
	return h == other
}

// IsZero reports whether h is the all-zero hash.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// BytesBE returns the big-endian byte representation of h.
func (h Hash256) BytesBE() []byte {
	b := make([]byte, Hash256Size)
	copy(b, h[:])
	return b
}

// StringBE returns the hex-encoded big-endian representation of h, prefixed
// with "0x".
func (h Hash256) StringBE() string {
	return "0x" + hex.EncodeToString(h[:])
}

// String implements [fmt.Stringer].
func (h Hash256) String() string {
	return h.StringBE()
}

// Hash256DecodeBytesBE decodes a [Hash256] from a big-endian byte slice.
func Hash256DecodeBytesBE(b []byte) (Hash256, error) {
	var h Hash256
	if len(b) != Hash256Size {
		return h, fmt.Errorf("expected %d bytes, got %d", Hash256Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Hash256DecodeStringBE decodes a [Hash256] from its "0x"-prefixed hex
// representation.
func Hash256DecodeStringBE(s string) (Hash256, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash256{}, errors.New("invalid hex string for Hash256")
	}
	return Hash256DecodeBytesBE(b)
}

// MarshalJSON implements [json.Marshaler].
func (h Hash256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.StringBE() + `"`), nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (h *Hash256) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("invalid Hash256 JSON encoding")
	}
	v, err := Hash256DecodeStringBE(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
