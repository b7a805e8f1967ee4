// Package codec implements the wire encoding used for every bridge message,
// proof and lane-state structure: little-endian fixed integers, one-byte
// enum discriminants, and SCALE-compatible compact-length-prefixed vectors
// (spec §6.2). The reader/writer pair follows the BinReader/BinWriter shape
// common across the example pack's serialization code (sticky Err field,
// Read*/Write* method families per type) generalized from varint-style
// length prefixes to SCALE's compact-u32 encoding.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrTooManyElements is returned when a compact-encoded length exceeds a
// sane upper bound, guarding against a decoder being tricked into
// allocating an enormous slice from an attacker-controlled length prefix.
var ErrTooManyElements = errors.New("codec: element count too large")

// MaxElements bounds any single compact-length-prefixed vector decoded by
// this package.
const MaxElements = 1 << 24

// BinReader reads the bridge wire format from an underlying [io.Reader].
// Every Read* method is a no-op once Err is non-nil, so callers can chain
// several reads and check Err exactly once at the end.
type BinReader struct {
	r   io.Reader
	Err error
}

// NewBinReaderFromBuf creates a [BinReader] over an in-memory buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{r: bytes.NewReader(b)}
}

// NewBinReaderFromIO creates a [BinReader] over an arbitrary reader.
func NewBinReaderFromIO(r io.Reader) *BinReader {
	return &BinReader{r: r}
}

func (r *BinReader) readN(n int) []byte {
	if r.Err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.Err = io.ReadFull(r.r, buf)
	if r.Err != nil {
		return nil
	}
	return buf
}

// ReadB reads a single byte.
func (r *BinReader) ReadB() byte {
	b := r.readN(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBool reads a single byte as a boolean (0x00/0x01).
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadU16LE reads a little-endian uint16.
func (r *BinReader) ReadU16LE() uint16 {
	b := r.readN(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadU32LE reads a little-endian uint32.
func (r *BinReader) ReadU32LE() uint32 {
	b := r.readN(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadU64LE reads a little-endian uint64.
func (r *BinReader) ReadU64LE() uint64 {
	b := r.readN(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadBytes fills buf completely from the stream.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil || len(buf) == 0 {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadCompactUint reads a SCALE-style compact unsigned integer: the low two
// bits of the first byte select a mode (single-byte, two-byte, four-byte, or
// big-integer); big-integer values wider than 8 bytes are rejected.
func (r *BinReader) ReadCompactUint() uint64 {
	if r.Err != nil {
		return 0
	}
	b0 := r.ReadB()
	if r.Err != nil {
		return 0
	}
	switch b0 & 0x03 {
	case 0x00:
		return uint64(b0 >> 2)
	case 0x01:
		b1 := r.ReadB()
		return uint64(b0>>2) | uint64(b1)<<6
	case 0x02:
		rest := r.readN(3)
		if rest == nil {
			return 0
		}
		v := uint64(b0>>2) | uint64(rest[0])<<6 | uint64(rest[1])<<14 | uint64(rest[2])<<22
		return v
	default:
		n := int(b0>>2) + 4
		if n > 8 {
			r.Err = errors.New("codec: compact integer too wide")
			return 0
		}
		rest := r.readN(n)
		if rest == nil {
			return 0
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(rest[i])
		}
		return v
	}
}

// ReadVarBytes reads a compact-length-prefixed byte slice.
func (r *BinReader) ReadVarBytes() []byte {
	n := r.ReadCompactUint()
	if r.Err != nil {
		return nil
	}
	if n > MaxElements {
		r.Err = ErrTooManyElements
		return nil
	}
	return r.readN(int(n))
}

// ReadArray decodes a compact-length-prefixed sequence by invoking decodeOne
// once per element; decodeOne should use r to read exactly one element.
func ReadArray[T any](r *BinReader, decodeOne func(r *BinReader) T) []T {
	n := r.ReadCompactUint()
	if r.Err != nil {
		return nil
	}
	if n > MaxElements {
		r.Err = ErrTooManyElements
		return nil
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n && r.Err == nil; i++ {
		out = append(out, decodeOne(r))
	}
	return out
}
