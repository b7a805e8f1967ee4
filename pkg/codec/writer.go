package codec

import (
	"bytes"
	"encoding/binary"
)

// BinWriter writes the bridge wire format into an in-memory buffer. Every
// Write* method is a no-op once Err is non-nil.
type BinWriter struct {
	buf bytes.Buffer
	Err error
}

// NewBufBinWriter creates an empty [BinWriter].
func NewBufBinWriter() *BinWriter {
	return &BinWriter{}
}

// Bytes returns the bytes written so far.
func (w *BinWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Error returns the sticky write error, if any.
func (w *BinWriter) Error() error {
	return w.Err
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(b byte) {
	if w.Err != nil {
		return
	}
	w.buf.WriteByte(b)
}

// WriteBool writes a boolean as a single byte.
func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteB(1)
	} else {
		w.WriteB(0)
	}
}

// WriteU16LE writes a little-endian uint16.
func (w *BinWriter) WriteU16LE(v uint16) {
	if w.Err != nil {
		return
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32LE writes a little-endian uint32.
func (w *BinWriter) WriteU32LE(v uint32) {
	if w.Err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteU64LE writes a little-endian uint64.
func (w *BinWriter) WriteU64LE(v uint64) {
	if w.Err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteBytes writes buf verbatim, with no length prefix.
func (w *BinWriter) WriteBytes(buf []byte) {
	if w.Err != nil {
		return
	}
	w.buf.Write(buf)
}

// WriteCompactUint writes a SCALE-style compact unsigned integer, picking
// the narrowest of the four encoding modes ReadCompactUint understands.
func (w *BinWriter) WriteCompactUint(v uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case v < 1<<6:
		w.WriteB(byte(v << 2))
	case v < 1<<14:
		w.WriteU16LE(uint16(v<<2) | 0x01)
	case v < 1<<30:
		w.WriteU32LE(uint32(v<<2) | 0x02)
	default:
		n := byteLen(v)
		w.WriteB(byte((n-4)<<2) | 0x03)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		w.buf.Write(b[:n])
	}
}

func byteLen(v uint64) int {
	n := 1
	for v>>(8*n) != 0 {
		n++
	}
	if n < 4 {
		n = 4
	}
	return n
}

// WriteVarBytes writes a compact-length prefix followed by buf.
func (w *BinWriter) WriteVarBytes(buf []byte) {
	w.WriteCompactUint(uint64(len(buf)))
	w.WriteBytes(buf)
}

// WriteArray writes a compact-length prefix followed by one encodeOne call
// per element.
func WriteArray[T any](w *BinWriter, items []T, encodeOne func(w *BinWriter, item T)) {
	w.WriteCompactUint(uint64(len(items)))
	for _, item := range items {
		if w.Err != nil {
			return
		}
		encodeOne(w, item)
	}
}
