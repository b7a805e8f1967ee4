package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU64RoundTrip(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteU64LE(0xbadc0de15a11dead)
	require.NoError(t, w.Error())

	r := NewBinReaderFromBuf(w.Bytes())
	require.EqualValues(t, 0xbadc0de15a11dead, r.ReadU64LE())
	require.NoError(t, r.Err)
}

func TestCompactUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 63, 64, 16383, 16384, 1<<30 - 1, 1 << 30, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		w := NewBufBinWriter()
		w.WriteCompactUint(v)
		require.NoError(t, w.Error())

		r := NewBinReaderFromBuf(w.Bytes())
		got := r.ReadCompactUint()
		require.NoError(t, r.Err)
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteVarBytes([]byte("hello bridge"))

	r := NewBinReaderFromBuf(w.Bytes())
	require.Equal(t, []byte("hello bridge"), r.ReadVarBytes())
	require.NoError(t, r.Err)
}

func TestArrayRoundTrip(t *testing.T) {
	items := []uint32{1, 2, 3, 4, 5}
	w := NewBufBinWriter()
	WriteArray(w, items, func(w *BinWriter, item uint32) { w.WriteU32LE(item) })

	r := NewBinReaderFromBuf(w.Bytes())
	got := ReadArray(r, func(r *BinReader) uint32 { return r.ReadU32LE() })
	require.NoError(t, r.Err)
	require.Equal(t, items, got)
}

func TestReadTooManyElementsRejected(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteCompactUint(MaxElements + 1)

	r := NewBinReaderFromBuf(w.Bytes())
	r.ReadVarBytes()
	require.ErrorIs(t, r.Err, ErrTooManyElements)
}

func TestReadPastEndOfBufferErrors(t *testing.T) {
	r := NewBinReaderFromBuf([]byte{0x01})
	r.ReadU64LE()
	require.Error(t, r.Err)
}
