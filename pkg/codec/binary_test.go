package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	Name  string
	Count uint64
	Flag  bool
}

func (f *fakeRecord) EncodeBinary(w *BinWriter) {
	w.WriteString(f.Name)
	w.WriteU64(f.Count)
	w.WriteBool(f.Flag)
}

func (f *fakeRecord) DecodeBinary(r *BinReader) {
	f.Name = r.ReadString()
	f.Count = r.ReadU64()
	f.Flag = r.ReadBool()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := &fakeRecord{Name: "alice", Count: 42, Flag: true}
	raw, err := Encode(want)
	require.NoError(t, err)

	got := &fakeRecord{}
	require.NoError(t, Decode(raw, got))
	require.Equal(t, want, got)
}

func TestWriteBytesRejectsOversizedField(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewBinWriterFromIO(buf)
	w.WriteBytes(make([]byte, MaxVarLen+1))
	require.ErrorIs(t, w.Err, ErrTooLong)
}

func TestReadBytesRejectsCorruptLength(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewBinWriterFromIO(buf)
	w.WriteU32(MaxVarLen + 1)
	r := NewBinReaderFromBuf(buf.Bytes())
	r.ReadBytes()
	require.ErrorIs(t, r.Err, ErrTooLong)
}

func TestDecodeSurfacesTruncatedInput(t *testing.T) {
	got := &fakeRecord{}
	err := Decode([]byte{0, 0, 0, 1}, got)
	require.Error(t, err)
}
