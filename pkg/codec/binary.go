// Package codec provides the binary wire encoding used to persist contract
// state (records, NFT data, resolver entries, reservations) to the store
// packages. It mirrors the BinWriter/BinReader split the teacher uses for
// block and transaction serialization, scaled down to the fixed-width and
// length-prefixed fields this module actually needs.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrTooLong is returned when a length-prefixed field exceeds MaxVarLen.
var ErrTooLong = errors.New("codec: field exceeds maximum length")

// MaxVarLen bounds any single length-prefixed field read from the wire,
// guarding against corrupt or hostile stores allocating unbounded slices.
const MaxVarLen = 1 << 20

// Serializable is implemented by every piece of persisted contract state.
type Serializable interface {
	EncodeBinary(w *BinWriter)
	DecodeBinary(r *BinReader)
}

// BinWriter accumulates a binary encoding, recording the first error seen so
// that call sites can chain writes without checking errors after every call.
type BinWriter struct {
	w   io.Writer
	Err error
}

// NewBinWriterFromIO creates a BinWriter writing to w.
func NewBinWriterFromIO(w io.Writer) *BinWriter {
	return &BinWriter{w: w}
}

func (w *BinWriter) WriteBytes(p []byte) {
	if w.Err != nil {
		return
	}
	if len(p) > MaxVarLen {
		w.Err = ErrTooLong
		return
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		w.Err = err
		return
	}
	if len(p) == 0 {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.Err = err
	}
}

func (w *BinWriter) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

func (w *BinWriter) WriteFixedBytes(p []byte) {
	if w.Err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.Err = err
	}
}

func (w *BinWriter) WriteU64(v uint64) {
	if w.Err != nil {
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.w.Write(buf[:]); err != nil {
		w.Err = err
	}
}

func (w *BinWriter) WriteU32(v uint32) {
	if w.Err != nil {
		return
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.w.Write(buf[:]); err != nil {
		w.Err = err
	}
}

func (w *BinWriter) WriteByte(b byte) {
	if w.Err != nil {
		return
	}
	if _, err := w.w.Write([]byte{b}); err != nil {
		w.Err = err
	}
}

func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// BinReader is the read-side counterpart of BinWriter.
type BinReader struct {
	r   io.Reader
	Err error
}

// NewBinReaderFromBuf creates a BinReader reading from the given bytes.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{r: bytes.NewReader(b)}
}

func (r *BinReader) ReadBytes() []byte {
	if r.Err != nil {
		return nil
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		r.Err = err
		return nil
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxVarLen {
		r.Err = ErrTooLong
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.Err = err
		return nil
	}
	return buf
}

func (r *BinReader) ReadString() string {
	return string(r.ReadBytes())
}

func (r *BinReader) ReadFixedBytes(n int) []byte {
	if r.Err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.Err = err
		return nil
	}
	return buf
}

func (r *BinReader) ReadU64() uint64 {
	if r.Err != nil {
		return 0
	}
	var buf [8]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		r.Err = err
		return 0
	}
	return binary.BigEndian.Uint64(buf[:])
}

func (r *BinReader) ReadU32() uint32 {
	if r.Err != nil {
		return 0
	}
	var buf [4]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		r.Err = err
		return 0
	}
	return binary.BigEndian.Uint32(buf[:])
}

func (r *BinReader) ReadByte() byte {
	if r.Err != nil {
		return 0
	}
	buf := r.ReadFixedBytes(1)
	if len(buf) == 0 {
		return 0
	}
	return buf[0]
}

func (r *BinReader) ReadBool() bool {
	return r.ReadByte() != 0
}

// Encode serializes a Serializable to a byte slice.
func Encode(s Serializable) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := NewBinWriterFromIO(buf)
	s.EncodeBinary(w)
	if w.Err != nil {
		return nil, w.Err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a Serializable from a byte slice.
func Decode(data []byte, s Serializable) error {
	r := NewBinReaderFromBuf(data)
	s.DecodeBinary(r)
	return r.Err
}
