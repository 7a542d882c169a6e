package record

import (
	"encoding/binary"
	"fmt"
)

// Encoder appends big-endian fixed-width fields to a buffer.
// Format helpers: Int64 -> 8 bytes, Byte -> 1 byte, String -> [1 byte len][bytes]
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an Encoder with room for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Int64 appends v as 8 big-endian bytes.
func (e *Encoder) Int64(v int64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v))
}

// Byte appends a single byte.
func (e *Encoder) Byte(b byte) {
	e.buf = append(e.buf, b)
}

// String appends s with a one-byte length prefix.
func (e *Encoder) String(s string) {
	if len(s) > 255 {
		if e.err == nil {
			e.err = fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
		}
		return
	}
	e.buf = append(e.buf, byte(len(s)))
	e.buf = append(e.buf, s...)
}

// Bytes returns the encoded buffer, or the first error hit while encoding.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Decoder reads fields written by Encoder. The first failure sticks and is
// reported by Finish, so callers can read every field before checking.
type Decoder struct {
	buf []byte
	off int
	err error
}

// NewDecoder returns a Decoder over payload.
func NewDecoder(payload []byte) *Decoder {
	return &Decoder{buf: payload}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf)-d.off < n {
		d.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, d.off, len(d.buf)-d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

// Int64 reads 8 big-endian bytes.
func (d *Decoder) Int64() int64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Byte reads a single byte.
func (d *Decoder) Byte() byte {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// String reads a one-byte length prefixed string.
func (d *Decoder) String() string {
	n := d.Byte()
	b := d.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// Finish reports the first decoding error, or ErrTrailingBytes if the payload
// was not fully consumed.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.buf) {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(d.buf)-d.off)
	}
	return nil
}
