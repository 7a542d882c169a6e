// Package record provides the serialization strategies used to turn rows into
// slot payloads and back.
package record

import "errors"

var (
	// ErrShortBuffer is returned when a payload ends before all fields are read.
	ErrShortBuffer = errors.New("payload too short")

	// ErrTrailingBytes is returned when a payload has bytes left after all fields are read.
	ErrTrailingBytes = errors.New("unexpected trailing bytes in payload")

	// ErrStringTooLong is returned when a string does not fit a one-byte length prefix.
	ErrStringTooLong = errors.New("string exceeds 255 bytes")
)

// Codec converts rows of type T to and from their serialized form.
type Codec[T any] interface {
	Encode(row T) ([]byte, error)
	Decode(payload []byte) (T, error)
}

// Bytes is the identity codec for raw byte rows.
type Bytes struct{}

// Encode returns a copy of row.
func (Bytes) Encode(row []byte) ([]byte, error) { return append([]byte(nil), row...), nil }

// Decode returns a copy of payload.
func (Bytes) Decode(payload []byte) ([]byte, error) { return append([]byte(nil), payload...), nil }
