package record

import (
	"encoding/json"
	"fmt"
)

// JSON encodes rows with encoding/json. It suits row types whose encoded form
// comfortably fits the slot size; fixed-layout rows should use Encoder.
type JSON[T any] struct{}

// Encode marshals row to JSON.
func (JSON[T]) Encode(row T) ([]byte, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal row: %w", err)
	}
	return b, nil
}

// Decode unmarshals payload into a T.
func (JSON[T]) Decode(payload []byte) (T, error) {
	var row T
	if err := json.Unmarshal(payload, &row); err != nil {
		return row, fmt.Errorf("failed to unmarshal row: %w", err)
	}
	return row, nil
}
