package page

import (
	"errors"
	"fmt"
)

var (
	// ErrRowTooLarge is returned when a payload plus its length prefix does not fit in one slot.
	ErrRowTooLarge = errors.New("row too large for slot")

	// ErrEmptyRow is returned when inserting a zero-length payload, which would be
	// indistinguishable from the end-of-page sentinel.
	ErrEmptyRow = errors.New("row payload is empty")

	// ErrPageFull is returned when inserting into a page with no free slots.
	ErrPageFull = errors.New("page is full")

	// ErrInvalidPageSize is returned when a buffer is not exactly PageSize bytes.
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrCorruptSlot is returned when a slot's length prefix points past the end of the slot.
	ErrCorruptSlot = errors.New("corrupt slot header")

	// ErrInvalidSlotSize is returned for slot sizes that cannot hold a header and one byte,
	// or that exceed a page.
	ErrInvalidSlotSize = errors.New("invalid slot size")
)

// ValidateSlotSize reports whether n can be used as a slot size.
func ValidateSlotSize(n int) error {
	if n <= HeaderSize || n > PageSize {
		return fmt.Errorf("%w: %d (must be in (%d, %d])", ErrInvalidSlotSize, n, HeaderSize, PageSize)
	}
	return nil
}
