package page

import (
	"encoding/binary"
	"fmt"
	"iter"
)

// Page is an in-memory PageSize buffer split into equal slots.
// Slot layout: [8 bytes big-endian payload length][payload][zero padding]
// An all-zero length prefix marks the end of the rows in the page.
type Page struct {
	data     []byte
	slotSize int
	rows     int
}

// New returns an empty page with the given slot size.
func New(slotSize int) (*Page, error) {
	if err := ValidateSlotSize(slotSize); err != nil {
		return nil, err
	}
	return &Page{
		data:     make([]byte, PageSize),
		slotSize: slotSize,
	}, nil
}

// FromBytes wraps buf as a page without copying it. The occupied slot count
// is recovered by walking the slots up to the first sentinel.
func FromBytes(buf []byte, slotSize int) (*Page, error) {
	if err := ValidateSlotSize(slotSize); err != nil {
		return nil, err
	}
	if len(buf) != PageSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidPageSize, PageSize, len(buf))
	}

	p := &Page{data: buf, slotSize: slotSize}
	for _, err := range p.Rows() {
		if err != nil {
			break
		}
		p.rows++
	}
	return p, nil
}

// Insert writes payload into the next free slot.
func (p *Page) Insert(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyRow
	}
	if HeaderSize+len(payload) > p.slotSize {
		return fmt.Errorf("%w: %d byte payload + %d byte header exceeds %d byte slot",
			ErrRowTooLarge, len(payload), HeaderSize, p.slotSize)
	}
	if p.Full() {
		return ErrPageFull
	}

	offset := p.rows * p.slotSize
	slot := p.data[offset : offset+p.slotSize]
	binary.BigEndian.PutUint64(slot[:HeaderSize], uint64(len(payload)))
	n := copy(slot[HeaderSize:], payload)
	clear(slot[HeaderSize+n:])

	p.rows++
	return nil
}

// Rows returns the payloads of the page in slot order. Iteration stops at the
// first sentinel or at the end of the buffer. A length prefix larger than the
// slot yields ErrCorruptSlot and ends iteration.
//
// The yielded slices alias the page buffer and must be copied if retained
// across a later Insert.
func (p *Page) Rows() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		maxPayload := uint64(p.slotSize - HeaderSize)
		for offset := 0; offset+p.slotSize <= len(p.data); offset += p.slotSize {
			n := binary.BigEndian.Uint64(p.data[offset : offset+HeaderSize])
			if n == 0 {
				return
			}
			if n > maxPayload {
				yield(nil, fmt.Errorf("%w: slot %d declares %d bytes, slot holds %d",
					ErrCorruptSlot, offset/p.slotSize, n, maxPayload))
				return
			}

			start := offset + HeaderSize
			if !yield(p.data[start:start+int(n)], nil) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	data := make([]byte, len(p.data))
	copy(data, p.data)
	return &Page{data: data, slotSize: p.slotSize, rows: p.rows}
}

// Bytes returns the full PageSize image of the page.
func (p *Page) Bytes() []byte { return p.data }

// SlotSize returns the size of each slot in bytes.
func (p *Page) SlotSize() int { return p.slotSize }

// Len returns the number of occupied slots.
func (p *Page) Len() int { return p.rows }

// Capacity returns the number of slots in the page.
func (p *Page) Capacity() int { return PageSize / p.slotSize }

// Available returns the number of free slots.
func (p *Page) Available() int { return p.Capacity() - p.rows }

// Full reports whether every slot is occupied.
func (p *Page) Full() bool { return p.Available() == 0 }
