// Package database implements an append-only table of fixed-size rows stored
// as a sequence of pages in a single file.
//
// Every insert rewrites the full image of the tail page at its offset, so a
// crash can only lose the insert in flight; pages already flushed are never
// touched again once full. The database does no locking of its own: callers
// must serialize access to one instance.
package database

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/MikhailWahib/ledgerdb/internal/diskmanager"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
	"github.com/MikhailWahib/ledgerdb/internal/page"
	"github.com/MikhailWahib/ledgerdb/internal/record"
)

// Database is a file-backed sequence of pages holding rows of type T.
type Database[T any] struct {
	path     string
	slotSize int
	codec    record.Codec[T]
	fsync    FsyncMode
	dm       diskmanager.DiskManager

	writer diskmanager.FileHandle
	reader diskmanager.FileHandle

	// current is the tail page and pageIndex its position in the file
	current   *page.Page
	pageIndex int64
	rows      int
	closed    bool

	log *slog.Logger
}

// Open opens the table stored at path, creating the file if it does not exist.
// The tail page is loaded so that inserts continue filling it.
func Open[T any](path string, opts Options[T]) (*Database[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db := &Database[T]{
		path:     path,
		slotSize: opts.SlotSize,
		codec:    opts.Codec,
		fsync:    opts.Fsync,
		dm:       opts.DiskManager,
		log:      logging.WithFile(path),
	}

	var err error
	db.writer, err = db.dm.Open(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s for writing: %w", ErrIO, path, err)
	}
	db.reader, err = db.dm.Open(path, os.O_RDONLY, 0644)
	if err != nil {
		_ = db.dm.Close(path)
		return nil, fmt.Errorf("%w: failed to open %s for reading: %w", ErrIO, path, err)
	}

	if err := db.recover(opts.TruncateTornPage); err != nil {
		_ = db.dm.Close(path)
		return nil, err
	}

	db.log.Debug("database opened", "tail_page", db.pageIndex, "rows", db.rows, "slot_size", db.slotSize)
	return db, nil
}

// recover checks the file is a whole number of pages and loads the tail page.
func (db *Database[T]) recover(truncateTorn bool) error {
	info, err := db.writer.Stat()
	if err != nil {
		return fmt.Errorf("%w: failed to stat %s: %w", ErrIO, db.path, err)
	}

	size := info.Size()
	if torn := size % page.PageSize; torn != 0 {
		if !truncateTorn {
			return fmt.Errorf("%w: file %s is %d bytes, %d bytes past the last page boundary",
				ErrInvalidPageSize, db.path, size, torn)
		}
		size -= torn
		if err := db.writer.Truncate(size); err != nil {
			return fmt.Errorf("%w: failed to truncate torn page: %w", ErrIO, err)
		}
		if err := db.writer.Sync(); err != nil {
			return fmt.Errorf("%w: failed to sync after truncate: %w", ErrIO, err)
		}
		db.log.Warn("truncated torn page", "bytes", torn, "size", size)
	}

	pages := size / page.PageSize
	if pages == 0 {
		db.current, err = page.New(db.slotSize)
		return err
	}

	for p, err := range db.RawPages() {
		if err != nil {
			return err
		}
		if p.index < pages-1 && !p.Full() {
			return fmt.Errorf("%w: page %d holds %d of %d rows but is not the last page",
				ErrCorruptPage, p.index, p.Len(), p.Capacity())
		}
		db.rows += p.Len()
		db.current, db.pageIndex = p.Page, p.index
	}
	return nil
}

// Insert appends row to the table and flushes the tail page image to disk.
// In-memory state only advances once the write succeeded.
func (db *Database[T]) Insert(row T) error {
	if db.closed {
		return ErrClosed
	}

	payload, err := db.codec.Encode(row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	target, index := db.current, db.pageIndex
	if target.Full() {
		target, err = page.New(db.slotSize)
		if err != nil {
			return err
		}
		index++
	} else {
		target = target.Clone()
	}

	if err := target.Insert(payload); err != nil {
		return err
	}
	if err := db.flush(target, index); err != nil {
		return err
	}

	db.current, db.pageIndex = target, index
	db.rows++
	return nil
}

// flush writes the full image of p at the offset of page index.
func (db *Database[T]) flush(p *page.Page, index int64) error {
	if _, err := db.writer.WriteAt(p.Bytes(), index*page.PageSize); err != nil {
		return fmt.Errorf("%w: failed to write page %d: %w", ErrIO, index, err)
	}
	if db.fsync == FsyncAlways {
		if err := db.writer.Sync(); err != nil {
			return fmt.Errorf("%w: failed to sync page %d: %w", ErrIO, index, err)
		}
	}
	return nil
}

// Scan replays every row from the start of the file through the read handle.
// The sequence stops at the first sentinel slot. A short page, a corrupt slot
// header or a payload that fails to decode is yielded as an error and ends
// the scan. Scan may be ranged over any number of times.
func (db *Database[T]) Scan() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for p, err := range db.RawPages() {
			if err != nil {
				yield(zero, err)
				return
			}

			slot := 0
			for payload, err := range p.Rows() {
				if err != nil {
					yield(zero, fmt.Errorf("%w: page %d: %w", ErrCorruptRow, p.index, err))
					return
				}
				row, err := db.codec.Decode(payload)
				if err != nil {
					yield(zero, fmt.Errorf("%w: page %d slot %d: %w", ErrCorruptRow, p.index, slot, err))
					return
				}
				if !yield(row, nil) {
					return
				}
				slot++
			}

			if !p.Full() {
				return
			}
		}
	}
}

// Rows collects Scan into a slice.
func (db *Database[T]) Rows() ([]T, error) {
	rows := make([]T, 0, db.rows)
	for row, err := range db.Scan() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StoredPage is a page read back from the file together with its index.
type StoredPage struct {
	*page.Page
	index int64
}

// Index returns the position of the page in the file.
func (p StoredPage) Index() int64 { return p.index }

// RawPages reads the file page by page through the read handle without
// decoding any rows.
func (db *Database[T]) RawPages() iter.Seq2[StoredPage, error] {
	return func(yield func(StoredPage, error) bool) {
		if db.closed {
			yield(StoredPage{}, ErrClosed)
			return
		}
		for p, err := range readPages(db.reader, db.slotSize, -1) {
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

// readPages yields up to limit pages of r from offset 0, or every page up to
// end of file when limit is negative. A short final chunk is an error.
func readPages(r diskmanager.FileHandle, slotSize int, limit int64) iter.Seq2[StoredPage, error] {
	return func(yield func(StoredPage, error) bool) {
		for index := int64(0); limit < 0 || index < limit; index++ {
			buf := make([]byte, page.PageSize)
			n, err := r.ReadAt(buf, index*page.PageSize)
			if err != nil && !errors.Is(err, io.EOF) {
				yield(StoredPage{}, fmt.Errorf("%w: failed to read page %d: %w", ErrIO, index, err))
				return
			}
			if n == 0 {
				return
			}

			p, err := page.FromBytes(buf[:n], slotSize)
			if err != nil {
				yield(StoredPage{}, fmt.Errorf("page %d: %w", index, err))
				return
			}
			if !yield(StoredPage{Page: p, index: index}, nil) {
				return
			}
		}
	}
}

// Len returns the number of rows persisted.
func (db *Database[T]) Len() int { return db.rows }

// Path returns the file backing the table.
func (db *Database[T]) Path() string { return db.path }

// SlotSize returns the fixed slot size of the table.
func (db *Database[T]) SlotSize() int { return db.slotSize }

// Close syncs the file and closes both handles. The database must not be used afterwards.
func (db *Database[T]) Close() error {
	if db.closed {
		return ErrClosed
	}
	db.closed = true

	syncErr := db.writer.Sync()
	if err := db.dm.Close(db.path); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", ErrIO, db.path, err)
	}
	if syncErr != nil {
		return fmt.Errorf("%w: failed to sync %s: %w", ErrIO, db.path, syncErr)
	}
	return nil
}
