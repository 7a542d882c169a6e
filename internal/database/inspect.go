package database

import (
	"fmt"
	"iter"
	"os"

	"github.com/MikhailWahib/ledgerdb/internal/diskmanager"
	"github.com/MikhailWahib/ledgerdb/internal/page"
)

// Inspector reads the pages of an existing file through a single read-only
// handle. It never creates, truncates or writes the file, so it also works on
// read-only files and on files with a torn tail page.
type Inspector struct {
	path     string
	slotSize int
	dm       diskmanager.DiskManager
	file     diskmanager.FileHandle
	size     int64
}

// OpenInspector opens path read-only. A nil dm uses the OS-backed manager.
func OpenInspector(path string, slotSize int, dm diskmanager.DiskManager) (*Inspector, error) {
	if err := page.ValidateSlotSize(slotSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if dm == nil {
		dm = diskmanager.NewDiskManager()
	}

	f, err := dm.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrIO, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = dm.Close(path)
		return nil, fmt.Errorf("%w: failed to stat %s: %w", ErrIO, path, err)
	}
	return &Inspector{path: path, slotSize: slotSize, dm: dm, file: f, size: info.Size()}, nil
}

// Pages yields every whole page of the file. Bytes past the last page
// boundary are skipped; see TornBytes.
func (in *Inspector) Pages() iter.Seq2[StoredPage, error] {
	return readPages(in.file, in.slotSize, in.size/page.PageSize)
}

// Size returns the file size at open time.
func (in *Inspector) Size() int64 { return in.size }

// TornBytes returns how many bytes follow the last page boundary.
func (in *Inspector) TornBytes() int64 { return in.size % page.PageSize }

// Close releases the read handle.
func (in *Inspector) Close() error {
	if err := in.dm.Close(in.path); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", ErrIO, in.path, err)
	}
	return nil
}
