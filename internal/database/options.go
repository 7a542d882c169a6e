package database

import (
	"fmt"

	"github.com/MikhailWahib/ledgerdb/internal/diskmanager"
	"github.com/MikhailWahib/ledgerdb/internal/page"
	"github.com/MikhailWahib/ledgerdb/internal/record"
)

// FsyncMode controls whether every page flush is followed by an fsync.
type FsyncMode int

const (
	// FsyncAlways syncs the file after every insert.
	FsyncAlways FsyncMode = iota
	// FsyncNever leaves syncing to the operating system. Close still syncs.
	FsyncNever
)

// ParseFsyncMode converts always|never into a FsyncMode. Empty means always.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch s {
	case "", "always":
		return FsyncAlways, nil
	case "never":
		return FsyncNever, nil
	default:
		return FsyncAlways, fmt.Errorf("invalid fsync mode %q; use always|never", s)
	}
}

// Options configures a Database for one row type.
type Options[T any] struct {
	// SlotSize is the fixed size of every slot, header included.
	SlotSize int
	// Codec serializes rows into slot payloads.
	Codec record.Codec[T]
	// Fsync selects the durability mode of inserts.
	Fsync FsyncMode
	// TruncateTornPage cuts a trailing partial page back to the last page
	// boundary on open instead of failing with ErrInvalidPageSize.
	TruncateTornPage bool
	// DiskManager opens the file handles. Defaults to the OS-backed manager.
	DiskManager diskmanager.DiskManager
}

func (o *Options[T]) validate() error {
	if o.Codec == nil {
		return fmt.Errorf("%w: codec is required", ErrInvalidOptions)
	}
	if err := page.ValidateSlotSize(o.SlotSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.Fsync != FsyncAlways && o.Fsync != FsyncNever {
		return fmt.Errorf("%w: unknown fsync mode %d", ErrInvalidOptions, o.Fsync)
	}
	if o.DiskManager == nil {
		o.DiskManager = diskmanager.NewDiskManager()
	}
	return nil
}
