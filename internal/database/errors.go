package database

import (
	"errors"

	"github.com/MikhailWahib/ledgerdb/internal/page"
)

var (
	// ErrIO is returned when opening, reading, writing, syncing or truncating the file fails.
	ErrIO = errors.New("database io error")

	// ErrSerialize is returned when a row cannot be encoded.
	ErrSerialize = errors.New("failed to serialize row")

	// ErrCorruptRow is returned when a slot with a non-zero length prefix cannot be decoded.
	// Unlike the zero-prefix sentinel it never means "end of data".
	ErrCorruptRow = errors.New("corrupt row")

	// ErrCorruptPage is returned when a partially filled page is followed by more pages.
	ErrCorruptPage = errors.New("corrupt page sequence")

	// ErrClosed is returned when operating on a closed database.
	ErrClosed = errors.New("database is closed")

	// ErrInvalidOptions is returned by Open when the options cannot describe a table.
	ErrInvalidOptions = errors.New("invalid database options")

	// ErrRowTooLarge is returned when a row plus its header exceeds the slot size.
	ErrRowTooLarge = page.ErrRowTooLarge

	// ErrInvalidPageSize is returned when the file or a read chunk is not a whole page.
	ErrInvalidPageSize = page.ErrInvalidPageSize
)
