package database_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/MikhailWahib/ledgerdb/internal/database"
	"github.com/MikhailWahib/ledgerdb/internal/diskmanager/mockdm"
	"github.com/MikhailWahib/ledgerdb/internal/page"
	"github.com/MikhailWahib/ledgerdb/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Seq  int    `json:"seq"`
	Name string `json:"name"`
}

// 64 byte slots hold 64 rows per page
const testSlotSize = 64

func setup(t *testing.T, name string) string {
	testDir := t.TempDir()
	return filepath.Join(testDir, name)
}

func openJSON(t *testing.T, path string) *database.Database[testRow] {
	t.Helper()
	db, err := database.Open(path, database.Options[testRow]{
		SlotSize: testSlotSize,
		Codec:    record.JSON[testRow]{},
	})
	require.NoError(t, err)
	return db
}

func insertRows(t *testing.T, db *database.Database[testRow], from, to int) []testRow {
	t.Helper()
	var rows []testRow
	for i := from; i < to; i++ {
		row := testRow{Seq: i, Name: fmt.Sprintf("row-%d", i)}
		require.NoError(t, db.Insert(row))
		rows = append(rows, row)
	}
	return rows
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestDatabase_InsertAndScan(t *testing.T) {
	path := setup(t, "basic.db")
	db := openJSON(t, path)

	expected := insertRows(t, db, 0, 3)

	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, expected, rows)
	assert.Equal(t, 3, db.Len())
	assert.EqualValues(t, page.PageSize, fileSize(t, path), "file must hold exactly one page")

	require.NoError(t, db.Close())
}

func TestDatabase_ReopenAcrossPages(t *testing.T) {
	path := setup(t, "pages.db")
	db := openJSON(t, path)
	expected := insertRows(t, db, 0, 200)
	require.NoError(t, db.Close())

	// 200 rows at 64 per page span 4 pages
	assert.EqualValues(t, 4*page.PageSize, fileSize(t, path))

	db = openJSON(t, path)
	defer db.Close()

	assert.Equal(t, 200, db.Len())
	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, expected, rows)
}

func TestDatabase_ReopenContinuesTailPage(t *testing.T) {
	path := setup(t, "tail.db")

	db := openJSON(t, path)
	expected := insertRows(t, db, 0, 10)
	require.NoError(t, db.Close())

	db = openJSON(t, path)
	expected = append(expected, insertRows(t, db, 10, 20)...)
	require.NoError(t, db.Close())

	assert.EqualValues(t, page.PageSize, fileSize(t, path), "reopened inserts must fill the existing tail page")

	db = openJSON(t, path)
	defer db.Close()
	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, expected, rows)
}

func TestDatabase_ReopenWithFullTailPage(t *testing.T) {
	path := setup(t, "full.db")

	db := openJSON(t, path)
	expected := insertRows(t, db, 0, 64)
	require.NoError(t, db.Close())

	db = openJSON(t, path)
	expected = append(expected, insertRows(t, db, 64, 65)...)
	require.NoError(t, db.Close())

	assert.EqualValues(t, 2*page.PageSize, fileSize(t, path))

	db = openJSON(t, path)
	defer db.Close()
	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, expected, rows)
}

func TestDatabase_TruncateAtPageBoundary(t *testing.T) {
	path := setup(t, "truncate.db")
	db := openJSON(t, path)
	expected := insertRows(t, db, 0, 150)
	require.NoError(t, db.Close())

	for pages := 3; pages >= 0; pages-- {
		require.NoError(t, os.Truncate(path, int64(pages)*page.PageSize))

		db = openJSON(t, path)
		rows, err := db.Rows()
		require.NoError(t, err)

		want := min(pages*64, len(expected))
		assert.Len(t, rows, want, "pages=%d", pages)
		if want > 0 {
			assert.Equal(t, expected[:want], rows)
		}
		require.NoError(t, db.Close())
	}
}

func TestDatabase_TornTail(t *testing.T) {
	path := setup(t, "torn.db")
	db := openJSON(t, path)
	expected := insertRows(t, db, 0, 70)
	require.NoError(t, db.Close())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("half a page"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = database.Open(path, database.Options[testRow]{
		SlotSize: testSlotSize,
		Codec:    record.JSON[testRow]{},
	})
	require.ErrorIs(t, err, database.ErrInvalidPageSize)

	db, err = database.Open(path, database.Options[testRow]{
		SlotSize:         testSlotSize,
		Codec:            record.JSON[testRow]{},
		TruncateTornPage: true,
	})
	require.NoError(t, err)
	defer db.Close()

	assert.EqualValues(t, 2*page.PageSize, fileSize(t, path))
	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, expected, rows)
}

func TestDatabase_RowTooLarge(t *testing.T) {
	path := setup(t, "large.db")
	db := openJSON(t, path)
	defer db.Close()

	insertRows(t, db, 0, 1)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = db.Insert(testRow{Seq: 1, Name: string(make([]byte, testSlotSize))})
	require.ErrorIs(t, err, database.ErrRowTooLarge)
	assert.Equal(t, 1, db.Len())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed insert must not touch the file")
}

func TestDatabase_WriteFailureKeepsState(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	db, err := database.Open("mock.db", database.Options[[]byte]{
		SlotSize:    32,
		Codec:       record.Bytes{},
		DiskManager: dm,
	})
	require.NoError(t, err)

	require.NoError(t, db.Insert([]byte("a")))

	file := dm.File("mock.db")
	file.WriteErr = errors.New("disk full")
	err = db.Insert([]byte("b"))
	require.ErrorIs(t, err, database.ErrIO)
	assert.Equal(t, 1, db.Len())

	file.WriteErr = nil
	require.NoError(t, db.Insert([]byte("c")))

	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("c")}, rows)
}

func TestDatabase_SyncFailureIsOverwritten(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	db, err := database.Open("mock.db", database.Options[[]byte]{
		SlotSize:    32,
		Codec:       record.Bytes{},
		DiskManager: dm,
	})
	require.NoError(t, err)

	file := dm.File("mock.db")
	file.SyncErr = errors.New("sync failed")
	require.ErrorIs(t, db.Insert([]byte("lost")), database.ErrIO)
	assert.Equal(t, 0, db.Len())

	// the next flush rewrites the same slot from the unchanged in-memory page
	file.SyncErr = nil
	require.NoError(t, db.Insert([]byte("kept")))

	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("kept")}, rows)
}

func TestDatabase_FsyncNever(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	db, err := database.Open("mock.db", database.Options[[]byte]{
		SlotSize:    32,
		Codec:       record.Bytes{},
		Fsync:       database.FsyncNever,
		DiskManager: dm,
	})
	require.NoError(t, err)

	dm.File("mock.db").SyncErr = errors.New("sync failed")
	require.NoError(t, db.Insert([]byte("a")), "inserts must not sync in never mode")
	require.ErrorIs(t, db.Close(), database.ErrIO, "close always syncs")
}

func TestDatabase_CorruptPayload(t *testing.T) {
	path := setup(t, "corrupt.db")
	db := openJSON(t, path)
	insertRows(t, db, 0, 3)
	require.NoError(t, db.Close())

	// overwrite the payload of slot 1 keeping its non-zero length prefix
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("{{{{"), testSlotSize+page.HeaderSize)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	db = openJSON(t, path)
	defer db.Close()

	var rows []testRow
	var scanErr error
	for row, err := range db.Scan() {
		if err != nil {
			scanErr = err
			break
		}
		rows = append(rows, row)
	}
	require.ErrorIs(t, scanErr, database.ErrCorruptRow)
	assert.Contains(t, scanErr.Error(), "page 0 slot 1")
	assert.Len(t, rows, 1, "rows before the corrupt slot are still yielded")

	_, err = db.Rows()
	require.ErrorIs(t, err, database.ErrCorruptRow)
}

func TestDatabase_CorruptSlotHeader(t *testing.T) {
	path := setup(t, "header.db")
	db := openJSON(t, path)
	insertRows(t, db, 0, 2)
	require.NoError(t, db.Close())

	header := make([]byte, page.HeaderSize)
	binary.BigEndian.PutUint64(header, 1<<20)
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt(header, testSlotSize)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	db = openJSON(t, path)
	defer db.Close()

	_, err = db.Rows()
	require.ErrorIs(t, err, database.ErrCorruptRow)
	require.ErrorIs(t, err, page.ErrCorruptSlot)
}

func TestDatabase_PartialInteriorPage(t *testing.T) {
	path := setup(t, "interior.db")

	first, err := page.New(32)
	require.NoError(t, err)
	require.NoError(t, first.Insert([]byte("a")))

	second, err := page.New(32)
	require.NoError(t, err)
	for range second.Capacity() {
		require.NoError(t, second.Insert([]byte("b")))
	}
	require.NoError(t, os.WriteFile(path, append(first.Bytes(), second.Bytes()...), 0644))

	_, err = database.Open(path, database.Options[[]byte]{SlotSize: 32, Codec: record.Bytes{}})
	require.ErrorIs(t, err, database.ErrCorruptPage)
}

func TestDatabase_ScanIsRestartable(t *testing.T) {
	path := setup(t, "restart.db")
	db := openJSON(t, path)
	defer db.Close()
	insertRows(t, db, 0, 100)

	var seen int
	for _, err := range db.Scan() {
		require.NoError(t, err)
		seen++
		if seen == 5 {
			break
		}
	}
	assert.Equal(t, 5, seen)

	rows, err := db.Rows()
	require.NoError(t, err)
	assert.Len(t, rows, 100)
}

func TestDatabase_InvalidOptions(t *testing.T) {
	path := setup(t, "options.db")

	_, err := database.Open(path, database.Options[testRow]{SlotSize: testSlotSize})
	require.ErrorIs(t, err, database.ErrInvalidOptions)

	_, err = database.Open(path, database.Options[testRow]{SlotSize: page.HeaderSize, Codec: record.JSON[testRow]{}})
	require.ErrorIs(t, err, database.ErrInvalidOptions)
	require.ErrorIs(t, err, page.ErrInvalidSlotSize)

	_, err = database.Open(path, database.Options[testRow]{SlotSize: testSlotSize, Codec: record.JSON[testRow]{}, Fsync: 9})
	require.ErrorIs(t, err, database.ErrInvalidOptions)
}

func TestDatabase_OpenFailure(t *testing.T) {
	_, err := database.Open("/nonexistent/directory/test.db", database.Options[[]byte]{
		SlotSize: 32,
		Codec:    record.Bytes{},
	})
	require.ErrorIs(t, err, database.ErrIO)
	require.ErrorIs(t, err, os.ErrNotExist)

	dm := mockdm.NewMockDiskManager()
	dm.OpenErr = errors.New("permission denied")
	_, err = database.Open("mock.db", database.Options[[]byte]{
		SlotSize:    32,
		Codec:       record.Bytes{},
		DiskManager: dm,
	})
	require.ErrorIs(t, err, database.ErrIO)
}

func TestDatabase_Closed(t *testing.T) {
	path := setup(t, "closed.db")
	db := openJSON(t, path)
	require.NoError(t, db.Close())

	require.ErrorIs(t, db.Close(), database.ErrClosed)
	require.ErrorIs(t, db.Insert(testRow{}), database.ErrClosed)
	_, err := db.Rows()
	require.ErrorIs(t, err, database.ErrClosed)
}

func TestParseFsyncMode(t *testing.T) {
	mode, err := database.ParseFsyncMode("")
	require.NoError(t, err)
	assert.Equal(t, database.FsyncAlways, mode)

	mode, err = database.ParseFsyncMode("never")
	require.NoError(t, err)
	assert.Equal(t, database.FsyncNever, mode)

	_, err = database.ParseFsyncMode("sometimes")
	assert.Error(t, err)
}
