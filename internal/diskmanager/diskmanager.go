// Package diskmanager provides interfaces and implementations for managing disk-based file operations.
// It hands out file handles for the page files and closes them on shutdown.
package diskmanager

import (
	"errors"
	"os"
	"sync"
)

// FileHandle abstracts file operations with random access, syncing, and truncation.
type FileHandle interface {
	// ReadAt reads len(b) bytes from the file starting at byte offset off.
	// It returns the number of bytes read and any error encountered.
	ReadAt(b []byte, off int64) (int, error)
	// WriteAt writes len(b) bytes to the file starting at byte offset off.
	// It returns the number of bytes written and any error encountered.
	WriteAt(b []byte, off int64) (int, error)
	// Truncate changes the size of the file.
	Truncate(size int64) error
	// Close closes the file handle, rendering it unusable for I/O.
	Close() error
	// Sync commits the current contents of the file to stable storage.
	Sync() error
	// Stat returns the file stat
	Stat() (os.FileInfo, error)
}

type fileHandle struct {
	file *os.File
}

// NewFileHandle wraps an *os.File into a FileHandle implementation.
func NewFileHandle(file *os.File) FileHandle { return &fileHandle{file: file} }

func (fh *fileHandle) ReadAt(b []byte, off int64) (int, error) { return fh.file.ReadAt(b, off) }

func (fh *fileHandle) WriteAt(b []byte, off int64) (int, error) { return fh.file.WriteAt(b, off) }

func (fh *fileHandle) Truncate(size int64) error { return fh.file.Truncate(size) }

func (fh *fileHandle) Close() error { return fh.file.Close() }

func (fh *fileHandle) Sync() error { return fh.file.Sync() }

func (fh *fileHandle) Stat() (os.FileInfo, error) { return fh.file.Stat() }

// DiskManager defines methods for file operations.
type DiskManager interface {
	// Open opens a file with specified path, flags and permissions.
	// Every call returns a new independent handle, so a file can have a
	// writer and a reader with separate positions.
	Open(path string, flags int, perm os.FileMode) (FileHandle, error)
	// Close closes every handle opened for path.
	Close(path string) error
}

type diskManager struct {
	mu          sync.Mutex
	fileHandles map[string][]FileHandle
}

// NewDiskManager creates a new DiskManager instance.
func NewDiskManager() DiskManager {
	return &diskManager{
		fileHandles: make(map[string][]FileHandle),
	}
}

// Open opens a file with the given flags and permissions.
// The handle is tracked by path so Close can release it.
func (dm *diskManager) Open(path string, flags int, perm os.FileMode) (FileHandle, error) {
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, err
	}
	handle := NewFileHandle(file)

	dm.mu.Lock()
	dm.fileHandles[path] = append(dm.fileHandles[path], handle)
	dm.mu.Unlock()
	return handle, nil
}

func (dm *diskManager) Close(path string) error {
	dm.mu.Lock()
	handles, exists := dm.fileHandles[path]
	delete(dm.fileHandles, path)
	dm.mu.Unlock()
	if !exists {
		return nil
	}

	var errs []error
	for _, handle := range handles {
		if err := handle.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
