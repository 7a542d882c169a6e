// Package mockdm provides a mock implementation of the disk manager for testing
package mockdm

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/MikhailWahib/ledgerdb/internal/diskmanager"
)

// MockFile implements diskmanager.FileHandle for testing purposes.
// All handles opened on the same path share one MockFile, like handles on a real file.
type MockFile struct {
	mu   sync.Mutex
	data []byte
	name string

	// WriteErr, when set, is returned by WriteAt without touching the data
	WriteErr error
	// SyncErr, when set, is returned by Sync
	SyncErr error
	// ReadErr, when set, is returned by ReadAt
	ReadErr error

	// Writes counts successful WriteAt calls
	Writes int
}

// WriteAt writes len(b) bytes to the file starting at byte offset off
func (m *MockFile) WriteAt(b []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	// Extend the slice if needed
	requiredLen := int(off) + len(b)
	if requiredLen > len(m.data) {
		newData := make([]byte, requiredLen)
		copy(newData, m.data)
		m.data = newData
	}
	m.Writes++
	return copy(m.data[off:], b), nil
}

// ReadAt reads len(b) bytes from the file starting at byte offset off
func (m *MockFile) ReadAt(b []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Truncate resizes the mock file
func (m *MockFile) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int(size) <= len(m.data) {
		m.data = m.data[:size]
		return nil
	}
	newData := make([]byte, size)
	copy(newData, m.data)
	m.data = newData
	return nil
}

// Close closes the mock file
func (m *MockFile) Close() error {
	return nil
}

// Sync simulates syncing file contents to disk
func (m *MockFile) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SyncErr
}

// Stat returns file information
func (m *MockFile) Stat() (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &testFileInfo{size: int64(len(m.data)), name: m.name}, nil
}

// Bytes returns a copy of the file contents
func (m *MockFile) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetBytes replaces the file contents
func (m *MockFile) SetBytes(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), b...)
}

type testFileInfo struct {
	size int64
	name string
}

func (m *testFileInfo) Name() string       { return m.name }
func (m *testFileInfo) Size() int64        { return m.size }
func (m *testFileInfo) Mode() os.FileMode  { return 0644 }
func (m *testFileInfo) ModTime() time.Time { return time.Now() }
func (m *testFileInfo) IsDir() bool        { return false }
func (m *testFileInfo) Sys() any           { return nil }

// MockDiskManager implements diskmanager.DiskManager interface for testing
type MockDiskManager struct {
	mu    sync.Mutex
	files map[string]*MockFile

	// OpenErr, when set, is returned by Open
	OpenErr error
}

var _ diskmanager.DiskManager = (*MockDiskManager)(nil)

// NewMockDiskManager creates a new MockDiskManager instance
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*MockFile),
	}
}

// Open creates or opens a mock file
func (dm *MockDiskManager) Open(path string, _ int, _ os.FileMode) (diskmanager.FileHandle, error) {
	if dm.OpenErr != nil {
		return nil, dm.OpenErr
	}
	return dm.File(path), nil
}

// File returns the mock file at path, creating it if needed
func (dm *MockDiskManager) File(path string) *MockFile {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if file, exists := dm.files[path]; exists {
		return file
	}
	file := &MockFile{
		data: []byte{},
		name: path,
	}
	dm.files[path] = file
	return file
}

// Close closes a mock file
func (dm *MockDiskManager) Close(_ string) error {
	return nil
}
