package overrides

import (
	"os"
	"path/filepath"
	"sync"
)

// Backend is the persistence slot for the override blob. Implementations
// read and write the whole blob at once; there is no field-level access.
type Backend interface {
	// Read returns the raw blob. ok is false when nothing has been
	// persisted yet, which is not an error.
	Read() (data []byte, ok bool, err error)
	Write(data []byte) error
}

// BlobName is the fixed file name of the persisted override blob,
// mirroring the single storage key of the original client.
const BlobName = "scene-overrides-v2.json"

// FileBackend stores the blob as one JSON file. Writes go through a temp
// file and rename so a crash never leaves a half-written blob.
type FileBackend struct {
	path string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{path: filepath.Join(dir, BlobName)}
}

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Read() ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *FileBackend) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

// MemoryBackend keeps the blob in memory. Used by tests and as the
// substitute store the persistence layer can be swapped for.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

// Seed pre-loads raw bytes, valid or not, as the persisted blob.
func (b *MemoryBackend) Seed(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.set = true
}

func (b *MemoryBackend) Read() ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return nil, false, nil
	}
	return append([]byte(nil), b.data...), true, nil
}

func (b *MemoryBackend) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.set = true
	return nil
}
