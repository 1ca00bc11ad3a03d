package store

import (
	"context"
	"errors"
	"os"
	"sync"
)

// Port persists the serialized cart blob. A nil blob with a nil error means
// nothing has been stored yet. Every Write replaces the whole blob; there is
// no field-level persistence.
type Port interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, blob []byte) error
}

// MemoryPort keeps the blob in memory. Used for tests and for sessions
// running without a database.
type MemoryPort struct {
	mu   sync.Mutex
	blob []byte
	// FailWrites simulates a full/broken storage backend in tests.
	FailWrites bool
}

func NewMemoryPort() *MemoryPort {
	return &MemoryPort{}
}

func (p *MemoryPort) Read(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blob == nil {
		return nil, nil
	}
	out := make([]byte, len(p.blob))
	copy(out, p.blob)
	return out, nil
}

func (p *MemoryPort) Write(_ context.Context, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWrites {
		return errors.New("write failed")
	}
	p.blob = make([]byte, len(blob))
	copy(p.blob, blob)
	return nil
}

// FilePort persists the blob to a single file.
type FilePort struct {
	path string
}

func NewFilePort(path string) *FilePort {
	return &FilePort{path: path}
}

func (p *FilePort) Read(_ context.Context) ([]byte, error) {
	blob, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return blob, nil
}

func (p *FilePort) Write(_ context.Context, blob []byte) error {
	return os.WriteFile(p.path, blob, 0o600)
}
