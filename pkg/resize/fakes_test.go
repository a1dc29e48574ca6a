package resize

import (
	"bytes"
	"errors"
	"io/fs"
	"sync"
)

// memFS is an in-memory FileSystem that records every call.
type memFS struct {
	mu      sync.Mutex
	files   map[string][]byte
	calls   []string
	failOn  string
	created map[string]*memFile
}

func newMemFS(files map[string][]byte) *memFS {
	if files == nil {
		files = map[string][]byte{}
	}
	return &memFS{files: files, created: map[string]*memFile{}}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "read:"+path)
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *memFS) Create(path string) (WriteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create:"+path)
	if m.failOn == path {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
	}
	f := &memFile{}
	m.created[path] = f
	return f, nil
}

func (m *memFS) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type memFile struct {
	bytes.Buffer
	synced bool
	closed bool
}

func (f *memFile) Sync() error  { f.synced = true; return nil }
func (f *memFile) Close() error { f.closed = true; return nil }

var errBrokenStream = errors.New("connection reset")
