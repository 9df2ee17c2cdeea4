package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// FileBackend stores all entries in one JSON document. Every write
// replaces the document atomically (temp file + rename) with mode 0600.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer
	logger logger.Logger
	closed bool
}

// NewFileBackend creates a backend writing to path. A nil sealer stores
// the document in plain text.
func NewFileBackend(path string, sealer *Sealer, log logger.Logger) *FileBackend {
	if log == nil {
		log = logger.Default()
	}
	return &FileBackend{path: path, sealer: sealer, logger: log}
}

// Path returns the document location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false, ErrClosed
	}
	doc, err := b.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (b *FileBackend) Set(entries map[string][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	doc := b.loadForWrite()
	for k, v := range entries {
		doc[k] = string(v)
	}
	return b.store(doc)
}

func (b *FileBackend) Delete(keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	doc := b.loadForWrite()
	for _, k := range keys {
		delete(doc, k)
	}
	return b.store(doc)
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// load reads the document. A missing file is an empty document.
func (b *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	if b.sealer != nil {
		data, err = b.sealer.Open(data)
		if err != nil {
			return nil, err
		}
	}

	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", b.path, err)
	}
	return doc, nil
}

// loadForWrite is load for the write path: an unreadable document is
// replaced instead of blocking every later write.
func (b *FileBackend) loadForWrite() map[string]string {
	doc, err := b.load()
	if err != nil {
		b.logger.Warn("discarding unreadable session file", "path", b.path, "error", err)
		return map[string]string{}
	}
	return doc
}

func (b *FileBackend) store(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if b.sealer != nil {
		data, err = b.sealer.Seal(data)
		if err != nil {
			return err
		}
	}
	return writeFileAtomic(b.path, data, 0o600)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}

	if err := os.Rename(tmp, path); err == nil {
		return nil
	}

	defer os.Remove(tmp)

	if runtime.GOOS == "windows" {
		_ = os.Remove(path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("session: replace %s: %w", path, err)
	}
	return nil
}
