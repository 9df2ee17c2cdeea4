package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("session: backend closed")

// Backend is durable key-value storage for session entries.
//
// Set and Delete apply all of their keys in one operation: a reader never
// observes some of the keys written and others not.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores every entry in one operation.
	Set(entries map[string][]byte) error

	// Delete removes every key in one operation. Missing keys are ignored.
	Delete(keys ...string) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// File names under the session directory.
const (
	sessionFileName = "session.json"
	sessionKeyName  = "session.key"
	badgerDirName   = "session.db"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // file (default), badger or memory
	Dir     string // directory holding the session files
	Encrypt bool   // seal the file backend at rest
}

// Open creates the backend described by opts.
func Open(opts Options, log logger.Logger) (Backend, error) {
	if log == nil {
		log = logger.Default()
	}

	switch opts.Backend {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case "", BackendFile, BackendBadger:
	default:
		return nil, fmt.Errorf("session: unknown backend %q", opts.Backend)
	}

	if opts.Dir == "" {
		return nil, fmt.Errorf("session: dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: create dir: %w", err)
	}

	if opts.Backend == BackendBadger {
		b, err := OpenBadgerBackend(filepath.Join(opts.Dir, badgerDirName), log)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	var sealer *Sealer
	if opts.Encrypt {
		key, err := LoadOrCreateKey(filepath.Join(opts.Dir, sessionKeyName))
		if err != nil {
			return nil, err
		}
		sealer, err = NewSealer(key)
		if err != nil {
			return nil, err
		}
	}
	return NewFileBackend(filepath.Join(opts.Dir, sessionFileName), sealer, log), nil
}

// MemoryBackend keeps entries in a process-local map.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Set(entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for k, v := range entries {
		m.entries[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryBackend) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
