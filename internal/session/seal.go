package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrUnseal is returned when a sealed document cannot be opened with the
// current key.
var ErrUnseal = errors.New("session: decryption failed - wrong key or corrupted data")

// MasterKeyLength is the size of the random key stored in session.key.
const MasterKeyLength = 32

const sealInfo = "trakjobs-session-v1"

// Sealer encrypts the session document with ChaCha20-Poly1305 under a
// subkey derived from the master key with HKDF-SHA256.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the document key from master.
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) < 16 {
		return nil, errors.New("session: master key too short (minimum 16 bytes)")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. The random nonce is prepended to the result.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("session: nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(sealInfo)), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(data) < n {
		return nil, ErrUnseal
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], []byte(sealInfo))
	if err != nil {
		return nil, ErrUnseal
	}
	return plain, nil
}

// LoadOrCreateKey reads the master key at path, generating and saving a
// new random key with mode 0600 when the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != MasterKeyLength {
			return nil, fmt.Errorf("session: key file %s has %d bytes, want %d", path, len(key), MasterKeyLength)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("session: read key: %w", err)
	}

	key = make([]byte, MasterKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("session: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: create dir: %w", err)
	}
	if err := writeFileAtomic(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
