package session

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// failingBackend returns err from every call.
type failingBackend struct{ err error }

func (f failingBackend) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Set(map[string][]byte) error      { return f.err }
func (f failingBackend) Delete(...string) error           { return f.err }
func (f failingBackend) Close() error                     { return nil }

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	key, err := LoadOrCreateKey(filepath.Join(dir, sessionKeyName))
	if err != nil {
		t.Fatalf("LoadOrCreateKey() error = %v", err)
	}
	sealer, err := NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}
	bdb, err := OpenBadgerBackend(filepath.Join(dir, "badger"), nil)
	if err != nil {
		t.Fatalf("OpenBadgerBackend() error = %v", err)
	}
	t.Cleanup(func() { bdb.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   NewFileBackend(filepath.Join(dir, "plain.json"), nil, nil),
		"sealed": NewFileBackend(filepath.Join(dir, "sealed.json"), sealer, nil),
		"badger": bdb,
	}
}

func TestStore_IsAuthenticated(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b)

			for _, token := range []string{"x", "T", "eyJhbGciOi.payload.sig"} {
				if err := s.SetToken(token); err != nil {
					t.Fatalf("SetToken(%q) error = %v", token, err)
				}
				if !s.IsAuthenticated() {
					t.Errorf("IsAuthenticated() after SetToken(%q) = false", token)
				}
				if got, _ := s.Token(); got != token {
					t.Errorf("Token() = %q, want %q", got, token)
				}
			}

			if err := s.ClearToken(); err != nil {
				t.Fatalf("ClearToken() error = %v", err)
			}
			if s.IsAuthenticated() {
				t.Error("IsAuthenticated() after ClearToken() = true")
			}
		})
	}
}

func TestStore_ReplaceAndClear(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b)
			sess := domain.Session{Token: "T", User: domain.User{"id": 1, "vendor_id": 9}}

			if err := s.Replace(sess); err != nil {
				t.Fatalf("Replace() error = %v", err)
			}
			got := s.Session()
			if got.Token != "T" {
				t.Errorf("Session().Token = %q, want T", got.Token)
			}
			if id, ok := s.VendorID(); !ok || id != "9" {
				t.Errorf("VendorID() = (%q, %v), want (\"9\", true)", id, ok)
			}

			if err := s.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if _, ok := s.Token(); ok {
				t.Error("Token() present after Clear()")
			}
			if _, ok := s.User(); ok {
				t.Error("User() present after Clear()")
			}
		})
	}
}

func TestStore_ClearTokenKeepsUser(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if err := s.Replace(domain.Session{Token: "T", User: domain.User{"id": 1}}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearToken(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.User(); !ok {
		t.Error("ClearToken() should keep the user record")
	}
}

func TestStore_UserMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated", `{"id":`},
		{"not json", `not-json`},
		{"array", `[1,2,3]`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			if err := b.Set(map[string][]byte{UserKey: []byte(tt.raw)}); err != nil {
				t.Fatal(err)
			}
			s := NewStore(b)

			u, ok := s.User()
			if ok || u != nil {
				t.Errorf("User() = (%v, %v), want absent", u, ok)
			}
			if _, ok := s.VendorID(); ok {
				t.Error("VendorID() should be absent for malformed user")
			}
		})
	}
}

func TestStore_FailSoftReads(t *testing.T) {
	s := NewStore(failingBackend{err: errors.New("disk on fire")})

	if _, ok := s.Token(); ok {
		t.Error("Token() should be absent on backend error")
	}
	if _, ok := s.User(); ok {
		t.Error("User() should be absent on backend error")
	}
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() should be false on backend error")
	}
	if err := s.SetToken("T"); err == nil {
		t.Error("SetToken() should report backend errors")
	}
}

func TestStore_WithLoggerReceivesWarnings(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}

	b := NewMemoryBackend()
	if err := b.Set(map[string][]byte{UserKey: []byte("not-json")}); err != nil {
		t.Fatal(err)
	}
	s := NewStore(b, WithLogger(log))

	if _, ok := s.User(); ok {
		t.Fatal("User() should be absent for malformed user")
	}
	if !strings.Contains(buf.String(), "session user record malformed") {
		t.Errorf("log output = %q, want malformed record warning", buf.String())
	}
}

func TestStore_SetTokenEmptyClears(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	_ = s.SetToken("T")
	if err := s.SetToken(""); err != nil {
		t.Fatal(err)
	}
	if s.IsAuthenticated() {
		t.Error("SetToken(\"\") should clear the token")
	}
}

func TestStore_SetUser(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if err := s.SetUser(domain.User{"vendorId": "v-1"}); err != nil {
		t.Fatal(err)
	}
	if id, ok := s.VendorID(); !ok || id != "v-1" {
		t.Errorf("VendorID() = (%q, %v)", id, ok)
	}
	if err := s.SetUser(nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.User(); ok {
		t.Error("SetUser(nil) should remove the user")
	}
}
