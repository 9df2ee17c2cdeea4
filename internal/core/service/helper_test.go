package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/session"
)

// recorded is one request seen by the fake API server.
type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Header http.Header
}

// fakeAPI is an httptest server answering every request with the same
// status and body, recording what it received.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			json.Unmarshal(data, &rec.Body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		status, body := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) Requests() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func (f *fakeAPI) Last(t *testing.T) recorded {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("no request received")
	}
	return reqs[len(reqs)-1]
}

// newSession returns a memory-backed store holding token and user.
func newSession(t *testing.T, token string, user domain.User) *session.Store {
	t.Helper()
	s := session.NewStore(session.NewMemoryBackend())
	if err := s.Replace(domain.Session{Token: token, User: user}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	return s
}

func newClient(f *fakeAPI, store *session.Store) *connection.HTTPClient {
	return connection.NewHTTPClient(f.URL, store)
}
