package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/session"
)

// apiRequest is one request seen by the mock API.
type apiRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Auth        string
	Body        []byte
}

// JSON decodes the request body as a JSON object.
func (r apiRequest) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		t.Fatalf("decode %s %s body: %v", r.Method, r.Path, err)
	}
	return m
}

// mockAPI answers "METHOD /path" routes with canned JSON and records every
// request.
type mockAPI struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []apiRequest
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()
	m := &mockAPI{routes: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.requests = append(m.requests, apiRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
			Body:        body,
		})
		h, ok := m.routes[r.Method+" "+r.URL.Path]
		m.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusNotFound, `{"message":"Not found"}`)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		h(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// reply registers a fixed response for method and path.
func (m *mockAPI) reply(method, path string, status int, body string) {
	m.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (m *mockAPI) handle(method, path string, h http.HandlerFunc) {
	m.mu.Lock()
	m.routes[method+" "+path] = h
	m.mu.Unlock()
}

// calls returns the recorded requests.
func (m *mockAPI) calls() []apiRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]apiRequest(nil), m.requests...)
}

// last returns the last request to method and path.
func (m *mockAPI) last(t *testing.T, method, path string) apiRequest {
	t.Helper()
	calls := m.calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i]
		}
	}
	t.Fatalf("no %s %s request; got %+v", method, path, calls)
	return apiRequest{}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// cliHarness runs the CLI against a mock API with an isolated home and
// session directory.
type cliHarness struct {
	t   *testing.T
	api *mockAPI
	dir string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &cliHarness{t: t, api: newMockAPI(t), dir: t.TempDir()}
}

// result is the outcome of one CLI invocation.
type result struct {
	Stdout string
	Stderr string
	Err    error
}

// run executes the CLI with args after the harness's global flags. stdin
// feeds prompts.
func (h *cliHarness) run(stdin string, args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"trakjobs-cli", "--server", h.api.URL, "--session-dir", h.dir}, args...)
	err := app.Run(full)
	return result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// mustRun runs the CLI and fails the test on error.
func (h *cliHarness) mustRun(stdin string, args ...string) result {
	h.t.Helper()
	res := h.run(stdin, args...)
	if res.Err != nil {
		h.t.Fatalf("%v: unexpected error: %s\nstderr: %s", args, ErrorText(res.Err), res.Stderr)
	}
	return res
}

// openStore opens the harness's file session.
func (h *cliHarness) openStore() *session.Store {
	h.t.Helper()
	b, err := session.Open(session.Options{Backend: session.BackendFile, Dir: h.dir}, nil)
	if err != nil {
		h.t.Fatalf("open session: %v", err)
	}
	store := session.NewStore(b)
	h.t.Cleanup(func() { store.Close() })
	return store
}

// signIn stores a session the way a successful login would.
func (h *cliHarness) signIn(token string, user domain.User) {
	h.t.Helper()
	b, err := session.Open(session.Options{Backend: session.BackendFile, Dir: h.dir}, nil)
	if err != nil {
		h.t.Fatalf("open session: %v", err)
	}
	store := session.NewStore(b)
	defer store.Close()
	if err := store.Replace(domain.Session{Token: token, User: user}); err != nil {
		h.t.Fatalf("store session: %v", err)
	}
}

// vendorUser is a signed-in user scoped to vendor 7.
var vendorUser = domain.User{"id": "42", "name": "Asha Rao", "email": "asha@example.com", "vendor_id": "7"}

const clientsPath = "/vendors/7/clients"
