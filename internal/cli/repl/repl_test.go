package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/listing"
)

var catalog = []domain.Client{
	{ID: "1", BusinessName: "Acme Corp", ContactPersonName: "Asha", Status: "active", City: "Pune"},
	{ID: "2", BusinessName: "Acme Labs", ContactPersonName: "Ravi", Status: "inactive", City: "Delhi"},
	{ID: "3", BusinessName: "Globex", ContactPersonName: "Hank", Status: "active", City: "Mumbai"},
}

// fakeDirectory serves catalog with search, status filter and paging.
type fakeDirectory struct {
	mu      sync.Mutex
	queries []domain.QueryOptions
	fail    error
}

func (d *fakeDirectory) List(ctx context.Context, q domain.QueryOptions) (domain.PageResult[domain.Client], error) {
	d.mu.Lock()
	d.queries = append(d.queries, q)
	fail := d.fail
	d.mu.Unlock()
	if fail != nil {
		return domain.PageResult[domain.Client]{}, fail
	}

	var matched []domain.Client
	for _, c := range catalog {
		if q.Search != "" && !strings.Contains(strings.ToLower(c.BusinessName), strings.ToLower(q.Search)) {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		matched = append(matched, c)
	}

	start := (q.Page - 1) * q.Limit
	end := min(start+q.Limit, len(matched))
	var items []domain.Client
	if start < len(matched) {
		items = matched[start:end]
	}
	pages := max(1, (len(matched)+q.Limit-1)/q.Limit)
	return domain.PageResult[domain.Client]{
		Items:      items,
		Pagination: domain.Pagination{CurrentPage: q.Page, TotalPages: pages, TotalItems: len(matched), PerPage: q.Limit},
	}, nil
}

func (d *fakeDirectory) Get(ctx context.Context, id string) (*domain.Client, error) {
	for _, c := range catalog {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &apierr.NormalizedError{Message: "Client not found", StatusCode: 404}
}

func (d *fakeDirectory) Queries() []domain.QueryOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.QueryOptions(nil), d.queries...)
}

func newBrowser(dir *fakeDirectory, in io.Reader, out *bytes.Buffer) *Browser {
	list := listing.NewListController[domain.Client](dir.List, listing.Config{
		PageSize: 2,
		Debounce: 10 * time.Millisecond,
	})
	return New(Config{
		List:    list,
		Lookup:  dir.Get,
		Printer: &output.Printer{Out: out, Err: io.Discard, Format: output.FormatTable},
		In:      in,
	})
}

func TestBrowser_RunSession(t *testing.T) {
	dir := &fakeDirectory{}
	var out bytes.Buffer
	input := strings.Join([]string{
		"next",
		"/acme",
		"status inactive",
		"show 3",
		"exit",
		"next", // never read
	}, "\n")

	b := newBrowser(dir, strings.NewReader(input), &out)
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Page 1 of 2, 3 clients",
		"Page 2 of 2, 3 clients",
		`Page 1 of 1, 2 clients [search="acme"]`,
		`Page 1 of 1, 1 clients [search="acme" status=inactive]`,
		"businessRegistrationNumber", // show prints every field
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	queries := dir.Queries()
	if len(queries) != 4 {
		t.Fatalf("fetches = %d, want 4: %+v", len(queries), queries)
	}
	if q := queries[2]; q.Search != "acme" || q.Page != 1 {
		t.Errorf("search fetch = %+v", q)
	}
	if b.list.Active() {
		t.Error("list should be deactivated after Run")
	}
}

func TestBrowser_Errors(t *testing.T) {
	dir := &fakeDirectory{}
	var out bytes.Buffer
	b := newBrowser(dir, strings.NewReader("prev\npage x\nfrobnicate\nshow 99\n"), &out)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Error: already on the first page",
		`Error: invalid page "x"`,
		`Error: unknown command "frobnicate"`,
		"Error: Client not found",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if n := len(dir.Queries()); n != 1 {
		t.Errorf("fetches = %d, rejected commands must not fetch", n)
	}
}

func TestBrowser_History(t *testing.T) {
	dir := &fakeDirectory{}
	var out bytes.Buffer
	b := newBrowser(dir, strings.NewReader("next\n/acme\nhistory\nhistory 1\nhistory zero\n"), &out)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	text := out.String()
	for _, want := range []string{"   1  next\n   2  /acme\n", "   1  history\n", `Error: invalid count "zero"`} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestBrowser_FetchErrorRendered(t *testing.T) {
	dir := &fakeDirectory{fail: &apierr.NormalizedError{Message: apierr.MsgConnectivity}}
	var out bytes.Buffer
	b := newBrowser(dir, strings.NewReader(""), &out)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Error: "+apierr.MsgConnectivity) {
		t.Errorf("output = %q", out.String())
	}
}

func TestBrowser_ContextCancel(t *testing.T) {
	dir := &fakeDirectory{}
	var out bytes.Buffer
	pr, pw := io.Pipe()
	defer pw.Close()

	b := newBrowser(dir, pr, &out)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop on cancel")
	}
}
