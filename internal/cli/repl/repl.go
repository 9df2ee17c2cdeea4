package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/listing"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// DefaultPrompt is shown before each input line.
const DefaultPrompt = "clients> "

// LookupFunc loads a single client for "show".
type LookupFunc func(ctx context.Context, id string) (*domain.Client, error)

// Config configures a Browser.
type Config struct {
	List    *listing.ListController[domain.Client]
	Lookup  LookupFunc
	Printer *output.Printer
	In      io.Reader
	History *History
	Prompt  string
	Logger  logger.Logger
}

// Browser is the Read-Eval-Print Loop behind "browse".
type Browser struct {
	list      *listing.ListController[domain.Client]
	lookup    LookupFunc
	printer   *output.Printer
	input     io.Reader
	history   *History
	completer *Completer
	prompt    string
	logger    logger.Logger

	mu     sync.Mutex
	latest listing.State[domain.Client]
	dirty  bool
}

// New creates a Browser. The list controller must not be active yet.
func New(cfg Config) *Browser {
	if cfg.History == nil {
		cfg.History = NewHistory("")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	b := &Browser{
		list:      cfg.List,
		lookup:    cfg.Lookup,
		printer:   cfg.Printer,
		input:     cfg.In,
		history:   cfg.History,
		completer: NewCompleter(),
		prompt:    cfg.Prompt,
		logger:    cfg.Logger,
	}
	b.list.OnChange(b.observe)
	return b
}

func (b *Browser) observe(s listing.State[domain.Client]) {
	b.mu.Lock()
	b.latest = s
	b.dirty = true
	b.mu.Unlock()
}

// Run activates the list, renders the first page and reads commands until
// exit, end of input or ctx is done. The list is deactivated on return.
func (b *Browser) Run(ctx context.Context) error {
	if err := b.history.Load(); err != nil {
		b.logger.Warn("load browse history", "error", err)
	}
	defer func() {
		if err := b.history.Save(); err != nil {
			b.logger.Warn("save browse history", "error", err)
		}
	}()

	b.list.Activate(ctx)
	defer b.list.Deactivate()
	b.list.Settle()
	b.render()

	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		scanner := bufio.NewScanner(b.input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	out := b.printer.Out
	for {
		fmt.Fprint(out, b.prompt)

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case err := <-readErr:
			fmt.Fprintln(out)
			return err
		case line := <-lines:
			quit, err := b.Execute(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "Error: %s\n", output.ErrorText(err))
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs one input line. It reports true when the line ends the
// session.
func (b *Browser) Execute(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	b.history.Add(line)

	if term, ok := strings.CutPrefix(line, "/"); ok {
		b.list.Search(strings.TrimSpace(term))
		b.refreshView()
		return false, nil
	}

	fields := strings.Fields(line)
	name, err := b.completer.Resolve(fields[0])
	if err != nil {
		return false, err
	}
	args := fields[1:]

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprint(b.printer.Out, Help())
		return false, nil
	case "show":
		return false, b.show(ctx, args)
	case "history":
		return false, b.listHistory(args)
	case "next":
		if !b.list.NextPage() {
			return false, errors.New("already on the last page")
		}
	case "prev":
		if !b.list.PrevPage() {
			return false, errors.New("already on the first page")
		}
	case "page":
		if len(args) != 1 {
			return false, errors.New("usage: page N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return false, fmt.Errorf("invalid page %q", args[0])
		}
		b.list.SetPage(n)
	case "sort":
		if len(args) < 1 || len(args) > 2 {
			return false, errors.New("usage: sort FIELD [asc|desc]")
		}
		order := domain.SortAsc
		if len(args) == 2 {
			order = domain.ParseSortOrder(args[1])
		}
		b.list.SetSort(args[0], order)
	case "status", "category":
		if err := b.list.SetFilter(name, strings.Join(args, " ")); err != nil {
			return false, err
		}
	case "reset":
		b.list.ResetFilters()
	case "refresh":
		b.list.Refresh()
	}

	b.refreshView()
	return false, nil
}

func (b *Browser) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show ID")
	}
	client, err := b.lookup(ctx, args[0])
	if err != nil {
		return errors.New(output.ErrorText(apierr.Normalize(err)))
	}
	p := *b.printer
	p.Wide = true
	return p.Print(client)
}

func (b *Browser) listHistory(args []string) error {
	n := 10
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		n = v
	}
	recent := b.history.Recent(n + 1)
	// The newest entry is this history command.
	if len(recent) > 0 {
		recent = recent[:len(recent)-1]
	}
	for i, line := range recent {
		fmt.Fprintf(b.printer.Out, "%4d  %s\n", i+1, line)
	}
	return nil
}

// refreshView waits for the list to settle and renders it if it changed.
func (b *Browser) refreshView() {
	b.list.Settle()
	b.render()
}

func (b *Browser) render() {
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return
	}
	st := b.latest
	b.dirty = false
	b.mu.Unlock()

	// A superseded or cancelled fetch can leave the last delivered
	// snapshot in loading state; the controller's current state is final.
	if st.Loading {
		st = b.list.State()
	}

	out := b.printer.Out
	if st.Err != nil {
		fmt.Fprintf(out, "Error: %s\n", output.ErrorText(st.Err))
		return
	}
	if len(st.Items) == 0 {
		fmt.Fprintln(out, "No clients found.")
	} else if err := b.printer.Print(st.Items); err != nil {
		fmt.Fprintf(out, "Error: %s\n", output.ErrorText(err))
	}
	fmt.Fprintln(out, footer(st))
}

func footer(st listing.State[domain.Client]) string {
	p := st.Pagination
	s := fmt.Sprintf("Page %d of %d, %d clients", p.CurrentPage, p.TotalPages, p.TotalItems)

	q := st.Query
	var parts []string
	if q.Search != "" {
		parts = append(parts, "search="+strconv.Quote(q.Search))
	}
	if q.Status != "" {
		parts = append(parts, "status="+q.Status)
	}
	if q.Category != "" {
		parts = append(parts, "category="+q.Category)
	}
	if q.SortBy != "" {
		parts = append(parts, "sort="+q.SortBy+" "+string(q.SortOrder))
	}
	if len(parts) > 0 {
		s += " [" + strings.Join(parts, " ") + "]"
	}
	return s
}
