package listing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/metric"
)

// Fetch outcomes recorded on the list fetch counter.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeDropped = "dropped"
)

const settlePoll = 5 * time.Millisecond

// Fetcher loads one page for the given options.
type Fetcher[T any] func(ctx context.Context, q domain.QueryOptions) (domain.PageResult[T], error)

// State is a snapshot of a list view.
type State[T any] struct {
	Items      []T
	Loading    bool
	Err        *apierr.NormalizedError
	Pagination domain.Pagination
	Query      domain.QueryOptions

	seq uint64
}

// Config configures a ListController.
type Config struct {
	PageSize int           // default 10
	Debounce time.Duration // default 300ms
	Metrics  *metric.Registry
	Logger   logger.Logger
}

// ListController manages the state of one list view.
type ListController[T any] struct {
	fetch    Fetcher[T]
	defaults domain.QueryOptions
	debounce *Debouncer
	metrics  *metric.Registry
	logger   logger.Logger

	mu     sync.Mutex
	state  State[T]
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	search uint64 // ticket of the latest debounced search
	wg     sync.WaitGroup

	obsMu     sync.Mutex
	observers []func(State[T])
	delivered uint64
}

// NewListController creates an inactive controller. Nothing is fetched
// until Activate.
func NewListController[T any](fetch Fetcher[T], cfg Config) *ListController[T] {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	defaults := domain.DefaultQueryOptions(cfg.PageSize)

	return &ListController[T]{
		fetch:    fetch,
		defaults: defaults,
		debounce: NewDebouncer(cfg.Debounce),
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		state: State[T]{
			Pagination: domain.InitialPagination(defaults.Limit),
			Query:      defaults,
		},
	}
}

// OnChange registers fn to receive every new snapshot. Snapshots are
// delivered in order; a snapshot older than one already delivered is
// skipped.
func (c *ListController[T]) OnChange(fn func(State[T])) {
	c.obsMu.Lock()
	c.observers = append(c.observers, fn)
	c.obsMu.Unlock()
}

// State returns the current snapshot.
func (c *ListController[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Active reports whether the controller is between Activate and Deactivate.
func (c *ListController[T]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx != nil
}

// Activate starts the controller and issues the first fetch. Fetches run
// under a child of ctx that Deactivate cancels.
func (c *ListController[T]) Activate(ctx context.Context) {
	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	c.load(0)
}

// Deactivate stops the controller: the pending debounced search is
// cancelled and responses still in flight are dropped.
func (c *ListController[T]) Deactivate() {
	c.debounce.Cancel()

	c.mu.Lock()
	c.search++
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = nil, nil
	c.gen++
	c.state.Loading = false
	c.state.seq++
	c.mu.Unlock()
}

// Wait blocks until every fetch started so far has finished.
func (c *ListController[T]) Wait() {
	c.wg.Wait()
}

// Settle waits for a pending debounced search to fire, then for every
// fetch to finish.
func (c *ListController[T]) Settle() {
	for c.debounce.Pending() {
		time.Sleep(settlePoll)
	}
	c.wg.Wait()
}

// Search sets the search text and returns to page 1. The fetch fires
// once input has been quiet for the debounce delay.
func (c *ListController[T]) Search(term string) {
	snap, ok := c.update(func(q domain.QueryOptions) domain.QueryOptions {
		return q.WithSearch(term)
	})
	if !ok {
		return
	}
	c.publish(snap)

	c.mu.Lock()
	c.search++
	ticket := c.search
	c.mu.Unlock()
	c.debounce.Schedule(func() { c.load(ticket) })
}

// SearchPending reports whether a debounced search has not fired yet.
func (c *ListController[T]) SearchPending() bool {
	return c.debounce.Pending()
}

// SetFilter sets a named filter (status or category) and returns to page 1.
func (c *ListController[T]) SetFilter(name, value string) error {
	c.mu.Lock()
	q, err := c.state.Query.WithFilter(name, value)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.setQuery(q)
	return nil
}

// SetSort sets the sort column and direction, keeping the page.
func (c *ListController[T]) SetSort(by string, order domain.SortOrder) {
	c.apply(func(q domain.QueryOptions) domain.QueryOptions {
		return q.WithSort(by, order)
	})
}

// SetPage moves to page n, keeping filters and sort.
func (c *ListController[T]) SetPage(n int) {
	c.apply(func(q domain.QueryOptions) domain.QueryOptions {
		return q.WithPage(n)
	})
}

// NextPage moves forward when a next page exists.
func (c *ListController[T]) NextPage() bool {
	st := c.State()
	if !st.Pagination.HasNext() {
		return false
	}
	c.SetPage(st.Query.Page + 1)
	return true
}

// PrevPage moves back when a previous page exists.
func (c *ListController[T]) PrevPage() bool {
	st := c.State()
	if st.Query.Page <= 1 {
		return false
	}
	c.SetPage(st.Query.Page - 1)
	return true
}

// Refresh re-issues the current query.
func (c *ListController[T]) Refresh() {
	c.cancelSearch()
	c.load(0)
}

// ResetFilters restores the default options and fetches.
func (c *ListController[T]) ResetFilters() {
	c.setQuery(c.defaults)
}

func (c *ListController[T]) setQuery(q domain.QueryOptions) {
	c.apply(func(domain.QueryOptions) domain.QueryOptions { return q })
}

// apply changes the query and fetches immediately. A pending debounced
// search is folded into this fetch.
func (c *ListController[T]) apply(fn func(domain.QueryOptions) domain.QueryOptions) {
	if _, ok := c.update(fn); !ok {
		return
	}
	c.cancelSearch()
	c.load(0)
}

// cancelSearch drops the pending debounced search. A timer that already
// fired finds its ticket stale in load and starts nothing.
func (c *ListController[T]) cancelSearch() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.search++
	c.mu.Unlock()
}

// update applies fn to the query. It reports false when the controller is
// inactive.
func (c *ListController[T]) update(fn func(domain.QueryOptions) domain.QueryOptions) (State[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Query = fn(c.state.Query).Normalized()
	c.state.seq++
	return c.snapshotLocked(), c.ctx != nil
}

// load starts a fetch of the current query. A debounced search passes its
// ticket; zero means the call is not debounced.
func (c *ListController[T]) load(ticket uint64) {
	c.mu.Lock()
	if c.ctx == nil || (ticket != 0 && ticket != c.search) {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen, ctx, q := c.gen, c.ctx, c.state.Query
	c.state.Loading = true
	c.state.Err = nil
	c.state.seq++
	snap := c.snapshotLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.publish(snap)

	go func() {
		defer c.wg.Done()
		res, err := c.fetch(ctx, q)
		c.finish(ctx, gen, res, err)
	}()
}

func (c *ListController[T]) finish(ctx context.Context, gen uint64, res domain.PageResult[T], err error) {
	c.mu.Lock()
	if ctx.Err() != nil || gen != c.gen {
		c.mu.Unlock()
		c.metrics.RecordListFetch(OutcomeDropped)
		c.logger.Debug("list response dropped", "generation", gen)
		return
	}

	if err != nil {
		c.state.Err = apierr.Normalize(err)
		c.state.Items = nil
		c.metrics.RecordListFetch(OutcomeError)
	} else {
		c.state.Items = res.Items
		c.state.Pagination = res.Pagination
		c.metrics.RecordListFetch(OutcomeOK)
	}
	c.state.Loading = false
	c.state.seq++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *ListController[T]) snapshotLocked() State[T] {
	s := c.state
	s.Items = slices.Clone(c.state.Items)
	return s
}

func (c *ListController[T]) publish(s State[T]) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	if s.seq <= c.delivered {
		return
	}
	c.delivered = s.seq
	for _, fn := range c.observers {
		fn(s)
	}
}
