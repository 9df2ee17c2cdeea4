package listing

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

// SearchFunc looks clients up by free text.
type SearchFunc func(ctx context.Context, query string) ([]domain.Client, error)

// SearchState is a snapshot of a search box.
type SearchState struct {
	Query     string
	Results   []domain.Client
	Searching bool
	Err       *apierr.NormalizedError
}

// SearchController runs a debounced lookup for a search box.
type SearchController struct {
	search   SearchFunc
	debounce *Debouncer

	mu     sync.Mutex
	state  SearchState
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup
	notify func(SearchState)
}

// NewSearchController creates a SearchController bound to ctx. A
// non-positive delay uses DefaultDebounce.
func NewSearchController(ctx context.Context, search SearchFunc, delay time.Duration) *SearchController {
	ctx, cancel := context.WithCancel(ctx)
	return &SearchController{
		search:   search,
		debounce: NewDebouncer(delay),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnChange sets the observer called after each completed lookup.
func (s *SearchController) OnChange(fn func(SearchState)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// State returns the current snapshot.
func (s *SearchController) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = slices.Clone(s.state.Results)
	return st
}

// Search records query and schedules the lookup. A blank query clears the
// results at once and cancels the pending lookup.
func (s *SearchController) Search(query string) {
	s.mu.Lock()
	s.state.Query = query
	s.gen++
	gen := s.gen
	if strings.TrimSpace(query) == "" {
		s.state.Results = nil
		s.state.Searching = false
		s.mu.Unlock()
		s.debounce.Cancel()
		return
	}
	s.state.Searching = true
	s.mu.Unlock()

	s.debounce.Schedule(func() { s.run(gen, query) })
}

// Clear empties the query, results and error and cancels the pending lookup.
func (s *SearchController) Clear() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.gen++
	s.state = SearchState{}
	s.mu.Unlock()
}

// Close cancels the pending lookup and drops results still in flight.
func (s *SearchController) Close() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.gen++
	s.state.Searching = false
	s.mu.Unlock()
	s.cancel()
}

// Wait blocks until every lookup started so far has finished.
func (s *SearchController) Wait() {
	s.wg.Wait()
}

func (s *SearchController) run(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()
	defer s.wg.Done()

	results, err := s.search(ctx, query)

	s.mu.Lock()
	if gen != s.gen || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state.Err = apierr.Normalize(err)
		s.state.Results = nil
	} else {
		s.state.Err = nil
		s.state.Results = results
	}
	s.state.Searching = false
	notify := s.notify
	st := s.state
	st.Results = slices.Clone(s.state.Results)
	s.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}
