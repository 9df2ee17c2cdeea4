package listing

import (
	"context"
	"sync"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/service"
)

// ClientAPI is the part of service.ClientService a detail view uses.
type ClientAPI interface {
	Get(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, in domain.ClientInput) (*service.MutationResult, error)
	Update(ctx context.Context, id string, in domain.ClientInput) (*service.MutationResult, error)
	Delete(ctx context.Context, id string) (*service.MutationResult, error)
}

// DetailState is a snapshot of a detail view.
type DetailState struct {
	Client   *domain.Client
	Loading  bool
	Saving   bool
	Deleting bool
	Err      *apierr.NormalizedError
	Success  string
}

// DetailController manages loading and editing one client. Calls block
// until the request finishes; the result is also returned to the caller.
type DetailController struct {
	api ClientAPI

	mu     sync.Mutex
	state  DetailState
	closed bool
}

// NewDetailController creates a DetailController.
func NewDetailController(api ClientAPI) *DetailController {
	return &DetailController{api: api}
}

// State returns the current snapshot.
func (d *DetailController) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Close detaches the controller from its view. Results of calls still in
// flight no longer change the state.
func (d *DetailController) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Load fetches client id. An empty id is a no-op.
func (d *DetailController) Load(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	d.begin(func(s *DetailState) { s.Loading = true })

	c, err := d.api.Get(ctx, id)
	d.end(func(s *DetailState) {
		s.Loading = false
		if err != nil {
			s.Err = apierr.Normalize(err)
			s.Client = nil
			return
		}
		s.Client = c
	})
	return err
}

// Create adds a client.
func (d *DetailController) Create(ctx context.Context, in domain.ClientInput) (*service.MutationResult, error) {
	return d.mutate(func() (*service.MutationResult, error) { return d.api.Create(ctx, in) },
		func(s *DetailState, on bool) { s.Saving = on }, false)
}

// Update saves changes to client id.
func (d *DetailController) Update(ctx context.Context, id string, in domain.ClientInput) (*service.MutationResult, error) {
	return d.mutate(func() (*service.MutationResult, error) { return d.api.Update(ctx, id, in) },
		func(s *DetailState, on bool) { s.Saving = on }, false)
}

// Delete removes client id.
func (d *DetailController) Delete(ctx context.Context, id string) (*service.MutationResult, error) {
	return d.mutate(func() (*service.MutationResult, error) { return d.api.Delete(ctx, id) },
		func(s *DetailState, on bool) { s.Deleting = on }, true)
}

// ClearError drops the error message.
func (d *DetailController) ClearError() {
	d.mu.Lock()
	d.state.Err = nil
	d.mu.Unlock()
}

// ClearSuccess drops the success message.
func (d *DetailController) ClearSuccess() {
	d.mu.Lock()
	d.state.Success = ""
	d.mu.Unlock()
}

// Reset returns to the empty state.
func (d *DetailController) Reset() {
	d.mu.Lock()
	d.state = DetailState{}
	d.mu.Unlock()
}

func (d *DetailController) mutate(call func() (*service.MutationResult, error), flag func(*DetailState, bool), deleting bool) (*service.MutationResult, error) {
	d.begin(func(s *DetailState) {
		flag(s, true)
		s.Success = ""
	})

	res, err := call()
	d.end(func(s *DetailState) {
		flag(s, false)
		if err != nil {
			s.Err = apierr.Normalize(err)
			return
		}
		s.Success = res.Message
		if deleting {
			s.Client = nil
		} else {
			s.Client = res.Client
		}
	})
	return res, err
}

func (d *DetailController) begin(fn func(*DetailState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.state.Err = nil
	fn(&d.state)
}

func (d *DetailController) end(fn func(*DetailState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	fn(&d.state)
}
