package service

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// ScopeSource resolves the vendor the session belongs to.
type ScopeSource interface {
	VendorID() (string, bool)
}

// ClientService manages the clients of the signed-in vendor under
// /vendors/{vendorId}/clients.
type ClientService struct {
	api    API
	scope  ScopeSource
	logger logger.Logger
}

// NewClientService creates a ClientService.
func NewClientService(api API, scope ScopeSource, opts ...Option) *ClientService {
	o := buildOptions(opts)
	return &ClientService{
		api:    api,
		scope:  scope,
		logger: o.logger,
	}
}

// MutationResult is the outcome of a create, update or delete.
type MutationResult struct {
	Message string
	Client  *domain.Client // nil after delete
}

// LogoResult is the outcome of a logo upload.
type LogoResult struct {
	Message string
	LogoURL string
}

// basePath resolves the vendor collection path. It fails without touching
// the network when the session carries no vendor id.
func (s *ClientService) basePath() (string, error) {
	vendorID, ok := s.scope.VendorID()
	if !ok {
		return "", domain.ErrMissingVendorScope
	}
	return "/vendors/" + url.PathEscape(vendorID) + "/clients", nil
}

func (s *ClientService) itemPath(id string) (string, error) {
	base, err := s.basePath()
	if err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.ErrMissingArgument.WithDetails("client id")
	}
	return base + "/" + url.PathEscape(id), nil
}

// List fetches one page of clients.
func (s *ClientService) List(ctx context.Context, q domain.QueryOptions) (domain.PageResult[domain.Client], error) {
	var empty domain.PageResult[domain.Client]

	base, err := s.basePath()
	if err != nil {
		return empty, fail(s.logger, "list_clients", err, clientFields)
	}

	resp, err := s.api.Get(ctx, base, listQuery(q))
	if err != nil {
		return empty, fail(s.logger, "list_clients", err, clientFields)
	}

	env, err := parseListEnvelope(resp.Body, "clients")
	if err != nil {
		return empty, fail(s.logger, "list_clients", err, clientFields)
	}
	s.logger.Debug("clients listed", "envelope", env.kind.String(), "items", len(env.items))

	return domain.PageResult[domain.Client]{
		Items:      decodeClients(env.items),
		Pagination: env.pagination(q.Limit),
	}, nil
}

// listQuery translates list options to query parameters. Unset values are
// omitted; the sort key is translated to its wire name.
func listQuery(q domain.QueryOptions) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.SortBy != "" {
		v.Set("sort_by", clientFields.Wire(q.SortBy))
	}
	if q.SortOrder != "" {
		v.Set("sort_order", string(q.SortOrder))
	}
	return v
}

// Get fetches one client.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, fail(s.logger, "get_client", err, clientFields)
	}

	resp, err := s.api.Get(ctx, path, nil)
	if err != nil {
		return nil, fail(s.logger, "get_client", err, clientFields)
	}
	data, err := unwrapData(resp.Body)
	if err != nil {
		return nil, fail(s.logger, "get_client", err, clientFields)
	}

	c := decodeClient(data)
	return &c, nil
}

// Create adds a client.
func (s *ClientService) Create(ctx context.Context, in domain.ClientInput) (*MutationResult, error) {
	base, err := s.basePath()
	if err != nil {
		return nil, fail(s.logger, "create_client", err, clientFields)
	}
	payload, err := encodeClient(in)
	if err != nil {
		return nil, fail(s.logger, "create_client", err, clientFields)
	}

	resp, err := s.api.Post(ctx, base, payload)
	if err != nil {
		return nil, fail(s.logger, "create_client", err, clientFields)
	}
	return s.mutation(resp.Body, "Client created successfully")
}

// Update replaces the editable fields of a client.
func (s *ClientService) Update(ctx context.Context, id string, in domain.ClientInput) (*MutationResult, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, fail(s.logger, "update_client", err, clientFields)
	}
	payload, err := encodeClient(in)
	if err != nil {
		return nil, fail(s.logger, "update_client", err, clientFields)
	}

	resp, err := s.api.Put(ctx, path, payload)
	if err != nil {
		return nil, fail(s.logger, "update_client", err, clientFields)
	}
	return s.mutation(resp.Body, "Client updated successfully")
}

// Delete removes a client.
func (s *ClientService) Delete(ctx context.Context, id string) (*MutationResult, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, fail(s.logger, "delete_client", err, clientFields)
	}

	resp, err := s.api.Delete(ctx, path)
	if err != nil {
		return nil, fail(s.logger, "delete_client", err, clientFields)
	}
	return &MutationResult{Message: message(resp.Body, "Client deleted successfully")}, nil
}

// Search looks clients up by free text via GET .../search?q=.
func (s *ClientService) Search(ctx context.Context, query string) ([]domain.Client, error) {
	base, err := s.basePath()
	if err != nil {
		return nil, fail(s.logger, "search_clients", err, clientFields)
	}

	resp, err := s.api.Get(ctx, base+"/search", url.Values{"q": {query}})
	if err != nil {
		return nil, fail(s.logger, "search_clients", err, clientFields)
	}
	items, err := unwrapList(resp.Body)
	if err != nil {
		return nil, fail(s.logger, "search_clients", err, clientFields)
	}
	return decodeClients(items), nil
}

// UploadLogo uploads a logo image as multipart field "logo".
func (s *ClientService) UploadLogo(ctx context.Context, id, filename string, file io.Reader) (*LogoResult, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return nil, fail(s.logger, "upload_logo", err, clientFields)
	}

	resp, err := s.api.PostMultipart(ctx, path+"/logo", "logo", filename, file)
	if err != nil {
		return nil, fail(s.logger, "upload_logo", err, clientFields)
	}

	res := &LogoResult{Message: message(resp.Body, "Logo uploaded successfully")}
	if v, err := decodeJSON(resp.Body); err == nil {
		if obj, ok := v.(map[string]any); ok {
			res.LogoURL = stringValue(obj["logo_url"])
			if res.LogoURL == "" {
				res.LogoURL = stringValue(obj["url"])
			}
		}
	}
	return res, nil
}

func (s *ClientService) mutation(body []byte, def string) (*MutationResult, error) {
	res := &MutationResult{Message: message(body, def)}
	if data, err := unwrapData(body); err == nil {
		c := decodeClient(data)
		res.Client = &c
	}
	return res, nil
}
