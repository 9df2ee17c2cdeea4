package service

import (
	"context"
	"strings"

	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// Auth endpoints.
const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathForgot   = "/auth/password/forgot"
	pathReset    = "/auth/password/reset"
	pathProfile  = "/auth/profile"
)

// SessionStore is the session state AuthService writes.
type SessionStore interface {
	Token() (string, bool)
	Replace(sess domain.Session) error
	SetUser(u domain.User) error
	Clear() error
}

// AuthService signs users in and out.
type AuthService struct {
	api     API
	session SessionStore
	nav     connection.Navigator
	logger  logger.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(api API, session SessionStore, opts ...Option) *AuthService {
	o := buildOptions(opts)
	return &AuthService{
		api:     api,
		session: session,
		nav:     o.nav,
		logger:  o.logger,
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token   string
	User    domain.User
	Message string
}

// Reply is the body of an auth endpoint that returns no session.
type Reply struct {
	Message string
	Data    map[string]any
}

// Login posts the credentials and stores the returned token and user
// together. The response may be flat or wrapped in "data"; the token may
// be named access_token, token or accessToken.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, fail(s.logger, "login", err, identityFields)
	}

	resp, err := s.api.Post(ctx, pathLogin, domain.Credentials{
		Email:    strings.TrimSpace(creds.Email),
		Password: creds.Password,
	})
	if err != nil {
		return nil, fail(s.logger, "login", err, identityFields)
	}

	data, err := unwrapData(resp.Body)
	if err != nil {
		return nil, fail(s.logger, "login", err, identityFields)
	}

	var token string
	for _, key := range []string{"access_token", "token", "accessToken"} {
		if t, ok := data[key].(string); ok && t != "" {
			token = t
			break
		}
	}
	if token == "" {
		return nil, fail(s.logger, "login", domain.ErrNoAccessToken, identityFields)
	}

	var user domain.User
	if u, ok := data["user"].(map[string]any); ok {
		user = domain.User(u)
	}

	if err := s.session.Replace(domain.Session{Token: token, User: user}); err != nil {
		return nil, fail(s.logger, "login", err, identityFields)
	}
	s.logger.Debug("logged in", "user_id", user.ID())

	return &LoginResult{
		Token:   token,
		User:    user,
		Message: message(resp.Body, "Login successful"),
	}, nil
}

// Register creates an account. Field errors use the form's field names.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*Reply, error) {
	if err := reg.Validate(); err != nil {
		return nil, fail(s.logger, "register", err, identityFields)
	}

	payload := map[string]any{
		registerFields.Wire("businessName"):         strings.TrimSpace(reg.BusinessName),
		registerFields.Wire("websiteName"):          strings.TrimSpace(reg.WebsiteName),
		registerFields.Wire("fullName"):             strings.TrimSpace(reg.FullName),
		registerFields.Wire("email"):                strings.TrimSpace(reg.Email),
		registerFields.Wire("mobileNumber"):         strings.TrimSpace(reg.MobileNumber),
		registerFields.Wire("password"):             reg.Password,
		registerFields.Wire("passwordConfirmation"): reg.PasswordConfirmation,
		registerFields.Wire("agreeToTerms"):         reg.AgreeToTerms,
	}
	return s.post(ctx, "register", pathRegister, payload, registerFields, "Registration successful")
}

// ForgotPassword asks the server to mail a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, req domain.PasswordForgot) (*Reply, error) {
	if err := req.Validate(); err != nil {
		return nil, fail(s.logger, "forgot_password", err, identityFields)
	}
	payload := map[string]any{"email": strings.TrimSpace(req.Email)}
	return s.post(ctx, "forgot_password", pathForgot, payload, identityFields, "Password reset link sent")
}

// ResetPassword sets a new password with the token from a reset link.
func (s *AuthService) ResetPassword(ctx context.Context, req domain.PasswordReset) (*Reply, error) {
	if err := req.Validate(); err != nil {
		return nil, fail(s.logger, "reset_password", err, identityFields)
	}

	payload := map[string]any{
		resetFields.Wire("email"):                strings.TrimSpace(req.Email),
		resetFields.Wire("token"):                strings.TrimSpace(req.Token),
		resetFields.Wire("password"):             req.Password,
		resetFields.Wire("passwordConfirmation"): req.PasswordConfirmation,
	}
	return s.post(ctx, "reset_password", pathReset, payload, resetFields, "Password reset successful")
}

// Logout clears the session and navigates to the login route. No request
// is sent.
func (s *AuthService) Logout() error {
	if err := s.session.Clear(); err != nil {
		return fail(s.logger, "logout", err, identityFields)
	}
	if s.nav != nil {
		s.nav.Navigate(connection.LoginRoute)
	}
	return nil
}

// Profile fetches the signed-in user and refreshes the stored record.
func (s *AuthService) Profile(ctx context.Context) (domain.User, error) {
	if _, ok := s.session.Token(); !ok {
		return nil, fail(s.logger, "profile", domain.ErrNotAuthenticated, identityFields)
	}

	resp, err := s.api.Get(ctx, pathProfile, nil)
	if err != nil {
		return nil, fail(s.logger, "profile", err, identityFields)
	}
	data, err := unwrapData(resp.Body)
	if err != nil {
		return nil, fail(s.logger, "profile", err, identityFields)
	}

	user := domain.User(data)
	if u, ok := data["user"].(map[string]any); ok {
		user = domain.User(u)
	}
	if err := s.session.SetUser(user); err != nil {
		return nil, fail(s.logger, "profile", err, identityFields)
	}
	return user, nil
}

func (s *AuthService) post(ctx context.Context, op, path string, payload map[string]any, fields fieldTable, def string) (*Reply, error) {
	resp, err := s.api.Post(ctx, path, payload)
	if err != nil {
		return nil, fail(s.logger, op, err, fields)
	}

	reply := &Reply{Message: message(resp.Body, def)}
	if v, err := decodeJSON(resp.Body); err == nil {
		reply.Data, _ = v.(map[string]any)
	}
	return reply, nil
}
