package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/session"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat access_token", `{"access_token":"T","user":{"id":1,"vendor_id":9}}`},
		{"data envelope", `{"data":{"token":"T","user":{"id":1,"vendor_id":9}},"message":"Welcome"}`},
		{"camel case token", `{"accessToken":"T","user":{"id":1,"vendorId":9}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, http.StatusOK, tt.body)
			store := session.NewStore(session.NewMemoryBackend())
			svc := NewAuthService(newClient(api, store), store)

			res, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "x"})
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if res.Token != "T" {
				t.Errorf("Token = %q", res.Token)
			}
			if tok, ok := store.Token(); !ok || tok != "T" {
				t.Errorf("stored token = %q, %v", tok, ok)
			}
			if !store.IsAuthenticated() {
				t.Error("IsAuthenticated() = false")
			}
			if id, ok := store.VendorID(); !ok || id != "9" {
				t.Errorf("VendorID() = %q, %v; want 9", id, ok)
			}

			req := api.Last(t)
			if req.Path != "/auth/login" || req.Body["email"] != "a@b.com" || req.Body["password"] != "x" {
				t.Errorf("request = %s %v", req.Path, req.Body)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("login should be sent without a bearer token")
			}
		})
	}
}

func TestAuthService_LoginNoToken(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"user":{"id":1}}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "x"})
	if !errors.Is(err, domain.ErrNoAccessToken) {
		t.Fatalf("error = %v, want ErrNoAccessToken", err)
	}
	if store.IsAuthenticated() {
		t.Error("nothing should be stored")
	}
}

func TestAuthService_LoginRejected(t *testing.T) {
	api := newFakeAPI(t, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "wrong"})
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v", err)
	}
	if ne.Message != "Invalid credentials" || ne.StatusCode != http.StatusUnauthorized {
		t.Errorf("got %d %q", ne.StatusCode, ne.Message)
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "not-an-email"})
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v", err)
	}
	if ne.StatusCode != 0 || ne.FieldErrors["email"] == "" || ne.FieldErrors["password"] == "" {
		t.Errorf("got %+v", ne)
	}
	if len(api.Requests()) != 0 {
		t.Error("no request should be sent")
	}
}

func validRegistration() domain.Registration {
	return domain.Registration{
		BusinessName:         "Acme Plumbing",
		WebsiteName:          "acme",
		FullName:             "Ann Smith",
		Email:                "ann@acme.io",
		MobileNumber:         "+15550100",
		Password:             "Str0ng!pass",
		PasswordConfirmation: "Str0ng!pass",
		AgreeToTerms:         true,
	}
}

func TestAuthService_Register(t *testing.T) {
	api := newFakeAPI(t, http.StatusCreated, `{"message":"Account created","data":{"id":3}}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	reply, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reply.Message != "Account created" || reply.Data == nil {
		t.Errorf("reply = %+v", reply)
	}

	body := api.Last(t).Body
	want := map[string]any{
		"business_name":         "Acme Plumbing",
		"website_name":          "acme",
		"full_name":             "Ann Smith",
		"email":                 "ann@acme.io",
		"mobile_number":         "+15550100",
		"password":              "Str0ng!pass",
		"password_confirmation": "Str0ng!pass",
		"terms_accepted":        true,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
	if store.IsAuthenticated() {
		t.Error("register must not sign in")
	}
}

func TestAuthService_RegisterFieldErrors(t *testing.T) {
	api := newFakeAPI(t, http.StatusUnprocessableEntity,
		`{"message":"Invalid","errors":{"business_name":["taken"],"terms_accepted":"must accept","mobile_number":["bad"]}}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	_, err := svc.Register(context.Background(), validRegistration())
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v", err)
	}
	want := map[string]string{"businessName": "taken", "agreeToTerms": "must accept", "mobileNumber": "bad"}
	for k, v := range want {
		if ne.FieldErrors[k] != v {
			t.Errorf("FieldErrors[%s] = %q, want %q", k, ne.FieldErrors[k], v)
		}
	}
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	api := newFakeAPI(t, http.StatusCreated, `{}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	reg := validRegistration()
	reg.Password, reg.PasswordConfirmation = "weak", "weak"
	_, err := svc.Register(context.Background(), reg)
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) || ne.FieldErrors["password"] == "" {
		t.Fatalf("error = %v, want password field error", err)
	}
	if len(api.Requests()) != 0 {
		t.Error("no request should be sent")
	}
}

func TestAuthService_PasswordFlows(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)
	ctx := context.Background()

	reply, err := svc.ForgotPassword(ctx, domain.PasswordForgot{Email: " ann@acme.io "})
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if reply.Message != "Password reset link sent" {
		t.Errorf("Message = %q", reply.Message)
	}
	if req := api.Last(t); req.Path != "/auth/password/forgot" || req.Body["email"] != "ann@acme.io" {
		t.Errorf("request = %s %v", req.Path, req.Body)
	}

	_, err = svc.ResetPassword(ctx, domain.PasswordReset{
		Email:                "ann@acme.io",
		Token:                "reset-tok",
		Password:             "N3w!password",
		PasswordConfirmation: "N3w!password",
	})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	req := api.Last(t)
	if req.Path != "/auth/password/reset" || req.Body["token"] != "reset-tok" || req.Body["password_confirmation"] != "N3w!password" {
		t.Errorf("request = %s %v", req.Path, req.Body)
	}
}

func TestAuthService_ResetMismatch(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	_, err := svc.ResetPassword(context.Background(), domain.PasswordReset{
		Email: "ann@acme.io", Token: "t", Password: "N3w!password", PasswordConfirmation: "other",
	})
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) || ne.FieldErrors["passwordConfirmation"] != "Passwords do not match" {
		t.Fatalf("error = %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	store := newSession(t, "T", vendorUser)
	var navigated string
	router := connection.NewRouter("/clients", func(r string) { navigated = r })
	svc := NewAuthService(nil, store, WithNavigator(router))

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("token should be cleared")
	}
	if _, ok := store.User(); ok {
		t.Error("user should be cleared")
	}
	if navigated != connection.LoginRoute {
		t.Errorf("navigated = %q", navigated)
	}
}

func TestAuthService_Profile(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"data":{"user":{"id":1,"name":"Ann","vendor_id":12}}}`)
	store := newSession(t, "T", vendorUser)
	svc := NewAuthService(newClient(api, store), store)

	u, err := svc.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if u.Name() != "Ann" {
		t.Errorf("Name() = %q", u.Name())
	}
	if id, _ := store.VendorID(); id != "12" {
		t.Errorf("stored vendor = %q, want 12", id)
	}
	if api.Last(t).Header.Get("Authorization") != "Bearer T" {
		t.Error("profile should send the bearer token")
	}
}

func TestAuthService_ProfileNotLoggedIn(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	store := session.NewStore(session.NewMemoryBackend())
	svc := NewAuthService(newClient(api, store), store)

	if _, err := svc.Profile(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("error = %v", err)
	}
	if len(api.Requests()) != 0 {
		t.Error("no request should be sent")
	}
}
