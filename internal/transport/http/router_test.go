package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"credauth/internal/domain"
	"credauth/internal/dto"

	"github.com/google/uuid"
)

// stubAuth returns canned values; tests pin the handler's decode, bearer
// forwarding, and error-to-status mapping without a real service behind it.
type stubAuth struct {
	err        error
	lastBearer string
	lastLogin  dto.LoginRequest
}

func (s *stubAuth) Register(_ context.Context, _ dto.RegisterRequest) (*dto.StatusResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: "pending"}, nil
}

func (s *stubAuth) Login(_ context.Context, r dto.LoginRequest) (*dto.LoginResponse, error) {
	s.lastLogin = r
	if s.err != nil {
		return nil, s.err
	}
	return &dto.LoginResponse{SessionResponse: &dto.SessionResponse{Email: r.Email, AccessToken: "tok"}}, nil
}

func (s *stubAuth) VerifyEmail(_ context.Context, _ dto.VerifyEmailRequest) (*dto.SessionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SessionResponse{AccessToken: "tok"}, nil
}

func (s *stubAuth) VerifyEmailByToken(_ context.Context, _ string) (*dto.SessionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SessionResponse{AccessToken: "tok"}, nil
}

func (s *stubAuth) ResendVerification(_ context.Context, _ dto.ResendVerificationRequest) (*dto.StatusResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: "sent"}, nil
}

func (s *stubAuth) ForgetPassword(_ context.Context, _ string) (*dto.StatusResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: "sent"}, nil
}

func (s *stubAuth) VerifyForgotPasswordOTP(_ context.Context, _ dto.VerifyEmailRequest) (*dto.ResetRedirectResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ResetRedirectResponse{RedirectURL: "http://x", ExpireInMinutes: 5}, nil
}

func (s *stubAuth) ResetPassword(_ context.Context, _ dto.ResetPasswordRequest, bearerToken string) (*dto.StatusResponse, error) {
	s.lastBearer = bearerToken
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: "changed"}, nil
}

func (s *stubAuth) ChangePassword(_ context.Context, bearerToken string, _ dto.ChangePasswordRequest) (*dto.StatusResponse, error) {
	s.lastBearer = bearerToken
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: "changed"}, nil
}

type stubAccounts struct {
	err error
}

func (s *stubAccounts) GetProfile(_ context.Context, id domain.AccountID) (*dto.ProfileResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProfileResponse{ID: id.String()}, nil
}

func (s *stubAccounts) UpdateStatus(_ context.Context, id domain.AccountID, status domain.Status) (*dto.ProfileResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProfileResponse{ID: id.String(), Status: string(status)}, nil
}

func (s *stubAccounts) UpdateRole(_ context.Context, id domain.AccountID, role domain.Role) (*dto.ProfileResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ProfileResponse{ID: id.String(), Role: string(role)}, nil
}

func post(t *testing.T, h http.Handler, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterCreated(t *testing.T) {
	auth := &stubAuth{}
	r := NewRouter(auth, &stubAccounts{})

	rec := post(t, r, "/v1/auth/register", `{"email":"a@x.com","password":"password1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"pending"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestMalformedJSON(t *testing.T) {
	r := NewRouter(&stubAuth{}, &stubAccounts{})
	rec := post(t, r, "/v1/auth/login", `{"email":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("x: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrExpired), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrInvalidToken), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrDispatch), http.StatusBadGateway},
		{fmt.Errorf("x: %w", domain.ErrInvalidCredential), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrMismatch), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrInvalidState), http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := NewRouter(&stubAuth{err: tc.err}, &stubAccounts{})
		rec := post(t, r, "/v1/auth/login", `{"email":"a@x.com","password":"p"}`, nil)
		if rec.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestResetPasswordForwardsBearer(t *testing.T) {
	auth := &stubAuth{}
	r := NewRouter(auth, &stubAccounts{})

	rec := post(t, r, "/v1/auth/reset-password",
		`{"email":"a@x.com","newPassword":"password2"}`,
		map[string]string{"Authorization": "Bearer reset-token-123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if auth.lastBearer != "reset-token-123" {
		t.Fatalf("bearer not forwarded: %q", auth.lastBearer)
	}

	// Missing or malformed Authorization headers come through empty.
	post(t, r, "/v1/auth/reset-password", `{"email":"a@x.com","newPassword":"p2"}`, nil)
	if auth.lastBearer != "" {
		t.Fatalf("expected empty bearer, got %q", auth.lastBearer)
	}
}

func TestAccountRoutes(t *testing.T) {
	r := NewRouter(&stubAuth{}, &stubAccounts{})
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), id.String()) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/accounts/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	rec = post(t, r, "/v1/accounts/"+id.String()+"/status", `{"status":"BLOCKED"}`, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status route is PATCH only, POST got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPatch, "/v1/accounts/"+id.String()+"/status", strings.NewReader(`{"status":"BLOCKED"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "BLOCKED") {
		t.Fatalf("patch status: %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	r := NewRouter(&stubAuth{}, &stubAccounts{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}
