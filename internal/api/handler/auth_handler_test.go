package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error)
	refreshFn  func(ctx context.Context, token string) (*domain.TokenPair, error)
	validateFn func(ctx context.Context, token string) (*domain.Principal, error)
	logouts    int
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context) error {
	s.logouts++
	return nil
}

func (s *stubAuthService) ValidateAccess(ctx context.Context, token string) (*domain.Principal, error) {
	return s.validateFn(ctx, token)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error) {
			if in.UserName != "admin" || in.Password != "admin123" || in.ExpectedResult != 200 {
				t.Fatalf("unexpected args: %+v", in)
			}
			return &domain.LoginResult{
				TokenPair: domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
				User:      domain.Principal{UserID: "1", UserName: "admin", Role: "admin"},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"userName":"admin","password":"admin123","expectedResult":200}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp["success"] != true || resp["message"] != "Login successful" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok || data["accessToken"] != "access" || data["refreshToken"] != "refresh" {
		t.Fatalf("unexpected data: %+v", resp["data"])
	}
	user, ok := data["user"].(map[string]any)
	if !ok || user["userName"] != "admin" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", data["user"])
	}
}

func TestAuthHandler_Login_ServiceErrorIsReturned(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/login", `{"userName":"admin","password":"bad","expectedResult":200}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	cases := map[string]string{
		"malformed json":  "{",
		"short username":  `{"userName":"ab","password":"x","expectedResult":200}`,
		"missing result":  `{"userName":"admin","password":"x"}`,
		"result too high": `{"userName":"admin","password":"x","expectedResult":600}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/auth/login", body)
			var ve *ValidationError
			if err := h.Login(c); !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Details) == 0 {
				t.Fatalf("expected details")
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*domain.TokenPair, error) {
			if token != "good" {
				return nil, domain.ErrInvalidToken
			}
			return &domain.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
		},
	}
	h := NewAuthHandler(stub)

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"missing token", `{}`, http.StatusBadRequest, "Refresh token is required"},
		{"invalid token", `{"refreshToken":"bad"}`, http.StatusUnauthorized, "Invalid or expired refresh token"},
		{"valid token", `{"refreshToken":"good"}`, http.StatusOK, "Tokens refreshed successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/auth/refresh", tt.body)
			if err := h.Refresh(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			got := resp["message"]
			if tt.code != http.StatusOK {
				got = resp["error"]
			}
			if got != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, got)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.logouts != 1 {
		t.Fatalf("expected 200 and one logout, got %d / %d", rec.Code, stub.logouts)
	}
	if resp := decodeEnvelope(t, rec); resp["message"] != "Logout successful" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestAuthHandler_Validate(t *testing.T) {
	stub := &stubAuthService{
		validateFn: func(ctx context.Context, token string) (*domain.Principal, error) {
			if token != "good" {
				return nil, domain.ErrInvalidToken
			}
			return &domain.Principal{UserID: "2", UserName: "user", Role: "user"}, nil
		},
	}
	h := NewAuthHandler(stub)

	t.Run("missing header", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/auth/validate", "")
		_ = h.Validate(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if resp := decodeEnvelope(t, rec); resp["error"] != "Authorization header is required" {
			t.Fatalf("unexpected envelope: %+v", resp)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/auth/validate", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer bad")
		_ = h.Validate(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if resp := decodeEnvelope(t, rec); resp["error"] != MsgInvalidToken {
			t.Fatalf("unexpected envelope: %+v", resp)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/auth/validate", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer good")
		if err := h.Validate(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
		if data["valid"] != true {
			t.Fatalf("expected valid=true, got %+v", data)
		}
	})
}
