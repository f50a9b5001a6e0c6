package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openshelf/openshelf-backend/api/middleware"
	"github.com/openshelf/openshelf-backend/internal/auth"
	"github.com/openshelf/openshelf-backend/internal/members"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
)

func TestAuthLogin(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{
			login: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
				if req.Email != "nora@example.com" {
					t.Fatalf("unexpected email %q", req.Email)
				}
				return &auth.LoginResponse{
					AccessToken:  "access",
					RefreshToken: "refresh",
					Member:       &members.MemberDTO{Email: req.Email},
				}, nil
			},
		}
		body := `{"email":"nora@example.com","password":"hunter2-hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		var envelope struct {
			Data auth.LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
			t.Fatalf("unexpected token pair %+v", envelope.Data)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		body := `{"email":"not-an-email","password":"hunter2-hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(&stubAuthService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed email got %d", rec.Code)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		stub := &stubAuthService{
			login: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
			},
		}
		body := `{"email":"nora@example.com","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})
}

func TestAuthLogout(t *testing.T) {
	logg := testLogger()

	t.Run("missing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		AuthLogout(&stubAuthService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without session got %d", rec.Code)
		}
	})

	t.Run("revokes the session", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req = req.WithContext(middleware.WithAccessID(context.Background(), "session-123"))
		rec := httptest.NewRecorder()
		AuthLogout(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if stub.revoked != "session-123" {
			t.Fatalf("expected session-123 revoked got %q", stub.revoked)
		}
	})
}

type stubAuthService struct {
	login   func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	revoked string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.login != nil {
		return s.login(ctx, req)
	}
	panic("unimplemented")
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	panic("unimplemented")
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
