package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
)

type fakeAuthService struct {
	userID uuid.UUID
	err    error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.userID, nil
}

func newAuthTestRouter(svc services.AuthService, captured *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	am := NewAuthMiddleware(logger.NewNop(), svc)
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		*captured = UserIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth_AcceptsBearerToken(t *testing.T) {
	userID := uuid.New()
	var captured uuid.UUID
	r := newAuthTestRouter(&fakeAuthService{userID: userID}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	if captured != userID {
		t.Fatalf("user id not propagated: want=%s got=%s", userID, captured)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	var captured uuid.UUID
	r := newAuthTestRouter(&fakeAuthService{userID: uuid.New()}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	var captured uuid.UUID
	r := newAuthTestRouter(&fakeAuthService{err: errors.New("invalid token")}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", w.Code)
	}
	if captured != uuid.Nil {
		t.Fatalf("handler must not run on auth failure")
	}
}

func TestUserIDFromContext_DefaultsToNil(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != uuid.Nil {
		t.Fatalf("want uuid.Nil, got %s", got)
	}
}
