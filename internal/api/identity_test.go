package api

import (
	"artify/internal/entity"
	"artify/internal/gen"
	"artify/internal/service"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newIdentityTestHandler(t *testing.T) *HTTPHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler, err := NewHTTPHandler(testHandlerConfig(), newMemoryRepo(), nil, nil)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}
	return handler
}

func newIdentityContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/credits", nil)
	return c, w
}

func TestResolveIdentityAnonymousCookie(t *testing.T) {
	handler := newIdentityTestHandler(t)
	c, _ := newIdentityContext(t)
	c.Request.AddCookie(&http.Cookie{Name: anonCookieName, Value: "anon_fixed42"})

	identity := handler.resolveIdentity(c)
	if identity.IsAuthenticated() {
		t.Error("cookie identity should not be authenticated")
	}
	if identity.AnonID != "anon_fixed42" {
		t.Errorf("AnonID = %q, want anon_fixed42", identity.AnonID)
	}
	if identity.Subject() != "anon:anon_fixed42" {
		t.Errorf("Subject = %q, want anon:anon_fixed42", identity.Subject())
	}
}

func TestResolveIdentityMintsCookieWhenAbsent(t *testing.T) {
	handler := newIdentityTestHandler(t)
	c, w := newIdentityContext(t)

	identity := handler.resolveIdentity(c)
	if identity.AnonID == "" {
		t.Fatal("expected freshly minted anonymous id")
	}

	cookies := w.Result().Cookies()
	found := false
	for _, cookie := range cookies {
		if cookie.Name == anonCookieName && cookie.Value == identity.AnonID {
			found = true
		}
	}
	if !found {
		t.Error("minted anonymous id should be set as cookie")
	}
}

func TestResolveIdentityBearerToken(t *testing.T) {
	handler := newIdentityTestHandler(t)

	user := &entity.DbUser{ID: 42, Email: "a@b.c", Role: entity.UserRoleUser}
	token, _, err := handler.authManager.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c, _ := newIdentityContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	identity := handler.resolveIdentity(c)
	if !identity.IsAuthenticated() {
		t.Fatal("valid bearer token should yield authenticated identity")
	}
	if identity.UserID != 42 {
		t.Errorf("UserID = %d, want 42", identity.UserID)
	}
	if identity.Subject() != "user:42" {
		t.Errorf("Subject = %q, want user:42", identity.Subject())
	}
}

func TestResolveIdentityGarbageTokenFallsBackToCookie(t *testing.T) {
	handler := newIdentityTestHandler(t)
	c, _ := newIdentityContext(t)
	c.Request.Header.Set("Authorization", "Bearer not-a-jwt")
	c.Request.AddCookie(&http.Cookie{Name: anonCookieName, Value: "anon_fallback"})

	identity := handler.resolveIdentity(c)
	if identity.IsAuthenticated() {
		t.Error("garbage token must not authenticate")
	}
	if identity.AnonID != "anon_fallback" {
		t.Errorf("AnonID = %q, want anon_fallback", identity.AnonID)
	}
}

func TestGenerateDegradedMockDelivers200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newMemoryRepo()
	cfg := testHandlerConfig()

	client := gen.NewClient(
		&fixedProvider{err: errors.New("provider down")},
		gen.NewMockProvider(),
		gen.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond},
	)
	orchestrator := service.NewOrchestrator(cfg, repo, nil, client)
	handler, err := NewHTTPHandler(cfg, repo, nil, orchestrator)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}
	r := gin.New()
	handler.RegisterRoutes(r)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on degraded mock path", w.Code)
	}
	var result entity.GenerationResult
	if err := json.Unmarshal(bytes.TrimSpace(w.Body.Bytes()), &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.Success {
		t.Error("Success should be true on degraded path")
	}
	if !result.Watermarked {
		t.Error("Watermarked should be true for degraded placeholder")
	}
	if result.GeneratedImage == "" {
		t.Error("placeholder image should be delivered")
	}
}
