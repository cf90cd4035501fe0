package api

import (
	"artify/internal/config"
	"artify/internal/entity"
	"artify/internal/gen"
	"artify/internal/service"
	"artify/internal/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type memoryRepo struct {
	balances map[string]*entity.DbCreditBalance
	gallery  []*entity.DbGalleryItem
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{balances: make(map[string]*entity.DbCreditBalance)}
}

func (m *memoryRepo) CreateUser(context.Context, *entity.DbUser) error { return nil }
func (m *memoryRepo) GetUserByEmail(context.Context, string) (*entity.DbUser, error) {
	return nil, errors.New("not implemented")
}
func (m *memoryRepo) GetUserByID(context.Context, uint) (*entity.DbUser, error) {
	return nil, errors.New("not implemented")
}
func (m *memoryRepo) CountUsers(context.Context) (int64, error) { return 0, nil }

func (m *memoryRepo) GetCreditBalance(_ context.Context, subject string) (*entity.DbCreditBalance, error) {
	return m.balances[subject], nil
}

func (m *memoryRepo) InitCreditBalance(_ context.Context, subject string, freeGrant int64) (*entity.DbCreditBalance, error) {
	balance := &entity.DbCreditBalance{Subject: subject, FreeRemaining: freeGrant}
	m.balances[subject] = balance
	return balance, nil
}

func (m *memoryRepo) ConsumeCredit(_ context.Context, subject, _ string) (*entity.DbCreditBalance, error) {
	balance := m.balances[subject]
	if balance == nil {
		return nil, errors.New("no balance")
	}
	if balance.FreeRemaining > 0 {
		balance.FreeRemaining--
	} else if balance.PaidRemaining > 0 {
		balance.PaidRemaining--
	} else {
		return nil, errors.New("insufficient credits")
	}
	balance.TotalUsed++
	return balance, nil
}

func (m *memoryRepo) CreateGalleryItem(_ context.Context, item *entity.DbGalleryItem) error {
	m.gallery = append(m.gallery, item)
	return nil
}

func (m *memoryRepo) ListGalleryItems(context.Context, *entity.GalleryQuery) ([]entity.DbGalleryItem, *entity.Meta, error) {
	return nil, nil, nil
}
func (m *memoryRepo) GetGalleryItem(context.Context, uint, string) (*entity.DbGalleryItem, error) {
	return nil, nil
}
func (m *memoryRepo) DeleteGalleryItem(context.Context, uint, string) error { return nil }

type fixedProvider struct {
	image *gen.Image
	err   error
}

func (p *fixedProvider) ProviderID() string { return "fixed" }
func (p *fixedProvider) Generate(context.Context, gen.Params) (*gen.Image, error) {
	return p.image, p.err
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func testHandlerConfig() config.Config {
	return config.Config{
		FreeCredits:          3,
		BillOnCommit:         true,
		KeepAliveSeconds:     15,
		JWTSecret:            "test-secret",
		JWTIssuer:            "artify-test",
		JWTExpirationMinutes: 60,
	}
}

func newGenerateTestRouter(t *testing.T, repo *memoryRepo, provider gen.ImageProvider) (*gin.Engine, *HTTPHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testHandlerConfig()
	var client *gen.Client
	if provider != nil {
		client = gen.NewClient(provider, nil, gen.RetryPolicy{MaxAttempts: 1})
	}
	orchestrator := service.NewOrchestrator(cfg, repo, nil, client)

	handler, err := NewHTTPHandler(cfg, repo, nil, orchestrator)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}

	r := gin.New()
	handler.RegisterRoutes(r)
	return r, handler
}

type multipartSpec struct {
	imageData   []byte
	inlineImage string
	styleID     string
	category    string
	options     string
}

func buildMultipart(t *testing.T, spec multipartSpec) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if spec.imageData != nil {
		part, err := writer.CreateFormFile("image", "upload.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(spec.imageData); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if spec.inlineImage != "" {
		_ = writer.WriteField("imageData", spec.inlineImage)
	}
	if spec.styleID != "" {
		_ = writer.WriteField("styleId", spec.styleID)
	}
	if spec.category != "" {
		_ = writer.WriteField("category", spec.category)
	}
	if spec.options != "" {
		_ = writer.WriteField("options", spec.options)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doGenerate(t *testing.T, r *gin.Engine, spec multipartSpec, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := buildMultipart(t, spec)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: anonCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeGenerationError(t *testing.T, w *httptest.ResponseRecorder) entity.GenerationError {
	t.Helper()
	var body entity.GenerationError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestGenerateValidationErrors(t *testing.T) {
	validImage := testPNG(t)

	tests := []struct {
		name       string
		spec       multipartSpec
		wantStatus int
		wantCode   string
	}{
		{
			name:       "缺少图片",
			spec:       multipartSpec{styleID: "baroque", category: "pets"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidRequest,
		},
		{
			name:       "缺少风格",
			spec:       multipartSpec{imageData: validImage, category: "pets"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidRequest,
		},
		{
			name:       "缺少分类",
			spec:       multipartSpec{imageData: validImage, styleID: "baroque"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidRequest,
		},
		{
			name:       "未知分类",
			spec:       multipartSpec{imageData: validImage, styleID: "baroque", category: "cars"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidCategory,
		},
		{
			name:       "未知风格",
			spec:       multipartSpec{imageData: validImage, styleID: "cubist", category: "pets"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidStyle,
		},
		{
			name:       "选项不是合法JSON",
			spec:       multipartSpec{imageData: validImage, styleID: "baroque", category: "pets", options: "{not json"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidOptions,
		},
		{
			name:       "内联图片不是合法dataURL",
			spec:       multipartSpec{inlineImage: "data:image/png;base64,@@not-base64@@", styleID: "baroque", category: "pets"},
			wantStatus: http.StatusBadRequest,
			wantCode:   entity.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			r, _ := newGenerateTestRouter(t, repo, &fixedProvider{err: errors.New("should not be called")})

			w := doGenerate(t, r, tt.spec, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeGenerationError(t, w)
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestGenerateSuccessAnonymousFirstUse(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{image: &gen.Image{Data: testPNG(t), MimeType: "image/png"}}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{imageData: testPNG(t), styleID: "watercolor", category: "kids", options: `{"gender":"girl"}`}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var result entity.GenerationResult
	if err := json.Unmarshal(bytes.TrimSpace(w.Body.Bytes()), &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.Success {
		t.Error("Success should be true")
	}
	if result.CreditsUsed != 1 {
		t.Errorf("CreditsUsed = %d, want 1", result.CreditsUsed)
	}
	if result.CreditsRemaining != 2 {
		t.Errorf("CreditsRemaining = %d, want 2 after first-use grant of 3", result.CreditsRemaining)
	}
	if result.GallerySaved != nil {
		t.Error("GallerySaved should be omitted for anonymous identity")
	}
	if len(repo.gallery) != 0 {
		t.Error("gallery persistence must never run for anonymous identity")
	}
}

func TestGenerateAcceptsInlineDataURLImage(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{image: &gen.Image{Data: testPNG(t), MimeType: "image/png"}}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{
		inlineImage: utils.BuildDataURL("image/png", testPNG(t)),
		styleID:     "baroque",
		category:    "pets",
	}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var result entity.GenerationResult
	if err := json.Unmarshal(bytes.TrimSpace(w.Body.Bytes()), &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !result.Success {
		t.Error("Success should be true for inline data URL upload")
	}
}

func TestGenerateFreeTrialExhausted(t *testing.T) {
	repo := newMemoryRepo()
	repo.balances["anon:visitor1"] = &entity.DbCreditBalance{Subject: "anon:visitor1"}
	provider := &fixedProvider{err: errors.New("should not be called")}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}
	body := decodeGenerationError(t, w)
	if body.Error.Code != entity.CodeFreeTrialExhausted {
		t.Errorf("code = %q, want FREE_TRIAL_EXHAUSTED", body.Error.Code)
	}
}

func TestGenerateInProgressRejected(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{image: &gen.Image{Data: testPNG(t), MimeType: "image/png"}}
	r, handler := newGenerateTestRouter(t, repo, provider)

	if !handler.gate.Acquire("anon:visitor1") {
		t.Fatal("test setup: gate acquire failed")
	}
	defer handler.gate.Release("anon:visitor1")

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	body := decodeGenerationError(t, w)
	if body.Error.Code != entity.CodeGenerationInProgress {
		t.Errorf("code = %q, want GENERATION_IN_PROGRESS", body.Error.Code)
	}
}

func TestGenerateGateReleasedAfterCompletion(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{image: &gen.Image{Data: testPNG(t), MimeType: "image/png"}}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}

	first := doGenerate(t, r, spec, "visitor1")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}
	second := doGenerate(t, r, spec, "visitor1")
	if second.Code != http.StatusOK {
		t.Fatalf("second request status = %d, want 200 (gate must be released)", second.Code)
	}
}

func TestGenerateServiceNotConfigured(t *testing.T) {
	repo := newMemoryRepo()
	r, _ := newGenerateTestRouter(t, repo, nil)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeGenerationError(t, w)
	if body.Error.Code != entity.CodeServiceNotConfigured {
		t.Errorf("code = %q, want SERVICE_NOT_CONFIGURED", body.Error.Code)
	}
}

func TestGenerateUpstreamFailureIs502(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{err: errors.New("provider exploded")}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "visitor1")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body: %s", w.Code, w.Body.String())
	}
	body := decodeGenerationError(t, w)
	if body.Error.Code != entity.CodeGenerationUpstreamFailed {
		t.Errorf("code = %q, want GENERATION_UPSTREAM_FAILED", body.Error.Code)
	}
}

func TestGenerateSetsAnonCookieWhenAbsent(t *testing.T) {
	repo := newMemoryRepo()
	provider := &fixedProvider{image: &gen.Image{Data: testPNG(t), MimeType: "image/png"}}
	r, _ := newGenerateTestRouter(t, repo, provider)

	spec := multipartSpec{imageData: testPNG(t), styleID: "baroque", category: "pets"}
	w := doGenerate(t, r, spec, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == anonCookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("anonymous request without cookie should receive a freshly minted one")
	}
}
