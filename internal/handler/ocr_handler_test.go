package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-ocr-webhook/internal/config"
	"pdf-ocr-webhook/internal/domain"
	"pdf-ocr-webhook/internal/service"
)

// Mock OCR provider for handler tests.
type MockProvider struct {
	result    []byte
	uploadErr error
	submitErr error
	deletes   int
}

func (m *MockProvider) Upload(_ context.Context, data []byte, _ string) (*domain.RemoteAsset, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &domain.RemoteAsset{ID: "in"}, nil
}

func (m *MockProvider) Submit(_ context.Context, _ domain.OCRJobSpec) (string, error) {
	if m.submitErr != nil {
		return "", m.submitErr
	}
	return "loc", nil
}

func (m *MockProvider) AwaitResult(_ context.Context, _ string) (*domain.RemoteAsset, error) {
	return &domain.RemoteAsset{ID: "out", DownloadURI: "uri"}, nil
}

func (m *MockProvider) FetchContent(_ context.Context, _ *domain.RemoteAsset) ([]byte, error) {
	return m.result, nil
}

func (m *MockProvider) DeleteAsset(_ context.Context, _ *domain.RemoteAsset) error {
	m.deletes++
	return nil
}

func testContainer(provider domain.OCRProvider) *config.Container {
	cfg := &config.AppConfig{
		MaxFileSize:  50 * 1024 * 1024,
		InboxFolder:  "inbox",
		OutboxFolder: "processed",
	}
	logger := NewMockHandlerLogger()
	ocrService := service.NewOCRService(provider, logger)
	return &config.Container{
		Config:       cfg,
		Logger:       logger,
		Provider:     provider,
		Normalizer:   service.NewNormalizer(cfg.MaxFileSize),
		OCRService:   ocrService,
		InboxService: service.NewInboxService(nil, ocrService, cfg, logger),
	}
}

// makePDF builds a synthetic PDF body of exactly n bytes.
func makePDF(n int) []byte {
	buf := make([]byte, n)
	copy(buf, "%PDF-1.4\n")
	for i := len("%PDF-1.4\n"); i < n; i++ {
		buf[i] = 'x'
	}
	return buf
}

func TestProcessOCREndToEnd(t *testing.T) {
	input := makePDF(1000)
	processed := makePDF(1200)
	provider := &MockProvider{result: processed}

	container := testContainer(provider)
	router := NewRouter(container)

	body, _ := json.Marshal(map[string]string{
		"pdf_data": base64.StdEncoding.EncodeToString(input),
		"locale":   "en-US",
		"ocr_type": "SEARCHABLE_IMAGE",
	})
	req := httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp OCRResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true")
	}
	if resp.OriginalSize != 1000 {
		t.Fatalf("expected original_size=1000, got %d", resp.OriginalSize)
	}
	if resp.ProcessedSize != 1200 {
		t.Fatalf("expected processed_size=1200, got %d", resp.ProcessedSize)
	}
	if resp.Timestamp == "" {
		t.Fatalf("expected a timestamp")
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.OCRPDFData)
	if err != nil {
		t.Fatalf("ocr_pdf_data is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, processed) {
		t.Fatalf("ocr_pdf_data does not round-trip the processed PDF")
	}

	if provider.deletes != 2 {
		t.Fatalf("expected 2 asset deletes, got %d", provider.deletes)
	}
}

func TestProcessOCRInvalidBase64(t *testing.T) {
	container := testContainer(&MockProvider{})
	router := NewRouter(container)

	req := httptest.NewRequest(http.MethodPost, "/ocr",
		strings.NewReader(`{"pdf_data":"@@@"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "error") {
		t.Fatalf("expected a JSON error body, got %s", rr.Body.String())
	}
}

func TestProcessOCRNoInput(t *testing.T) {
	container := testContainer(&MockProvider{})
	router := NewRouter(container)

	req := httptest.NewRequest(http.MethodPost, "/ocr", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestProcessOCRProviderFailure(t *testing.T) {
	provider := &MockProvider{submitErr: errors.New("provider says no")}
	container := testContainer(provider)
	router := NewRouter(container)

	body, _ := json.Marshal(map[string]string{
		"pdf_data": base64.StdEncoding.EncodeToString(makePDF(64)),
	})
	req := httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "provider says no") {
		t.Fatalf("expected the provider message in the body, got %s", rr.Body.String())
	}
}

func TestProcessOCRUnavailable(t *testing.T) {
	container := testContainer(nil)
	router := NewRouter(container)

	body, _ := json.Marshal(map[string]string{
		"pdf_data": base64.StdEncoding.EncodeToString(makePDF(64)),
	})
	req := httptest.NewRequest(http.MethodPost, "/ocr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not available") {
		t.Fatalf("expected unavailable message, got %s", rr.Body.String())
	}
}

func TestProcessOCRFileAttachment(t *testing.T) {
	processed := makePDF(256)
	container := testContainer(&MockProvider{result: processed})
	router := NewRouter(container)

	req := newFileUploadRequest(t, "/ocr-file", "invoice.pdf", makePDF(128))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "ocr_invoice.pdf") {
		t.Fatalf("unexpected Content-Disposition: %s", cd)
	}
	if !bytes.Equal(rr.Body.Bytes(), processed) {
		t.Fatalf("attachment body is not the processed PDF")
	}
}

func newFileUploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
