package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"pdf-ocr-webhook/internal/domain"
)

// stubProvider is a synthetic OCR provider that records every call and
// can be made to fail at any step.
type stubProvider struct {
	result []byte

	uploadErr error
	submitErr error
	awaitErr  error
	fetchErr  error
	deleteErr error

	uploaded []byte
	lastJob  domain.OCRJobSpec
	deletes  map[string]int
}

func newStubProvider(result []byte) *stubProvider {
	return &stubProvider{
		result:  result,
		deletes: make(map[string]int),
	}
}

func (p *stubProvider) Upload(_ context.Context, data []byte, _ string) (*domain.RemoteAsset, error) {
	if p.uploadErr != nil {
		return nil, p.uploadErr
	}
	p.uploaded = data
	return &domain.RemoteAsset{ID: "input-asset"}, nil
}

func (p *stubProvider) Submit(_ context.Context, job domain.OCRJobSpec) (string, error) {
	if p.submitErr != nil {
		return "", p.submitErr
	}
	p.lastJob = job
	return "https://provider.example/jobs/1", nil
}

func (p *stubProvider) AwaitResult(_ context.Context, _ string) (*domain.RemoteAsset, error) {
	if p.awaitErr != nil {
		return nil, p.awaitErr
	}
	return &domain.RemoteAsset{ID: "result-asset", DownloadURI: "https://provider.example/dl/1"}, nil
}

func (p *stubProvider) FetchContent(_ context.Context, _ *domain.RemoteAsset) ([]byte, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.result, nil
}

func (p *stubProvider) DeleteAsset(_ context.Context, asset *domain.RemoteAsset) error {
	if asset != nil {
		p.deletes[asset.ID]++
	}
	if p.deleteErr != nil {
		return p.deleteErr
	}
	return nil
}

// nopLogger satisfies domain.Logger for service tests.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

func TestProcessSuccessCleansBothAssets(t *testing.T) {
	processed := []byte("%PDF-1.7 processed")
	provider := newStubProvider(processed)
	svc := NewOCRService(provider, nopLogger{})

	result, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.NoError(t, err)
	require.Equal(t, processed, result.Data)
	require.Equal(t, len(samplePDF), result.OriginalSize)
	require.Equal(t, len(processed), result.ProcessedSize)
	require.Equal(t, samplePDF, provider.uploaded)

	// Both assets deleted, exactly once each.
	require.Equal(t, 1, provider.deletes["input-asset"])
	require.Equal(t, 1, provider.deletes["result-asset"])
}

func TestProcessSubmitFailureCleansInputOnly(t *testing.T) {
	provider := newStubProvider(nil)
	provider.submitErr = errors.New("quota exceeded")
	svc := NewOCRService(provider, nopLogger{})

	_, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.ErrorIs(t, err, domain.ErrSubmitFailed)
	require.Contains(t, err.Error(), "quota exceeded")

	require.Equal(t, 1, provider.deletes["input-asset"])
	require.Zero(t, provider.deletes["result-asset"])
}

func TestProcessUploadFailureCleansNothing(t *testing.T) {
	provider := newStubProvider(nil)
	provider.uploadErr = errors.New("connection refused")
	svc := NewOCRService(provider, nopLogger{})

	_, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.ErrorIs(t, err, domain.ErrUploadFailed)
	require.Empty(t, provider.deletes)
}

func TestProcessAwaitFailureClassifiedAsFetch(t *testing.T) {
	provider := newStubProvider(nil)
	provider.awaitErr = errors.New("job failed: INTERNAL")
	svc := NewOCRService(provider, nopLogger{})

	_, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.ErrorIs(t, err, domain.ErrFetchFailed)

	require.Equal(t, 1, provider.deletes["input-asset"])
	require.Zero(t, provider.deletes["result-asset"])
}

func TestProcessCleanupFailureNeverMasksResult(t *testing.T) {
	processed := []byte("%PDF-1.7 processed")
	provider := newStubProvider(processed)
	provider.deleteErr = errors.New("delete always fails")
	svc := NewOCRService(provider, nopLogger{})

	result, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.NoError(t, err)
	require.Equal(t, processed, result.Data)

	// A failed first delete must not skip the second asset.
	require.Equal(t, 1, provider.deletes["input-asset"])
	require.Equal(t, 1, provider.deletes["result-asset"])
}

func TestProcessCleanupFailureNeverMasksPrimaryError(t *testing.T) {
	provider := newStubProvider(nil)
	provider.submitErr = errors.New("bad request")
	provider.deleteErr = errors.New("delete always fails")
	svc := NewOCRService(provider, nopLogger{})

	_, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.ErrorIs(t, err, domain.ErrSubmitFailed)
	require.NotContains(t, err.Error(), "delete always fails")
}

func TestProcessSubmitReceivesOptions(t *testing.T) {
	provider := newStubProvider([]byte("%PDF-1.7 out"))
	svc := NewOCRService(provider, nopLogger{})

	opts := domain.OCROptions{Locale: "ja-JP", Type: domain.OCRTypeSearchableImageExact}
	_, err := svc.Process(context.Background(), samplePDF, opts)
	require.NoError(t, err)
	require.Equal(t, opts, provider.lastJob.Options)
	require.Equal(t, "input-asset", provider.lastJob.Input.ID)
}

func TestProcessUnavailableWithoutProvider(t *testing.T) {
	svc := NewOCRService(nil, nopLogger{})
	require.False(t, svc.Available())

	_, err := svc.Process(context.Background(), samplePDF, domain.OCROptions{
		Locale: "en-US", Type: domain.OCRTypeSearchableImage,
	})
	require.ErrorIs(t, err, domain.ErrOCRUnavailable)
}
