package service

import (
	"context"
	"fmt"
	"time"

	"pdf-ocr-webhook/internal/domain"

	"github.com/google/uuid"
)

// OCRService drives one OCR job through the provider: upload, submit,
// await, fetch, cleanup. Jobs are independent; the service holds no
// per-job state and is safe for concurrent use.
type OCRService struct {
	provider domain.OCRProvider
	logger   domain.Logger
}

// NewOCRService creates the orchestrator. A nil provider is permitted
// and makes the service report itself unavailable instead of crashing.
func NewOCRService(provider domain.OCRProvider, logger domain.Logger) *OCRService {
	return &OCRService{
		provider: provider,
		logger:   logger,
	}
}

// Available reports whether the OCR provider is configured.
func (s *OCRService) Available() bool {
	return s.provider != nil
}

// jobAssets tracks the remote assets a job has created so cleanup can
// release them on every exit path.
type jobAssets struct {
	input  *domain.RemoteAsset
	result *domain.RemoteAsset
}

// Process runs one complete OCR job and returns the processed PDF.
// Every asset the job creates is deleted best-effort before returning,
// on success and on failure alike; cleanup errors are logged and never
// mask the primary result.
func (s *OCRService) Process(ctx context.Context, pdf []byte, opts domain.OCROptions) (*domain.OCRJobResult, error) {
	if s.provider == nil {
		return nil, domain.ErrOCRUnavailable
	}

	jobID := uuid.NewString()
	s.logger.Info("Starting OCR job",
		"job_id", jobID, "size", len(pdf), "locale", opts.Locale, "type", opts.Type)

	assets := &jobAssets{}
	defer s.cleanup(jobID, assets)

	input, err := s.provider.Upload(ctx, pdf, "application/pdf")
	if err != nil {
		s.logger.Error("Upload failed", err, "job_id", jobID)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	assets.input = input

	location, err := s.provider.Submit(ctx, domain.OCRJobSpec{Input: input, Options: opts})
	if err != nil {
		s.logger.Error("Submit failed", err, "job_id", jobID)
		return nil, fmt.Errorf("%w: %v", domain.ErrSubmitFailed, err)
	}

	result, err := s.provider.AwaitResult(ctx, location)
	if err != nil {
		s.logger.Error("Awaiting job result failed", err, "job_id", jobID)
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	assets.result = result

	data, err := s.provider.FetchContent(ctx, result)
	if err != nil {
		s.logger.Error("Fetching result content failed", err, "job_id", jobID)
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	s.logger.Info("OCR job completed",
		"job_id", jobID, "original_size", len(pdf), "processed_size", len(data))

	return &domain.OCRJobResult{
		Data:          data,
		OriginalSize:  len(pdf),
		ProcessedSize: len(data),
		ProcessedAt:   time.Now(),
	}, nil
}

// cleanup deletes whatever assets exist, each independently, swallowing
// failures. It runs once per job via defer. A fresh context is used so
// cleanup still runs when the request context is already done.
func (s *OCRService) cleanup(jobID string, assets *jobAssets) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, asset := range []*domain.RemoteAsset{assets.input, assets.result} {
		if asset == nil {
			continue
		}
		if err := s.provider.DeleteAsset(ctx, asset); err != nil {
			s.logger.Warn("Asset cleanup failed (non-critical)",
				"job_id", jobID, "asset_id", asset.ID, "error", err)
			continue
		}
		s.logger.Debug("Cleaned up asset", "job_id", jobID, "asset_id", asset.ID)
	}
}
