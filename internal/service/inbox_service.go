package service

import (
	"context"
	"strings"

	"pdf-ocr-webhook/internal/domain"
)

// FileReport is the per-file outcome of one batch run.
type FileReport struct {
	Name          string `json:"name"`
	Status        string `json:"status"` // processed, skipped, failed
	Detail        string `json:"detail,omitempty"`
	OutputPath    string `json:"output_path,omitempty"`
	OriginalSize  int    `json:"original_size,omitempty"`
	ProcessedSize int    `json:"processed_size,omitempty"`
}

// BatchResult summarizes one inbox sweep.
type BatchResult struct {
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Files     []FileReport `json:"files"`
}

// InboxService runs the batch workflow: OCR every new PDF in the inbox
// folder and upload the result to the outbox folder.
type InboxService struct {
	relay  domain.StorageRelay
	ocr    *OCRService
	config domain.Config
	logger domain.Logger
}

// NewInboxService creates the batch workflow service. A nil relay makes
// every operation fail with ErrStorageUnavailable.
func NewInboxService(relay domain.StorageRelay, ocr *OCRService, config domain.Config, logger domain.Logger) *InboxService {
	return &InboxService{
		relay:  relay,
		ocr:    ocr,
		config: config,
		logger: logger,
	}
}

// Available reports whether the storage relay is configured.
func (s *InboxService) Available() bool {
	return s.relay != nil
}

// ListInbox lists the inbox folder.
func (s *InboxService) ListInbox(ctx context.Context) ([]domain.FileInfo, error) {
	if s.relay == nil {
		return nil, domain.ErrStorageUnavailable
	}
	files, err := s.relay.ListFiles(ctx, s.config.GetInboxFolder())
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = make([]domain.FileInfo, 0)
	}
	return files, nil
}

// ProcessInbox OCRs every PDF in the inbox folder that has no OCR'd
// counterpart in the outbox folder yet. One file failing never aborts
// the sweep.
func (s *InboxService) ProcessInbox(ctx context.Context, opts domain.OCROptions) (*BatchResult, error) {
	if s.relay == nil {
		return nil, domain.ErrStorageUnavailable
	}
	if !s.ocr.Available() {
		return nil, domain.ErrOCRUnavailable
	}

	inbox, err := s.relay.ListFiles(ctx, s.config.GetInboxFolder())
	if err != nil {
		return nil, err
	}

	done, err := s.processedNames(ctx)
	if err != nil {
		// An unreadable outbox only means already-processed files may be
		// re-run; the provider call is idempotent on content.
		s.logger.Warn("Could not list outbox folder", "error", err)
		done = map[string]bool{}
	}

	result := &BatchResult{Files: make([]FileReport, 0, len(inbox))}
	for _, f := range inbox {
		report := s.processFile(ctx, f, opts, done)
		switch report.Status {
		case "processed":
			result.Processed++
		case "skipped":
			result.Skipped++
		default:
			result.Failed++
		}
		result.Files = append(result.Files, report)
	}

	s.logger.Info("Inbox sweep finished",
		"processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (s *InboxService) processFile(ctx context.Context, f domain.FileInfo, opts domain.OCROptions, done map[string]bool) FileReport {
	if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
		return FileReport{Name: f.Name, Status: "skipped", Detail: "not a PDF"}
	}
	outName := ocrName(f.Name)
	if done[outName] {
		return FileReport{Name: f.Name, Status: "skipped", Detail: "already processed"}
	}

	data, err := s.relay.Download(ctx, f.Path)
	if err != nil {
		s.logger.Error("Inbox download failed", err, "file", f.Name)
		return FileReport{Name: f.Name, Status: "failed", Detail: "download failed"}
	}

	job, err := s.ocr.Process(ctx, data, opts)
	if err != nil {
		s.logger.Error("Inbox OCR failed", err, "file", f.Name)
		return FileReport{Name: f.Name, Status: "failed", Detail: err.Error()}
	}

	outPath := s.config.GetOutboxFolder() + "/" + outName
	path, err := s.relay.Upload(ctx, job.Data, outPath)
	if err != nil {
		s.logger.Error("Outbox upload failed", err, "file", f.Name)
		return FileReport{Name: f.Name, Status: "failed", Detail: "upload failed"}
	}

	return FileReport{
		Name:          f.Name,
		Status:        "processed",
		OutputPath:    path,
		OriginalSize:  job.OriginalSize,
		ProcessedSize: job.ProcessedSize,
	}
}

func (s *InboxService) processedNames(ctx context.Context) (map[string]bool, error) {
	files, err := s.relay.ListFiles(ctx, s.config.GetOutboxFolder())
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(files))
	for _, f := range files {
		names[f.Name] = true
	}
	return names, nil
}

func ocrName(name string) string {
	return "ocr_" + name
}
