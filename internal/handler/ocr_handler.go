// Package handler provides HTTP handlers for the webhook API.
package handler

import (
	"encoding/base64"
	"net/http"
	"time"

	"pdf-ocr-webhook/internal/domain"
	"pdf-ocr-webhook/internal/service"
)

// OCRResponse is the JSON success body of POST /ocr.
type OCRResponse struct {
	Success       bool   `json:"success"`
	OCRPDFData    string `json:"ocr_pdf_data"`
	OriginalSize  int    `json:"original_size"`
	ProcessedSize int    `json:"processed_size"`
	Timestamp     string `json:"timestamp"`
	AssetsCleaned bool   `json:"assets_cleaned"`
}

// OCRHandler handles the OCR webhook endpoints
type OCRHandler struct {
	normalizer *service.Normalizer
	ocrService *service.OCRService
	logger     domain.Logger
}

// NewOCRHandler creates a new OCR handler
func NewOCRHandler(normalizer *service.Normalizer, ocrService *service.OCRService, logger domain.Logger) *OCRHandler {
	return &OCRHandler{
		normalizer: normalizer,
		ocrService: ocrService,
		logger:     logger,
	}
}

// ProcessOCR handles POST /ocr: any supported input encoding in, base64
// JSON out.
func (h *OCRHandler) ProcessOCR(w http.ResponseWriter, r *http.Request) {
	payload, err := h.normalizer.Normalize(r)
	if err != nil {
		h.logger.Warn("Rejected OCR request", "error", err)
		respondError(w, err)
		return
	}

	h.logger.Info("Processing PDF",
		"locale", payload.Options.Locale, "type", payload.Options.Type)

	result, err := h.ocrService.Process(r.Context(), payload.PDF, payload.Options)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OCRResponse{
		Success:       true,
		OCRPDFData:    base64.StdEncoding.EncodeToString(result.Data),
		OriginalSize:  result.OriginalSize,
		ProcessedSize: result.ProcessedSize,
		Timestamp:     result.ProcessedAt.Format(time.RFC3339),
		AssetsCleaned: true,
	})
}

// ProcessOCRFile handles POST /ocr-file: same pipeline, but the
// response is the raw processed PDF as an attachment.
func (h *OCRHandler) ProcessOCRFile(w http.ResponseWriter, r *http.Request) {
	payload, err := h.normalizer.Normalize(r)
	if err != nil {
		h.logger.Warn("Rejected OCR file request", "error", err)
		respondError(w, err)
		return
	}

	if payload.Filename != "" {
		h.logger.Info("Processing PDF file", "filename", payload.Filename)
	}

	result, err := h.ocrService.Process(r.Context(), payload.PDF, payload.Options)
	if err != nil {
		respondError(w, err)
		return
	}

	name := payload.Filename
	if name == "" {
		name = "document.pdf"
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="ocr_`+sanitizeFilename(name)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// sanitizeFilename strips path separators and quotes so the name is
// safe inside a Content-Disposition header.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
