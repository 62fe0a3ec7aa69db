package handler

import (
	"encoding/json"
	"net/http"

	"pdf-ocr-webhook/internal/domain"
	"pdf-ocr-webhook/internal/service"
)

// InboxHandler handles the batch relay endpoints
type InboxHandler struct {
	inboxService *service.InboxService
	logger       domain.Logger
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inboxService *service.InboxService, logger domain.Logger) *InboxHandler {
	return &InboxHandler{
		inboxService: inboxService,
		logger:       logger,
	}
}

// ListFiles handles GET /inbox/files
func (h *InboxHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.inboxService.ListInbox(r.Context())
	if err != nil {
		h.logger.Error("Listing inbox failed", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

type processInboxRequest struct {
	Locale  string `json:"locale"`
	OCRType string `json:"ocr_type"`
}

// ProcessInbox handles POST /inbox/process: OCR every new PDF in the
// inbox folder. The body may carry optional locale/ocr_type overrides.
func (h *InboxHandler) ProcessInbox(w http.ResponseWriter, r *http.Request) {
	var req processInboxRequest
	if r.Body != nil {
		// An empty or absent body means defaults, not an error.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	opts, err := domain.NewOCROptions(req.Locale, req.OCRType)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.inboxService.ProcessInbox(r.Context(), opts)
	if err != nil {
		h.logger.Error("Inbox processing failed", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
