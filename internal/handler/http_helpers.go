package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pdf-ocr-webhook/internal/domain"
	apperrors "pdf-ocr-webhook/pkg/errors"
)

// writeJSON writes a JSON response (helper function)
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// toAppError classifies a domain error into an AppError carrying the
// HTTP status to report.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var optErr *domain.OptionError
	if errors.As(err, &optErr) {
		return apperrors.NewClientError(apperrors.ErrorTypeInvalidOption, optErr.Error())
	}

	switch {
	case errors.Is(err, domain.ErrNoInput):
		return apperrors.NewClientError(apperrors.ErrorTypeNoInput, domain.ErrNoInput.Error())
	case errors.Is(err, domain.ErrInvalidEncoding):
		return apperrors.NewClientError(apperrors.ErrorTypeInvalidEncoding, domain.ErrInvalidEncoding.Error())
	case errors.Is(err, domain.ErrNotAPDF):
		return apperrors.NewClientError(apperrors.ErrorTypeNotAPDF, domain.ErrNotAPDF.Error())
	case errors.Is(err, domain.ErrFileTooLarge):
		return apperrors.NewClientError(apperrors.ErrorTypeTooLarge, domain.ErrFileTooLarge.Error())
	case errors.Is(err, domain.ErrUploadFailed):
		return apperrors.NewProviderError(apperrors.ErrorTypeUploadFailed, "OCR processing failed", err)
	case errors.Is(err, domain.ErrSubmitFailed):
		return apperrors.NewProviderError(apperrors.ErrorTypeSubmitFailed, "OCR processing failed", err)
	case errors.Is(err, domain.ErrFetchFailed):
		return apperrors.NewProviderError(apperrors.ErrorTypeFetchFailed, "OCR processing failed", err)
	case errors.Is(err, domain.ErrOCRUnavailable):
		return apperrors.NewUnavailableError(domain.ErrOCRUnavailable.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return apperrors.NewUnavailableError(domain.ErrStorageUnavailable.Error())
	}

	return apperrors.NewInternalError("internal error", err)
}

// respondError maps err to its HTTP status and writes the JSON error
// body. Provider failures keep the provider's message in the body so
// callers can see what the upstream reported.
func respondError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	msg := appErr.Message
	if appErr.Cause != nil {
		msg = msg + ": " + appErr.Cause.Error()
	}
	writeError(w, appErr.StatusCode, msg)
}
