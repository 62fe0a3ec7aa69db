package domain

import "errors"

// Domain errors
var (
	// Client-input errors (4xx).
	ErrNoInput         = errors.New("no PDF input provided")
	ErrInvalidEncoding = errors.New("invalid base64 PDF data")
	ErrNotAPDF         = errors.New("data is not a PDF")
	ErrFileTooLarge    = errors.New("PDF exceeds maximum allowed size")

	// Provider-interaction errors (5xx).
	ErrUploadFailed = errors.New("upload to OCR provider failed")
	ErrSubmitFailed = errors.New("OCR job submission failed")
	ErrFetchFailed  = errors.New("fetching OCR result failed")

	// Service state.
	ErrOCRUnavailable     = errors.New("OCR service not available")
	ErrStorageUnavailable = errors.New("storage relay not available")
)

// OptionError reports an unrecognized OCR option value.
type OptionError struct {
	Field string
	Value string
}

func (e *OptionError) Error() string {
	return "invalid " + e.Field + ": " + e.Value
}
