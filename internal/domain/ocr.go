package domain

import (
	"context"
	"time"
)

// OCRType selects the kind of OCR output the provider produces.
type OCRType string

const (
	// OCRTypeSearchableImage keeps the original image and overlays
	// invisible text.
	OCRTypeSearchableImage OCRType = "SEARCHABLE_IMAGE"
	// OCRTypeSearchableImageExact preserves the original image exactly,
	// at the cost of slightly lower text accuracy.
	OCRTypeSearchableImageExact OCRType = "SEARCHABLE_IMAGE_EXACT"
)

// SupportedLocales are the OCR languages accepted by the provider.
var SupportedLocales = map[string]bool{
	"da-DK": true,
	"de-DE": true,
	"en-GB": true,
	"en-US": true,
	"es-ES": true,
	"fi-FI": true,
	"fr-FR": true,
	"it-IT": true,
	"ja-JP": true,
	"ko-KR": true,
	"nb-NO": true,
	"nl-NL": true,
	"pt-BR": true,
	"sv-SE": true,
	"zh-CN": true,
	"zh-HK": true,
}

const (
	DefaultLocale  = "en-US"
	DefaultOCRType = OCRTypeSearchableImage
)

// OCROptions carries the per-job OCR parameters. Construct it with
// NewOCROptions so invalid values are rejected before any remote call.
type OCROptions struct {
	Locale string
	Type   OCRType
}

// NewOCROptions validates locale and ocr type, applying defaults for
// empty values.
func NewOCROptions(locale, ocrType string) (OCROptions, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if !SupportedLocales[locale] {
		return OCROptions{}, &OptionError{Field: "locale", Value: locale}
	}

	t := OCRType(ocrType)
	if ocrType == "" {
		t = DefaultOCRType
	}
	switch t {
	case OCRTypeSearchableImage, OCRTypeSearchableImageExact:
	default:
		return OCROptions{}, &OptionError{Field: "ocr_type", Value: ocrType}
	}

	return OCROptions{Locale: locale, Type: t}, nil
}

// RemoteAsset is an opaque handle to content stored at the OCR provider.
// Every asset a job creates must be deleted, best-effort, when the job
// ends.
type RemoteAsset struct {
	ID          string
	DownloadURI string
}

// OCRJobSpec describes one OCR job to be submitted to the provider.
type OCRJobSpec struct {
	Input   *RemoteAsset
	Options OCROptions
}

// OCRJobResult is the outcome of a completed job.
type OCRJobResult struct {
	Data          []byte
	OriginalSize  int
	ProcessedSize int
	ProcessedAt   time.Time
}

// OCRProvider is the outbound contract with the external OCR service.
// Implementations must be safe for concurrent use; the credential
// session is shared read-only across jobs.
type OCRProvider interface {
	// Upload stores raw bytes at the provider and returns the asset
	// handle.
	Upload(ctx context.Context, data []byte, mediaType string) (*RemoteAsset, error)
	// Submit starts an OCR job and returns its status location.
	Submit(ctx context.Context, job OCRJobSpec) (string, error)
	// AwaitResult blocks until the job at location finishes and returns
	// the result asset.
	AwaitResult(ctx context.Context, location string) (*RemoteAsset, error)
	// FetchContent downloads an asset's bytes in full.
	FetchContent(ctx context.Context, asset *RemoteAsset) ([]byte, error)
	// DeleteAsset removes an asset from the provider.
	DeleteAsset(ctx context.Context, asset *RemoteAsset) error
}
