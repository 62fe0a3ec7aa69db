package config

import (
	"pdf-ocr-webhook/internal/domain"
	"pdf-ocr-webhook/internal/repository"
	"pdf-ocr-webhook/internal/service"
	"pdf-ocr-webhook/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config       domain.Config
	Logger       domain.Logger
	Provider     domain.OCRProvider
	StorageRelay domain.StorageRelay
	Normalizer   *service.Normalizer
	OCRService   *service.OCRService
	InboxService *service.InboxService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Missing credentials disable the OCR capability instead of
	// crashing; the service then reports itself unavailable.
	var provider domain.OCRProvider
	if config.GetAdobeClientID() != "" && config.GetAdobeClientSecret() != "" {
		provider = repository.NewAdobeClient(config, appLogger)
	} else {
		appLogger.Warn("PDF_SERVICES_CLIENT_ID or PDF_SERVICES_CLIENT_SECRET not set, OCR disabled")
	}

	var relay domain.StorageRelay
	if config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		r, err := repository.NewSupabaseStorage(config, appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize storage relay", err)
		} else {
			relay = r
		}
	} else {
		appLogger.Warn("SUPABASE_URL or SUPABASE_ANON_KEY not set, inbox relay disabled")
	}

	ocrService := service.NewOCRService(provider, appLogger)
	inboxService := service.NewInboxService(relay, ocrService, config, appLogger)

	return &Container{
		Config:       config,
		Logger:       appLogger,
		Provider:     provider,
		StorageRelay: relay,
		Normalizer:   service.NewNormalizer(config.GetMaxFileSize()),
		OCRService:   ocrService,
		InboxService: inboxService,
	}
}

// OCRAvailable reports whether the OCR provider is configured
func (c *Container) OCRAvailable() bool {
	return c.Provider != nil
}

// StorageAvailable reports whether the storage relay is configured
func (c *Container) StorageAvailable() bool {
	return c.StorageRelay != nil
}
