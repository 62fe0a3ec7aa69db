package config

import (
	"os"
	"strconv"

	"pdf-ocr-webhook/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort        string
	MaxFileSize       int64
	LogLevel          string
	AdobeClientID     string
	AdobeClientSecret string
	PollIntervalMs    int64
	SupabaseURL       string
	SupabaseKey       string
	StorageBucket     string
	InboxFolder       string
	OutboxFolder      string
	APIKey            string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:        getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:       getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		AdobeClientID:     getEnvOrDefault("PDF_SERVICES_CLIENT_ID", ""),
		AdobeClientSecret: getEnvOrDefault("PDF_SERVICES_CLIENT_SECRET", ""),
		PollIntervalMs:    getEnvInt64OrDefault("OCR_POLL_INTERVAL_MS", 2000),
		SupabaseURL:       getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:       getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		StorageBucket:     getEnvOrDefault("STORAGE_BUCKET", "documents"),
		InboxFolder:       getEnvOrDefault("INBOX_FOLDER", "inbox"),
		OutboxFolder:      getEnvOrDefault("OUTBOX_FOLDER", "processed"),
		APIKey:            getEnvOrDefault("WEBHOOK_API_KEY", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed PDF size in bytes
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAdobeClientID returns the PDF Services client id
func (c *AppConfig) GetAdobeClientID() string {
	return c.AdobeClientID
}

// GetAdobeClientSecret returns the PDF Services client secret
func (c *AppConfig) GetAdobeClientSecret() string {
	return c.AdobeClientSecret
}

// GetPollInterval returns the job poll interval in milliseconds
func (c *AppConfig) GetPollInterval() int64 {
	return c.PollIntervalMs
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetStorageBucket returns the storage bucket name
func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

// GetInboxFolder returns the relay inbox folder
func (c *AppConfig) GetInboxFolder() string {
	return c.InboxFolder
}

// GetOutboxFolder returns the relay outbox folder
func (c *AppConfig) GetOutboxFolder() string {
	return c.OutboxFolder
}

// GetAPIKey returns the static webhook API key, empty when auth is disabled
func (c *AppConfig) GetAPIKey() string {
	return c.APIKey
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
