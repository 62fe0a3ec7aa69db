package handler

import (
	"net/http"
	"time"

	"pdf-ocr-webhook/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// Every failure the service reports is JSON, including routing ones.
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":            "healthy",
			"service":           "pdf-ocr-webhook",
			"ocr_available":     container.OCRAvailable(),
			"storage_available": container.StorageAvailable(),
			"timestamp":         time.Now().Format(time.RFC3339),
		})
	}).Methods("GET")

	// Initialize handlers
	ocrHandler := NewOCRHandler(container.Normalizer, container.OCRService, container.Logger)
	inboxHandler := NewInboxHandler(container.InboxService, container.Logger)

	// Webhook routes, behind the optional static API key
	protected := router.PathPrefix("").Subrouter()
	protected.Use(APIKeyMiddleware(container.Config.GetAPIKey(), container.Logger))

	protected.HandleFunc("/ocr", ocrHandler.ProcessOCR).Methods("POST")
	protected.HandleFunc("/ocr-file", ocrHandler.ProcessOCRFile).Methods("POST")
	protected.HandleFunc("/inbox/files", inboxHandler.ListFiles).Methods("GET")
	protected.HandleFunc("/inbox/process", inboxHandler.ProcessInbox).Methods("POST")

	// Configure CORS. Webhook callers (Zapier and friends) come from
	// anywhere, so the origin list stays open.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"x-api-key",
		},
		MaxAge: 3600,
	})

	return c.Handler(router)
}
