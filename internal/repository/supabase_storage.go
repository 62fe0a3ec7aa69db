package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"pdf-ocr-webhook/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStorage implements domain.StorageRelay on top of a Supabase
// Storage bucket.
type SupabaseStorage struct {
	client *supabase.Client
	bucket string
	logger domain.Logger
}

// NewSupabaseStorage creates the relay client from the configured URL,
// key and bucket.
func NewSupabaseStorage(config domain.Config, logger domain.Logger) (*SupabaseStorage, error) {
	client, err := supabase.NewClient(config.GetSupabaseURL(), config.GetSupabaseKey(), &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	logger.Info("Storage relay initialized", "bucket", config.GetStorageBucket())
	return &SupabaseStorage{
		client: client,
		bucket: config.GetStorageBucket(),
		logger: logger,
	}, nil
}

// ListFiles lists one folder of the bucket.
func (s *SupabaseStorage) ListFiles(_ context.Context, folder string) ([]domain.FileInfo, error) {
	objects, err := s.client.Storage.ListFiles(s.bucket, folder, storage_go.FileSearchOptions{
		SortByOptions: storage_go.SortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	files := make([]domain.FileInfo, 0, len(objects))
	for _, obj := range objects {
		files = append(files, domain.FileInfo{
			Name: obj.Name,
			Path: folder + "/" + obj.Name,
			ID:   obj.Id,
			Size: objectSize(obj),
		})
	}
	return files, nil
}

// Download fetches one object's bytes.
func (s *SupabaseStorage) Download(_ context.Context, path string) ([]byte, error) {
	data, err := s.client.Storage.DownloadFile(s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return data, nil
}

// Upload stores bytes at path, overwriting an existing object.
func (s *SupabaseStorage) Upload(_ context.Context, data []byte, path string) (string, error) {
	contentType := "application/pdf"
	upsert := true

	resp, err := s.client.Storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}

	s.logger.Debug("Uploaded to storage", "path", path, "bytes", len(data))
	if resp.Key != "" {
		return resp.Key, nil
	}
	return path, nil
}

// objectSize digs the byte size out of the object metadata when the
// storage API provides it.
func objectSize(obj storage_go.FileObject) int64 {
	raw, err := json.Marshal(obj.Metadata)
	if err != nil {
		return 0
	}
	var meta struct {
		Size int64 `json:"size"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return 0
	}
	return meta.Size
}
