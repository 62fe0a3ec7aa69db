package domain

import "context"

// FileInfo describes one file in the remote storage folder.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	ID   string `json:"id"`
	Size int64  `json:"size"`
}

// StorageRelay is the outbound contract with the file-storage provider
// used by the batch inbox workflow.
type StorageRelay interface {
	ListFiles(ctx context.Context, folder string) ([]FileInfo, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, data []byte, path string) (string, error)
}
