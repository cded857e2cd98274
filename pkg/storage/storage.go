// Package storage keeps uploaded statement files on the local filesystem.
// Files are namespaced by the hashed user id; raw platform ids never appear
// in paths.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored file matches the id.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, userIDHash string, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, userIDHash string, fileID uuid.UUID) (*FileInfo, error)

	// GetReader returns a reader for a file (for streaming processing)
	GetReader(ctx context.Context, userIDHash string, fileID uuid.UUID) (io.ReadCloser, error)

	// List returns all files for a user
	List(ctx context.Context, userIDHash string) ([]*FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, userIDHash string, fileID uuid.UUID) error
}

// Config holds storage configuration
type Config struct {
	LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH" envDefault:"./uploads"`
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
