// Package storage persists uploaded files, currently payment proof images.
// The Uploader interface hides whether bytes land in Alibaba OSS or on the
// local disk; the choice is made once at startup from configuration.
package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/sobatmedia/smm-store/internal"
)

// Uploader stores a file under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// NewUploader selects the storage backend from configuration. Missing OSS
// credentials fall back to local disk so development does not need a bucket.
func NewUploader(cfg internal.StorageConfig, logger *slog.Logger) (Uploader, error) {
	if cfg.UseLocalStorage() {
		logger.Warn("oss credentials missing, storing uploads on local disk", "dir", cfg.LocalDir)
		return NewLocalUploader(cfg.LocalDir, cfg.PublicBaseURL)
	}
	return NewOSSUploader(cfg)
}
