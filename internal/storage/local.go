package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sobatmedia/smm-store/internal"
)

// LocalUploader writes files under a directory served as static content.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (u *LocalUploader) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	// Keys are built server-side, but keep path traversal out anyway.
	clean := filepath.Clean("/" + key)
	dest := filepath.Join(u.dir, clean)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", internal.NewInternalError("Gagal menyimpan berkas", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", internal.NewInternalError("Gagal menyimpan berkas", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", internal.NewInternalError("Gagal menyimpan berkas", err)
	}

	return u.baseURL + "/uploads" + clean, nil
}
