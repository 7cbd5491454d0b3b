package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/sobatmedia/smm-store/internal"
)

// OSSUploader stores objects in an Alibaba Cloud OSS bucket.
type OSSUploader struct {
	bucket   *oss.Bucket
	endpoint string
}

func NewOSSUploader(cfg internal.StorageConfig) (*OSSUploader, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSAccessSecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSUploader{
		bucket:   bucket,
		endpoint: strings.TrimPrefix(strings.TrimPrefix(cfg.OSSEndpoint, "https://"), "http://"),
	}, nil
}

func (u *OSSUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := u.bucket.PutObject(key, r, opts...); err != nil {
		return "", internal.NewExternalError("Gagal mengunggah berkas", err)
	}
	return fmt.Sprintf("https://%s.%s/%s", u.bucket.BucketName, u.endpoint, key), nil
}
