package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyunw00/attendbot/config"
)

// Uploader stores a blob and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// New picks the uploader for the configured driver: "s3" for any
// S3-compatible endpoint via minio, anything else the local static directory.
func New(cfg config.AppConfig) (Uploader, error) {
	if cfg.BlobDriver == "s3" {
		return NewS3Store(cfg)
	}
	return NewLocalStore(cfg.LocalUploadDir, cfg.LocalUploadBase)
}

// S3Store uploads to an S3-compatible bucket.
type S3Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewS3Store(cfg config.AppConfig) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	base := cfg.S3PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.S3UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.S3Endpoint, cfg.S3Bucket)
	}
	return &S3Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", name, err)
	}
	return s.publicBaseURL + "/" + name, nil
}

// LocalStore writes uploads into a static directory served by the HTTP
// server itself.
type LocalStore struct {
	dir  string
	base string
}

func NewLocalStore(dir, base string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalStore{dir: dir, base: strings.TrimRight(base, "/")}, nil
}

func (l *LocalStore) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	name = filepath.Base(name) // no path traversal through blob names
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return l.base + "/" + name, nil
}
