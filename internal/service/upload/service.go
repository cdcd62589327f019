package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// allowed image extensions, matching what the storefront accepts.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Service stores uploaded product images in a MinIO bucket and hands back
// a public URL.
type Service struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func New(cfg Config) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &Service{
		client:   client,
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		useSSL:   cfg.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Store uploads one image and returns its public URL. The object name is
// randomized to avoid collisions between same-named files.
func (s *Service) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image format %q", ext)
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	objectName := uuid.NewString() + ext
	_, err = s.client.PutObject(ctx, s.bucket, objectName, f, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName), nil
}
