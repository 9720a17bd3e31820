package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appErrors "secondbrain-backend/pkg/errors"
)

// MinioStore implements Store on a MinIO (or any S3-compatible) bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// MinioConfig holds the connection settings for the object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base URL used for preview links,
	// e.g. "https://files.example.com". Falls back to the endpoint when empty.
	PublicURL string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to connect to object store")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, appErrors.Wrap(err, "failed to create bucket")
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// Put stores content under a freshly generated id.
func (s *MinioStore) Put(ctx context.Context, content []byte, contentType string) (string, error) {
	id := uuid.New().String()
	_, err := s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", appErrors.Wrap(err, "failed to store blob")
	}
	return id, nil
}

// Get downloads a blob by id. A missing object surfaces as NotFound.
func (s *MinioStore) Get(ctx context.Context, id string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to open blob")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, appErrors.NewNotFound(fmt.Sprintf("blob %s not found", id))
		}
		return nil, appErrors.Wrap(err, "failed to read blob")
	}
	return data, nil
}

// PreviewURL builds a direct link to the object.
func (s *MinioStore) PreviewURL(id string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, id)
}
