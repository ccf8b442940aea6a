package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/agentstation/toolindex/pkg/errors"
)

// MinioStore persists documents in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to the configured object-storage endpoint. The bucket
// must already exist; provisioning is a deployment concern.
func NewMinio(cfg Config) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, &errors.ConfigError{
			Component: "storage",
			Message:   "minio backend requires endpoint and bucket",
		}
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, &errors.ConfigError{Component: "storage", Message: "minio client init failed", Err: err}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Get downloads the object at key. A missing object maps to ErrNotFound.
func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.WrapIO("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// GetObject is lazy; NoSuchKey surfaces on the first read.
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapIO("get", key, err)
	}
	return data, nil
}

// Put uploads the object at key, replacing any previous version.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.WrapIO("put", key, err)
	}
	return nil
}
