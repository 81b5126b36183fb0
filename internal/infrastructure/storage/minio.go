package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

// DefaultURLExpiry is used when no presign expiry is configured
const DefaultURLExpiry = 7 * 24 * time.Hour

// MinIOClient mirrors artifacts into a MinIO bucket
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string // e.g. https://minio.example.com when MinIO sits behind a proxy
	expiry    time.Duration
}

// NewMinIOClient creates a MinIO client and makes sure the bucket exists
func NewMinIOClient(ctx context.Context, cfg *config.StorageConfig) (*MinIOClient, error) {
	m, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return m, nil
}

func newClient(cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &MinIOClient{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		expiry:    expiry,
	}, nil
}

// ensureBucket creates the bucket if it does not exist. Objects stay private;
// readers get presigned URLs.
func (m *MinIOClient) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores data under objectName and returns a presigned URL for it
func (m *MinIOClient) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return m.GetFileURL(ctx, objectName)
}

// GetFileURL returns a presigned GET URL, rewritten onto the public URL when
// one is configured
func (m *MinIOClient) GetFileURL(ctx context.Context, objectName string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, m.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return publicize(u, m.publicURL), nil
}

// ListFiles lists object names under prefix
func (m *MinIOClient) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}
	return files, nil
}

// publicize swaps scheme and host of u for those of public, keeping the
// bucket path and signed query
func publicize(u *url.URL, public string) string {
	if public == "" {
		return u.String()
	}
	return public + u.RequestURI()
}
