package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Store implements ObjectStore for S3-compatible services (MinIO, AWS, R2, ...).
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store builds a new S3Store backed by the MinIO client.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	// minio wants a bare host; an explicit scheme overrides UseSSL
	endpoint := strings.TrimSpace(cfg.Endpoint)
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		secure = true
	case strings.HasPrefix(endpoint, "http://"):
		secure = false
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	endpoint = strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	// cancelling stops the listing goroutine when we break early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]ObjectInfo, 0)
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, object.Err)
		}
		if isFolderKey(object.Key, prefix) {
			continue
		}
		results = append(results, ObjectInfo{
			Key:     object.Key,
			Size:    object.Size,
			Updated: object.LastModified,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, s.wrap("read", key, err)
	}
	return data, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3 stat %s: %w", key, err)
}

func (s *S3Store) Sign(ctx context.Context, key string, opts SignOptions) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, opts.expiry(), url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3 sign %s: %w", key, err)
	}
	return AppendTransform(u.String(), opts.Transform), nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) wrap(op, key string, err error) error {
	if isS3NotFound(err) {
		return fmt.Errorf("s3 %s %s: %w", op, key, ErrObjectNotFound)
	}
	return fmt.Errorf("s3 %s %s: %w", op, key, err)
}

func isS3NotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ ObjectStore = (*S3Store)(nil)
