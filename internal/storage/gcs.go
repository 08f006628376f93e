package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSConfig encapsulates the connection info for Google Cloud Storage.
type GCSConfig struct {
	Bucket string
	// CredentialsFile is a service account key. When empty, application
	// default credentials are used and signing relies on the IAM signBlob API.
	CredentialsFile string
}

// GCSStore implements ObjectStore for a Google Cloud Storage bucket.
type GCSStore struct {
	client         *gcs.Client
	bucket         *gcs.BucketHandle
	googleAccessID string
	privateKey     []byte
}

// NewGCSStore builds a GCSStore. The client is created once and shared by all requests.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}

	var (
		opts      []option.ClientOption
		accessID  string
		signerKey []byte
	)
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read gcs credentials: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, gcs.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("parse gcs credentials: %w", err)
		}
		accessID, signerKey = jwt.Email, jwt.PrivateKey
		opts = append(opts, option.WithCredentialsJSON(data))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &GCSStore{
		client:         client,
		bucket:         client.Bucket(cfg.Bucket),
		googleAccessID: accessID,
		privateKey:     signerKey,
	}, nil
}

func (s *GCSStore) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	query := &gcs.Query{Prefix: prefix, Delimiter: "/"}
	if err := query.SetAttrSelection([]string{"Name", "Size", "Updated"}); err != nil {
		return nil, fmt.Errorf("gcs list %s: %w", prefix, err)
	}

	results := make([]ObjectInfo, 0)
	it := s.bucket.Objects(ctx, query)
	for limit <= 0 || len(results) < limit {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list %s: %w", prefix, err)
		}
		// synthetic sub-prefix entries carry no name
		if attrs.Prefix != "" || isFolderKey(attrs.Name, prefix) {
			continue
		}
		results = append(results, ObjectInfo{
			Key:     attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}
	return results, nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs get %s: %w", key, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs get %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	return data, nil
}

func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs stat %s: %w", key, err)
	}
	return true, nil
}

func (s *GCSStore) Sign(ctx context.Context, key string, opts SignOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	signed, err := s.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(opts.expiry()),
		GoogleAccessID: s.googleAccessID,
		PrivateKey:     s.privateKey,
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign %s: %w", key, err)
	}
	return AppendTransform(signed, opts.Transform), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ ObjectStore = (*GCSStore)(nil)
