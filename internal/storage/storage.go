package storage

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/selfhydro/selfhydro-api/internal/domain"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// DefaultSignedURLExpiry is used when SignOptions.Expiry is zero.
const DefaultSignedURLExpiry = 24 * time.Hour

// ObjectInfo represents metadata for a remote object.
type ObjectInfo struct {
	Key     string
	Size    int64
	Updated time.Time
}

// SignOptions controls one signed download URL.
type SignOptions struct {
	Expiry    time.Duration
	Transform domain.Transform
}

func (o SignOptions) expiry() time.Duration {
	if o.Expiry <= 0 {
		return DefaultSignedURLExpiry
	}
	return o.Expiry
}

// ObjectStore captures the read-only bucket operations the API needs.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// List returns the objects directly under prefix, at most limit of them
	// when limit > 0. Folder placeholders are not returned.
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
	// Get returns the full object body or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Sign returns a time-limited GET URL for key with the transform hints appended.
	Sign(ctx context.Context, key string, opts SignOptions) (string, error)
	Close() error
}

// AppendTransform adds the w/h/q resize hints to a signed URL.
func AppendTransform(rawURL string, t domain.Transform) string {
	if t.IsZero() {
		return rawURL
	}

	params := url.Values{}
	if t.Width > 0 {
		params.Set("w", strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		params.Set("h", strconv.Itoa(t.Height))
	}
	if t.Quality > 0 {
		params.Set("q", strconv.Itoa(t.Quality))
	}

	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator + params.Encode()
}

func isFolderKey(key, prefix string) bool {
	return key == "" || strings.HasSuffix(key, "/") || key == prefix
}
