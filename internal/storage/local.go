package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	cmstorage "github.com/chartmuseum/storage"
)

// LocalStore implements ObjectStore on a directory tree, for development
// without cloud credentials. Object keys are slash-separated paths below Root.
type LocalStore struct {
	backend *cmstorage.LocalFilesystemBackend
	root    string
}

// NewLocalStore builds a LocalStore backed by chartmuseum's local filesystem backend.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root must be provided")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage root: %w", err)
	}
	return &LocalStore{
		backend: cmstorage.NewLocalFilesystemBackend(abs),
		root:    abs,
	}, nil
}

func (s *LocalStore) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objects, err := s.backend.ListObjects(prefix)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local list %s: %w", prefix, err)
	}

	dir := strings.TrimSuffix(prefix, "/")
	results := make([]ObjectInfo, 0, len(objects))
	for _, object := range objects {
		// listed paths are relative to the prefix directory; keep direct children only
		rel := filepath.ToSlash(object.Path)
		if strings.Contains(rel, "/") {
			continue
		}
		key := path.Join(dir, rel)
		if isFolderKey(key, prefix) {
			continue
		}
		info := ObjectInfo{Key: key, Updated: object.LastModified}
		if st, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(key))); err == nil {
			info.Size = st.Size()
		}
		results = append(results, info)
	}

	// walk order is lexical already; sort to match the cloud listings regardless
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	object, err := s.backend.GetObject(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local get %s: %w", key, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("local get %s: %w", key, err)
	}
	return object.Content, nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Sign returns a file:// URL. Nothing is signed locally; the expiry is only
// recorded in the query so callers see the same shape as cloud URLs.
func (s *LocalStore) Sign(ctx context.Context, key string, opts SignOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(key))),
		RawQuery: url.Values{"expires": {strconv.FormatInt(time.Now().Add(opts.expiry()).Unix(), 10)}}.Encode(),
	}
	return AppendTransform(u.String(), opts.Transform), nil
}

func (s *LocalStore) Close() error {
	return nil
}

var _ ObjectStore = (*LocalStore)(nil)
