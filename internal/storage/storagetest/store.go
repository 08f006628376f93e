// Package storagetest provides an in-memory storage.ObjectStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/selfhydro/selfhydro-api/internal/storage"
)

// Store is an in-memory ObjectStore that counts calls per operation.
// Failures can be injected per operation or per key.
type Store struct {
	Bucket string

	mu      sync.RWMutex
	objects map[string][]byte

	ListErr   error
	GetErr    map[string]error
	ExistsErr error
	// SignErr, when set, decides per call whether signing fails.
	SignErr func(key string, opts storage.SignOptions) error

	ListCalls   atomic.Int64
	GetCalls    atomic.Int64
	ExistsCalls atomic.Int64
	SignCalls   atomic.Int64

	inflight    atomic.Int64
	MaxInflight atomic.Int64
	// SignHook runs inside Sign while the call is counted as in flight.
	SignHook func(key string)
}

// New returns an empty Store for bucket "test-bucket".
func New() *Store {
	return &Store{
		Bucket:  "test-bucket",
		objects: make(map[string][]byte),
		GetErr:  make(map[string]error),
	}
}

// Put stores body under key.
func (s *Store) Put(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), body...)
}

// Calls returns the total number of store operations performed.
func (s *Store) Calls() int64 {
	return s.ListCalls.Load() + s.GetCalls.Load() + s.ExistsCalls.Load() + s.SignCalls.Load()
}

func (s *Store) List(ctx context.Context, prefix string, limit int) ([]storage.ObjectInfo, error) {
	s.ListCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" || strings.Contains(rest, "/") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	infos := make([]storage.ObjectInfo, len(keys))
	for i, key := range keys {
		infos[i] = storage.ObjectInfo{Key: key, Size: int64(len(s.objects[key]))}
	}
	return infos, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.GetCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.GetErr[key]; err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, storage.ErrObjectNotFound)
	}
	return append([]byte(nil), body...), nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.ExistsCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Sign returns https://storage.test/<bucket>/<key>?signed=true plus the transform hints.
func (s *Store) Sign(ctx context.Context, key string, opts storage.SignOptions) (string, error) {
	s.SignCalls.Add(1)
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.MaxInflight.Load()
		if n <= peak || s.MaxInflight.CompareAndSwap(peak, n) {
			break
		}
	}

	if s.SignHook != nil {
		s.SignHook(key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.SignErr != nil {
		if err := s.SignErr(key, opts); err != nil {
			return "", err
		}
	}

	u := url.URL{
		Scheme:   "https",
		Host:     "storage.test",
		Path:     "/" + s.Bucket + "/" + key,
		RawQuery: "signed=true",
	}
	return storage.AppendTransform(u.String(), opts.Transform), nil
}

func (s *Store) Close() error {
	return nil
}

var _ storage.ObjectStore = (*Store)(nil)
