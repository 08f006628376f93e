package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/selfhydro/selfhydro-api/internal/storage"
	"github.com/selfhydro/selfhydro-api/internal/storage/storagetest"
)

func TestSigner_PreservesOrder(t *testing.T) {
	st := storagetest.New()
	// later keys finish first
	st.SignHook = func(key string) {
		var n int
		fmt.Sscanf(strings.TrimPrefix(key, "images/"), "%d", &n)
		time.Sleep(time.Duration(20-n) * time.Millisecond)
	}
	signer := NewSigner(st, time.Hour, 8, nil)

	reqs := make([]SignRequest, 20)
	for i := range reqs {
		reqs[i] = SignRequest{Key: fmt.Sprintf("images/%d", i)}
	}
	results := signer.SignAll(context.Background(), reqs)

	if len(results) != len(reqs) {
		t.Fatalf("len: got %d, want %d", len(results), len(reqs))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		if !strings.Contains(r.URL, fmt.Sprintf("/images/%d?", i)) {
			t.Errorf("result %d: got %s", i, r.URL)
		}
	}
}

func TestSigner_BoundsConcurrency(t *testing.T) {
	st := storagetest.New()
	st.SignHook = func(string) { time.Sleep(5 * time.Millisecond) }
	signer := NewSigner(st, time.Hour, 3, nil)

	reqs := make([]SignRequest, 12)
	for i := range reqs {
		reqs[i] = SignRequest{Key: fmt.Sprintf("images/%d.jpg", i)}
	}
	signer.SignAll(context.Background(), reqs)

	if peak := st.MaxInflight.Load(); peak > 3 {
		t.Errorf("peak concurrency: got %d, want <= 3", peak)
	}
	if st.SignCalls.Load() != 12 {
		t.Errorf("sign calls: got %d, want 12", st.SignCalls.Load())
	}
}

func TestSigner_IsolatesFailures(t *testing.T) {
	st := storagetest.New()
	boom := errors.New("missing credentials")
	st.SignErr = func(key string, _ storage.SignOptions) error {
		if key == "images/bad.jpg" {
			return boom
		}
		return nil
	}
	signer := NewSigner(st, time.Hour, 0, nil)

	results := signer.SignAll(context.Background(), []SignRequest{
		{Key: "images/a.jpg"},
		{Key: "images/bad.jpg"},
		{Key: "images/c.jpg"},
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("good keys failed: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, boom) || results[1].URL != "" {
		t.Errorf("bad key: got %+v", results[1])
	}
}

func TestSigner_Empty(t *testing.T) {
	signer := NewSigner(storagetest.New(), time.Hour, 4, nil)
	if got := signer.SignAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
}
