package service

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/selfhydro/selfhydro-api/internal/config"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/storage"
	"github.com/selfhydro/selfhydro-api/internal/telemetry"
)

// Bounds for the custom transform accepted by URLs.
const (
	MaxDimension   = 2048
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 85
)

// ImageOptions selects how image bytes reach the caller.
type ImageOptions struct {
	// Delivery is config.DeliverySigned or config.DeliveryStream.
	Delivery string
	// BaseURL prefixes the stream links handed out in stream delivery.
	BaseURL string
}

type ImageService struct {
	store  storage.ObjectStore
	signer *Signer
	image  ImageOptions
	opts   Options
}

func NewImageService(store storage.ObjectStore, signer *Signer, image ImageOptions, opts Options) *ImageService {
	if image.Delivery == "" {
		image.Delivery = config.DeliverySigned
	}
	return &ImageService{store: store, signer: signer, image: image, opts: opts}
}

type capture struct {
	key   string
	id    string
	taken time.Time
}

// List returns up to limit captures, newest first. Objects whose name does not
// parse, or whose URLs cannot be signed, are left out.
func (s *ImageService) List(ctx context.Context, limit int) ([]domain.ImageDescriptor, error) {
	if err := domain.CheckRange("limit", limit, MinLimit, MaxLimit); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	objects, err := s.store.List(ctx, ImagePrefix, 0)
	if err != nil {
		return nil, domain.Upstream("list "+ImagePrefix, err)
	}

	outcomes := make([]telemetry.Outcome[capture], 0, len(objects))
	for _, o := range objects {
		if !strings.HasSuffix(o.Key, telemetry.ImageSuffix) {
			continue
		}
		taken, err := telemetry.ParseCaptureTime(o.Key)
		outcomes = append(outcomes, telemetry.Outcome[capture]{
			Key:   o.Key,
			Value: capture{key: o.Key, id: telemetry.BaseName(o.Key), taken: taken},
			Err:   err,
		})
	}
	captures := telemetry.Collect(outcomes, func(o telemetry.Outcome[capture]) {
		s.logSkip(o.Key, o.Err)
	})

	sort.SliceStable(captures, func(i, j int) bool {
		if !captures[i].taken.Equal(captures[j].taken) {
			return captures[i].taken.After(captures[j].taken)
		}
		return captures[i].key > captures[j].key
	})
	if len(captures) > limit {
		captures = captures[:limit]
	}

	if s.image.Delivery == config.DeliveryStream {
		images := make([]domain.ImageDescriptor, len(captures))
		for i, c := range captures {
			images[i] = domain.ImageDescriptor{ID: c.id, URL: s.StreamURL(c.id), Timestamp: c.taken}
		}
		return images, nil
	}
	return s.signCaptures(ctx, captures)
}

func (s *ImageService) signCaptures(ctx context.Context, captures []capture) ([]domain.ImageDescriptor, error) {
	large, _ := domain.LookupPreset(domain.PresetLarge)
	thumb, _ := domain.LookupPreset(domain.PresetThumbnail)

	reqs := make([]SignRequest, 0, 2*len(captures))
	for _, c := range captures {
		reqs = append(reqs,
			SignRequest{Key: c.key, Transform: large.Transform},
			SignRequest{Key: c.key, Transform: thumb.Transform},
		)
	}
	results := s.signer.SignAll(ctx, reqs)

	images := make([]domain.ImageDescriptor, 0, len(captures))
	for i, c := range captures {
		full, small := results[2*i], results[2*i+1]
		if err := errors.Join(full.Err, small.Err); err != nil {
			s.logSkip(c.key, &telemetry.SkipError{Reason: telemetry.ReasonSignFailed, Err: err})
			continue
		}
		images = append(images, domain.ImageDescriptor{
			ID:           c.id,
			URL:          full.URL,
			ThumbnailURL: small.URL,
			Timestamp:    c.taken,
		})
	}

	// a deadline hit mid-batch is a store failure, not a run of bad images
	if err := ctx.Err(); err != nil && len(images) < len(captures) {
		return nil, domain.Upstream("sign "+ImagePrefix, err)
	}
	return images, nil
}

// URLs returns a signed URL per size preset for one capture, plus "custom"
// when custom carries a width or height. Any failed entry fails the set.
func (s *ImageService) URLs(ctx context.Context, name string, custom domain.Transform) (domain.ImageURLSet, error) {
	if err := ValidateImageName(name); err != nil {
		return nil, err
	}
	if err := ValidateTransform(custom); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	key, err := s.requireImage(ctx, name)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(domain.Presets)+1)
	reqs := make([]SignRequest, 0, len(domain.Presets)+1)
	for _, p := range domain.Presets {
		names = append(names, p.Name)
		reqs = append(reqs, SignRequest{Key: key, Transform: p.Transform})
	}
	if custom.Width > 0 || custom.Height > 0 {
		if custom.Quality == 0 {
			custom.Quality = DefaultQuality
		}
		names = append(names, domain.PresetCustom)
		reqs = append(reqs, SignRequest{Key: key, Transform: custom})
	}

	results := s.signer.SignAll(ctx, reqs)
	urls := make(domain.ImageURLSet, len(results))
	var failed error
	for i, r := range results {
		if r.Err != nil {
			log.Error().Str("object", key).Str("preset", names[i]).Err(r.Err).Msg("failed to sign image url")
			failed = errors.Join(failed, r.Err)
			continue
		}
		urls[names[i]] = r.URL
	}
	if failed != nil {
		return nil, errors.Join(domain.ErrSigning, failed)
	}
	return urls, nil
}

// Stream returns the stored bytes of one capture.
func (s *ImageService) Stream(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateImageName(name); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	key, err := s.requireImage(ctx, name)
	if err != nil {
		return nil, err
	}

	body, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, domain.ErrImageNotFound
	}
	if err != nil {
		return nil, domain.Upstream("get "+key, err)
	}
	return body, nil
}

// StreamURL is the link handed out for a capture in stream delivery.
func (s *ImageService) StreamURL(id string) string {
	return strings.TrimSuffix(s.image.BaseURL, "/") + "/images/" + url.PathEscape(id) + "/stream"
}

func (s *ImageService) requireImage(ctx context.Context, name string) (string, error) {
	key := ImagePrefix + name
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", domain.Upstream("stat "+key, err)
	}
	if !ok {
		return "", domain.ErrImageNotFound
	}
	return key, nil
}

func (s *ImageService) logSkip(key string, err error) {
	log.Warn().Str("object", key).Err(err).Msg("skipping image")
	s.opts.Metrics.RecordSkip("image", telemetry.ReasonOf(err))
}

// ValidateImageName rejects names that would escape the images/ prefix.
func ValidateImageName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return &domain.ValidationError{Param: "name", Detail: "invalid image name"}
	}
	return nil
}

// ValidateTransform checks a caller-supplied transform. Zero fields mean unset.
func ValidateTransform(t domain.Transform) error {
	if t.Width != 0 {
		if err := domain.CheckRange("width", t.Width, 1, MaxDimension); err != nil {
			return err
		}
	}
	if t.Height != 0 {
		if err := domain.CheckRange("height", t.Height, 1, MaxDimension); err != nil {
			return err
		}
	}
	if t.Quality != 0 {
		if err := domain.CheckRange("quality", t.Quality, MinQuality, MaxQuality); err != nil {
			return err
		}
	}
	return nil
}
