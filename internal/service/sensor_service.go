package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/storage"
	"github.com/selfhydro/selfhydro-api/internal/telemetry"
)

type SensorService struct {
	store storage.ObjectStore
	opts  Options
}

func NewSensorService(store storage.ObjectStore, opts Options) *SensorService {
	return &SensorService{store: store, opts: opts}
}

// Latest returns the newest decodable reading. Object names embed a
// zero-padded timestamp, so the greatest name is the newest record.
func (s *SensorService) Latest(ctx context.Context) (domain.SensorReading, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	keys, err := s.newestKeys(ctx)
	if err != nil {
		return domain.SensorReading{}, err
	}
	if len(keys) == 0 {
		return domain.SensorReading{}, domain.ErrNoSensorData
	}

	for _, key := range keys {
		o, err := s.read(ctx, key)
		if err != nil {
			return domain.SensorReading{}, err
		}
		if o.Err != nil {
			s.logSkip(o)
			continue
		}
		return o.Value, nil
	}
	return domain.SensorReading{}, domain.ErrNoReadableSensorData
}

// History returns up to limit readings, newest first. Undecodable objects are
// skipped and the walk continues until limit readings are collected. An empty
// prefix is an empty result, not an error.
func (s *SensorService) History(ctx context.Context, limit int) ([]domain.SensorReading, error) {
	if err := domain.CheckRange("limit", limit, MinLimit, MaxLimit); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	keys, err := s.newestKeys(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]telemetry.Outcome[domain.SensorReading], 0, min(limit, len(keys)))
	decoded := 0
	for _, key := range keys {
		if decoded == limit {
			break
		}
		o, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		if o.Err == nil {
			decoded++
		}
		outcomes = append(outcomes, o)
	}

	return telemetry.Collect(outcomes, s.logSkip), nil
}

func (s *SensorService) newestKeys(ctx context.Context) ([]string, error) {
	objects, err := s.store.List(ctx, SensorPrefix, 0)
	if err != nil {
		return nil, domain.Upstream("list "+SensorPrefix, err)
	}

	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.Key
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// read fetches and decodes one object. Transport failures are returned as
// err; an object that vanished or does not decode is reported in the Outcome.
func (s *SensorService) read(ctx context.Context, key string) (telemetry.Outcome[domain.SensorReading], error) {
	body, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return telemetry.Outcome[domain.SensorReading]{
			Key: key,
			Err: &telemetry.SkipError{Reason: telemetry.ReasonVanished, Err: err},
		}, nil
	}
	if err != nil {
		return telemetry.Outcome[domain.SensorReading]{}, domain.Upstream("get "+key, err)
	}

	reading, err := telemetry.DecodeSensorReading(body)
	return telemetry.Outcome[domain.SensorReading]{Key: key, Value: reading, Err: err}, nil
}

func (s *SensorService) logSkip(o telemetry.Outcome[domain.SensorReading]) {
	log.Warn().Str("object", o.Key).Err(o.Err).Msg("skipping sensor record")
	s.opts.Metrics.RecordSkip("sensor", telemetry.ReasonOf(o.Err))
}
