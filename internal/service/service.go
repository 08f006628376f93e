package service

import (
	"context"
	"time"

	"github.com/selfhydro/selfhydro-api/internal/metrics"
)

// Object prefixes written by the capture and sensor daemons.
const (
	SensorPrefix = "sensor_data/"
	ImagePrefix  = "images/"
)

// Request bounds shared by the list endpoints.
const (
	DefaultLimit = 24
	MinLimit     = 1
	MaxLimit     = 100
)

// Options carries the settings common to every service.
type Options struct {
	// StoreTimeout bounds the store calls of one request. Zero means no extra deadline.
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.StoreTimeout)
}
