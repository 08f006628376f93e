package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/selfhydro/selfhydro-api/internal/config"
)

// New opens the ObjectStore selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	log.Info().Str("driver", cfg.Driver).Str("bucket", cfg.Bucket).Msg("opening object store")

	switch cfg.Driver {
	case config.DriverGCS:
		return NewGCSStore(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
		})
	case config.DriverS3:
		return NewS3Store(S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	case config.DriverLocal:
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
