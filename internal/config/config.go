// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverGCS   = "gcs"
	DriverS3    = "s3"
	DriverLocal = "local"

	DeliverySigned = "signed"
	DeliveryStream = "stream"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Images  ImageConfig
	App     AppConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type StorageConfig struct {
	Driver          string
	Bucket          string
	CredentialsFile string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Region        string
	S3UseSSL        bool
	LocalDir        string
	TimeoutSeconds  int
}

type ImageConfig struct {
	Delivery        string
	SignedURLExpiry time.Duration
	SignMaxWorkers  int
}

type AppConfig struct {
	Env       string
	BaseURL   string
	SensorURL string
	LogLevel  string
}

// StoreTimeout is the deadline applied to the store calls of a single request.
func (c StorageConfig) StoreTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads the process configuration once from the environment and an optional .env file.
func Load() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance, loadErr = FromViper(v)
	})

	return instance, loadErr
}

// SetDefaults registers every key with its default so AutomaticEnv can resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("ENV", "development")
	v.SetDefault("BASE_URL", "/")
	v.SetDefault("SENSOR_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STORAGE_DRIVER", DriverGCS)
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("LOCAL_STORAGE_DIR", "./data/bucket")
	v.SetDefault("STORE_TIMEOUT_SECONDS", 10)

	v.SetDefault("IMAGE_DELIVERY", DeliverySigned)
	v.SetDefault("SIGNED_URL_EXPIRY_HOURS", 24)
	v.SetDefault("SIGN_MAX_WORKERS", 32)
}

// FromViper builds and validates a Config from v, after applying defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			Bucket:          strings.TrimSpace(v.GetString("GCS_BUCKET")),
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			S3Endpoint:      v.GetString("S3_ENDPOINT"),
			S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:     v.GetString("S3_SECRET_KEY"),
			S3Region:        v.GetString("S3_REGION"),
			S3UseSSL:        v.GetBool("S3_USE_SSL"),
			LocalDir:        v.GetString("LOCAL_STORAGE_DIR"),
			TimeoutSeconds:  v.GetInt("STORE_TIMEOUT_SECONDS"),
		},
		Images: ImageConfig{
			Delivery:        strings.ToLower(strings.TrimSpace(v.GetString("IMAGE_DELIVERY"))),
			SignedURLExpiry: time.Duration(v.GetInt("SIGNED_URL_EXPIRY_HOURS")) * time.Hour,
			SignMaxWorkers:  v.GetInt("SIGN_MAX_WORKERS"),
		},
		App: AppConfig{
			Env:       v.GetString("ENV"),
			BaseURL:   v.GetString("BASE_URL"),
			SensorURL: v.GetString("SENSOR_URL"),
			LogLevel:  v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverGCS, DriverS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET must be provided for storage driver %q", c.Storage.Driver)
		}
	case DriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR must be provided for the local storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Images.Delivery {
	case DeliverySigned, DeliveryStream:
	default:
		return fmt.Errorf("unknown image delivery mode %q", c.Images.Delivery)
	}

	if c.Images.SignedURLExpiry <= 0 {
		return fmt.Errorf("SIGNED_URL_EXPIRY_HOURS must be positive")
	}
	if c.Images.SignMaxWorkers <= 0 {
		c.Images.SignMaxWorkers = 32
	}
	if c.Storage.TimeoutSeconds <= 0 {
		c.Storage.TimeoutSeconds = 10
	}
	return nil
}
