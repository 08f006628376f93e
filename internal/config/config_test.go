package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("GCS_BUCKET", "hydro-bucket")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("port: got %q, want 8000", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverGCS {
		t.Errorf("driver: got %q, want %q", cfg.Storage.Driver, DriverGCS)
	}
	if cfg.Images.Delivery != DeliverySigned {
		t.Errorf("delivery: got %q, want %q", cfg.Images.Delivery, DeliverySigned)
	}
	if cfg.Images.SignedURLExpiry != 24*time.Hour {
		t.Errorf("expiry: got %v, want 24h", cfg.Images.SignedURLExpiry)
	}
	if cfg.Images.SignMaxWorkers != 32 {
		t.Errorf("workers: got %d, want 32", cfg.Images.SignMaxWorkers)
	}
	if cfg.Storage.StoreTimeout() != 10*time.Second {
		t.Errorf("store timeout: got %v, want 10s", cfg.Storage.StoreTimeout())
	}
	if !cfg.App.IsDevelopment() {
		t.Errorf("env: got %q, want development", cfg.App.Env)
	}
}

func TestFromViper_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr string
	}{
		{"missing bucket", map[string]interface{}{}, "GCS_BUCKET"},
		{"missing bucket s3", map[string]interface{}{"STORAGE_DRIVER": "s3"}, "GCS_BUCKET"},
		{"unknown driver", map[string]interface{}{"STORAGE_DRIVER": "ftp"}, "unknown storage driver"},
		{"unknown delivery", map[string]interface{}{"GCS_BUCKET": "b", "IMAGE_DELIVERY": "carrier-pigeon"}, "delivery mode"},
		{"zero expiry", map[string]interface{}{"GCS_BUCKET": "b", "SIGNED_URL_EXPIRY_HOURS": 0}, "EXPIRY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromViper_LocalDriverNeedsNoBucket(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "LOCAL")
	v.Set("LOCAL_STORAGE_DIR", t.TempDir())
	v.Set("IMAGE_DELIVERY", "stream")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Storage.Driver != DriverLocal {
		t.Errorf("driver: got %q, want local", cfg.Storage.Driver)
	}
	if cfg.Images.Delivery != DeliveryStream {
		t.Errorf("delivery: got %q, want stream", cfg.Images.Delivery)
	}
}
