package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/storage/storagetest"
)

func sensorJSON(temp float64, stamp string) []byte {
	return []byte(fmt.Sprintf(`{"temperature": %g, "humidity": 60.0, "pressure": 1013.25, "timestamp": %q}`, temp, stamp))
}

func newSensorStore(n int) *storagetest.Store {
	st := storagetest.New()
	for i := 0; i < n; i++ {
		st.Put(fmt.Sprintf("sensor_data/20240101_%02d0000.json", i), sensorJSON(float64(20+i), fmt.Sprintf("2024-01-01T%02d:00:00", i)))
	}
	return st
}

func TestSensorService_Latest(t *testing.T) {
	st := newSensorStore(3)
	svc := NewSensorService(st, Options{})

	r, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if r.Temperature != 22 {
		t.Errorf("temperature: got %v, want 22 (newest object)", r.Temperature)
	}
	if st.GetCalls.Load() != 1 {
		t.Errorf("get calls: got %d, want 1", st.GetCalls.Load())
	}
}

func TestSensorService_LatestSkipsUndecodable(t *testing.T) {
	st := newSensorStore(2)
	st.Put("sensor_data/20240101_990000.json", []byte(`{"temperature": 1,`))
	svc := NewSensorService(st, Options{})

	r, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if r.Temperature != 21 {
		t.Errorf("temperature: got %v, want 21", r.Temperature)
	}
}

func TestSensorService_LatestEmpty(t *testing.T) {
	svc := NewSensorService(storagetest.New(), Options{})
	if _, err := svc.Latest(context.Background()); !errors.Is(err, domain.ErrNoSensorData) {
		t.Errorf("want ErrNoSensorData, got %v", err)
	}
}

func TestSensorService_LatestNothingReadable(t *testing.T) {
	st := storagetest.New()
	st.Put("sensor_data/a.json", []byte(`not json`))
	st.Put("sensor_data/b.json", []byte(`{"temperature": 1}`))
	svc := NewSensorService(st, Options{})

	if _, err := svc.Latest(context.Background()); !errors.Is(err, domain.ErrNoReadableSensorData) {
		t.Errorf("want ErrNoReadableSensorData, got %v", err)
	}
}

func TestSensorService_LatestUpstream(t *testing.T) {
	st := newSensorStore(1)
	st.ListErr = errors.New("quota exceeded")
	svc := NewSensorService(st, Options{})

	if _, err := svc.Latest(context.Background()); !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("want ErrUpstream, got %v", err)
	}
}

func TestSensorService_History(t *testing.T) {
	tests := []struct {
		name  string
		count int
		limit int
		want  int
	}{
		{"fewer than limit", 3, 24, 3},
		{"exactly limit", 3, 3, 3},
		{"truncated", 10, 4, 4},
		{"empty", 0, 24, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSensorService(newSensorStore(tt.count), Options{})
			got, err := svc.History(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if got == nil {
				t.Fatal("History returned nil slice")
			}
			if len(got) != tt.want {
				t.Fatalf("len: got %d, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if !got[i-1].Timestamp.After(got[i].Timestamp) {
					t.Errorf("not newest first at %d: %v then %v", i, got[i-1].Timestamp, got[i].Timestamp)
				}
			}
			if tt.want > 0 && got[0].Temperature != float64(20+tt.count-1) {
				t.Errorf("first: got %v, want newest", got[0].Temperature)
			}
		})
	}
}

func TestSensorService_HistorySkipsMalformed(t *testing.T) {
	st := storagetest.New()
	st.Put("sensor_data/1.json", sensorJSON(25.5, "2024-01-01T12:00:00"))
	st.Put("sensor_data/2.json", []byte(`{"temperature": 25.5, "humidity": 60}`))
	svc := NewSensorService(st, Options{})

	got, err := svc.History(context.Background(), 24)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 1 || got[0].Temperature != 25.5 {
		t.Errorf("got %+v, want the one valid record", got)
	}
}

func TestSensorService_HistoryFillsPastSkips(t *testing.T) {
	st := newSensorStore(5)
	st.Put("sensor_data/20240101_990000.json", []byte(`broken`))
	svc := NewSensorService(st, Options{})

	got, err := svc.History(context.Background(), 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len: got %d, want 3", len(got))
	}
}

func TestSensorService_HistoryInvalidLimit(t *testing.T) {
	st := newSensorStore(3)
	svc := NewSensorService(st, Options{})

	for _, limit := range []int{0, -1, 101} {
		_, err := svc.History(context.Background(), limit)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("limit %d: want ValidationError, got %v", limit, err)
		}
	}
	if st.Calls() != 0 {
		t.Errorf("store calls: got %d, want 0", st.Calls())
	}
}

func TestSensorService_HistoryGetFailure(t *testing.T) {
	st := newSensorStore(3)
	st.GetErr["sensor_data/20240101_010000.json"] = errors.New("connection reset")
	svc := NewSensorService(st, Options{})

	if _, err := svc.History(context.Background(), 24); !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("want ErrUpstream, got %v", err)
	}
}

func TestSensorService_CancelledContext(t *testing.T) {
	svc := NewSensorService(newSensorStore(3), Options{StoreTimeout: 0})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.History(ctx, 3)
	if !errors.Is(err, domain.ErrUpstream) || !errors.Is(err, context.Canceled) {
		t.Errorf("want upstream context.Canceled, got %v", err)
	}
}
