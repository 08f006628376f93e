package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeSensorReading(t *testing.T) {
	body := []byte(`{"temperature": 25.5, "humidity": 60.0, "pressure": 1013.25, "timestamp": "2024-01-01T12:00:00"}`)

	r, err := DecodeSensorReading(body)
	if err != nil {
		t.Fatalf("DecodeSensorReading: %v", err)
	}
	if r.Temperature != 25.5 || r.Humidity != 60.0 || r.Pressure != 1013.25 {
		t.Errorf("values: got %+v", r)
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	if !r.Timestamp.Equal(want) {
		t.Errorf("timestamp: got %v, want %v", r.Timestamp, want)
	}
}

func TestDecodeSensorReading_LenientInputs(t *testing.T) {
	bodies := []string{
		`{"temperature": "21.4", "humidity": 55, "pressure": 1001, "timestamp": "2024-06-01 08:42:59"}`,
		`{"temperature": 21.4, "humidity": 55, "pressure": 1001, "timestamp": "2024-06-01T08:42:59Z"}`,
		`{"temperature": 21.4, "humidity": 55, "pressure": 1001, "timestamp": "2024-06-01T08:42:59.123456+02:00"}`,
		`{"temperature": 21.4, "humidity": 55, "pressure": 1001, "timestamp": "06/01/2024 08:42"}`,
		`{"temperature": 21.4, "humidity": 55, "pressure": 1001, "timestamp": "2024-06-01T08:42:59", "extra": true}`,
	}
	for _, b := range bodies {
		if _, err := DecodeSensorReading([]byte(b)); err != nil {
			t.Errorf("%s: %v", b, err)
		}
	}
}

func TestDecodeSensorReading_Skips(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"syntax", `{"temperature": 25.5,`, ReasonInvalidJSON},
		{"array", `[1,2,3]`, ReasonInvalidJSON},
		{"null document", `null`, ReasonInvalidJSON},
		{"missing pressure", `{"temperature": 25.5, "humidity": 60, "timestamp": "2024-01-01T12:00:00"}`, ReasonMissingField},
		{"null humidity", `{"temperature": 25.5, "humidity": null, "pressure": 1, "timestamp": "2024-01-01T12:00:00"}`, ReasonMissingField},
		{"missing timestamp", `{"temperature": 25.5, "humidity": 60, "pressure": 1}`, ReasonMissingField},
		{"bool value", `{"temperature": true, "humidity": 60, "pressure": 1, "timestamp": "2024-01-01T12:00:00"}`, ReasonInvalidValue},
		{"word value", `{"temperature": "warm", "humidity": 60, "pressure": 1, "timestamp": "2024-01-01T12:00:00"}`, ReasonInvalidValue},
		{"bad timestamp", `{"temperature": 25.5, "humidity": 60, "pressure": 1, "timestamp": "yesterday-ish"}`, ReasonInvalidTimestamp},
		{"numeric timestamp", `{"temperature": 25.5, "humidity": 60, "pressure": 1, "timestamp": 12}`, ReasonInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSensorReading([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			var se *SkipError
			if !errors.As(err, &se) {
				t.Fatalf("want *SkipError, got %T", err)
			}
			if se.Reason != tt.reason {
				t.Errorf("reason: got %s, want %s", se.Reason, tt.reason)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	outcomes := []Outcome[int]{
		{Key: "a", Value: 1},
		{Key: "b", Err: &SkipError{Reason: ReasonInvalidJSON, Err: errors.New("boom")}},
		{Key: "c", Value: 3},
	}

	var skipped []string
	got := Collect(outcomes, func(o Outcome[int]) {
		skipped = append(skipped, o.Key+":"+ReasonOf(o.Err))
	})

	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("values: got %v, want [1 3]", got)
	}
	if len(skipped) != 1 || skipped[0] != "b:invalid_json" {
		t.Errorf("skipped: got %v", skipped)
	}
	if ReasonOf(errors.New("plain")) != "unknown" {
		t.Error("ReasonOf on plain error should be unknown")
	}
}
