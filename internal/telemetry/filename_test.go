package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestParseCaptureTime(t *testing.T) {
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	got, err := ParseCaptureTime("images/capture_20240101_120000.jpg")
	if err != nil {
		t.Fatalf("ParseCaptureTime: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// bare names parse too
	if _, err := ParseCaptureTime("capture_20250601_084259.jpg"); err != nil {
		t.Errorf("bare name: %v", err)
	}
}

func TestParseCaptureTime_Rejects(t *testing.T) {
	names := []string{
		"images/test.jpg",
		"images/capture_20240101_120000.png",
		"images/capture_2024011_120000.jpg",
		"images/capture_20240101_12000.jpg",
		"images/capture_20240101-120000.jpg",
		"images/capture_20240230_120000.jpg",
		"images/capture_20241301_120000.jpg",
		"images/capture_20240101_250000.jpg",
		"images/capture_abcdefgh_120000.jpg",
		"images/",
	}
	for _, name := range names {
		_, err := ParseCaptureTime(name)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		var se *SkipError
		if !errors.As(err, &se) || se.Reason != ReasonInvalidName {
			t.Errorf("%s: want SkipError(%s), got %v", name, ReasonInvalidName, err)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"images/capture_1.jpg": "capture_1.jpg",
		"a/b/c.json":           "c.json",
		"plain.jpg":            "plain.jpg",
		"images/":              "",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
