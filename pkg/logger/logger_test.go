package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level: got %v, want debug", zerolog.GlobalLevel())
	}

	SetLevel("loud")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level: got %v, want info fallback", zerolog.GlobalLevel())
	}
}
