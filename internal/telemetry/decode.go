package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/selfhydro/selfhydro-api/internal/domain"
)

var requiredFields = []string{"temperature", "humidity", "pressure", "timestamp"}

// DecodeSensorReading decodes one sensor_data/ object. All four fields are
// required; numbers may also arrive as numeric strings. The timestamp accepts
// any layout dateparse understands, zoneless layouts read as local time.
func DecodeSensorReading(body []byte) (domain.SensorReading, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.SensorReading{}, skip(ReasonInvalidJSON, "decode: %w", err)
	}
	if raw == nil {
		return domain.SensorReading{}, skip(ReasonInvalidJSON, "document is not an object")
	}

	for _, field := range requiredFields {
		v, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return domain.SensorReading{}, skip(ReasonMissingField, "missing %q", field)
		}
	}

	var (
		reading domain.SensorReading
		err     error
	)
	if reading.Temperature, err = number(raw, "temperature"); err != nil {
		return domain.SensorReading{}, err
	}
	if reading.Humidity, err = number(raw, "humidity"); err != nil {
		return domain.SensorReading{}, err
	}
	if reading.Pressure, err = number(raw, "pressure"); err != nil {
		return domain.SensorReading{}, err
	}

	var stamp string
	if err := json.Unmarshal(raw["timestamp"], &stamp); err != nil {
		return domain.SensorReading{}, skip(ReasonInvalidTimestamp, "timestamp is not a string: %w", err)
	}
	reading.Timestamp, err = dateparse.ParseLocal(strings.TrimSpace(stamp))
	if err != nil {
		return domain.SensorReading{}, skip(ReasonInvalidTimestamp, "parse %q: %w", stamp, err)
	}

	return reading, nil
}

func number(raw map[string]json.RawMessage, field string) (float64, error) {
	var n json.Number
	if err := json.Unmarshal(raw[field], &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return 0, skip(ReasonInvalidValue, "%s: %w", field, err)
		}
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw[field], &s); err != nil {
		return 0, skip(ReasonInvalidValue, "%s is neither a number nor a string", field)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, skip(ReasonInvalidValue, "%s: %w", field, fmt.Errorf("parse %q: %w", s, err))
	}
	return f, nil
}
