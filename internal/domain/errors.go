package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSensorData is returned when the sensor prefix holds no objects.
	ErrNoSensorData = errors.New("no sensor data found")
	// ErrImageNotFound is returned when a requested capture does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrUpstream marks failures of the object store itself.
	ErrUpstream = errors.New("object store failure")
)

// ValidationError reports a request parameter outside its declared bounds.
type ValidationError struct {
	Param  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Detail)
}

// CheckRange returns a ValidationError when v is outside [min, max].
func CheckRange(param string, v, min, max int) error {
	if v < min || v > max {
		return &ValidationError{
			Param:  param,
			Detail: fmt.Sprintf("%s must be between %d and %d", param, min, max),
		}
	}
	return nil
}

// Upstream wraps err so callers can match it with errors.Is(err, ErrUpstream).
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

var (
	// ErrNoReadableSensorData is returned when sensor objects exist but none decode.
	ErrNoReadableSensorData = errors.New("no readable sensor data")
	// ErrSigning is returned when a requested URL set could not be fully signed.
	ErrSigning = errors.New("signed url generation failed")
)
