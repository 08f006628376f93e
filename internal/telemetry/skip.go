package telemetry

import (
	"errors"
	"fmt"
)

// Skip reasons, also used as metric label values.
const (
	ReasonInvalidJSON      = "invalid_json"
	ReasonMissingField     = "missing_field"
	ReasonInvalidValue     = "invalid_value"
	ReasonInvalidTimestamp = "invalid_timestamp"
	ReasonInvalidName      = "invalid_name"
	ReasonSignFailed       = "sign_failed"
	ReasonVanished         = "vanished"
)

// SkipError explains why one object was left out of a result set.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

func skip(reason string, format string, args ...any) *SkipError {
	return &SkipError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

// ReasonOf returns the skip reason carried by err, or "unknown".
func ReasonOf(err error) string {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason
	}
	return "unknown"
}

// Outcome is the per-object result of a decode pass. A non-nil Err means the
// object is skipped.
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

// Collect keeps the successful values in order and reports each skipped
// outcome to onSkip.
func Collect[T any](outcomes []Outcome[T], onSkip func(Outcome[T])) []T {
	values := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			if onSkip != nil {
				onSkip(o)
			}
			continue
		}
		values = append(values, o.Value)
	}
	return values
}
