package telemetry

import (
	"regexp"
	"strings"
	"time"
)

// ImageSuffix is the extension every capture object carries.
const ImageSuffix = ".jpg"

const (
	capturePrefix = "capture_"
	captureLayout = "20060102_150405"
)

var captureStamp = regexp.MustCompile(`^[0-9]{8}_[0-9]{6}$`)

// BaseName returns the text after the last "/" of an object key.
func BaseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// ParseCaptureTime extracts the capture time from an object named
// images/capture_YYYYMMDD_HHMMSS.jpg. The stamp carries no zone and is read
// as local time.
func ParseCaptureTime(key string) (time.Time, error) {
	name := BaseName(key)
	if !strings.HasSuffix(name, ImageSuffix) {
		return time.Time{}, skip(ReasonInvalidName, "%q does not end in %s", name, ImageSuffix)
	}

	i := strings.Index(name, capturePrefix)
	if i < 0 {
		return time.Time{}, skip(ReasonInvalidName, "%q has no %s marker", name, capturePrefix)
	}

	stamp := strings.TrimSuffix(name[i+len(capturePrefix):], ImageSuffix)
	if !captureStamp.MatchString(stamp) {
		return time.Time{}, skip(ReasonInvalidName, "%q is not a YYYYMMDD_HHMMSS stamp", stamp)
	}

	ts, err := time.ParseInLocation(captureLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, skip(ReasonInvalidName, "parse %q: %w", stamp, err)
	}
	return ts, nil
}
