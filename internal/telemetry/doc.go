// Package telemetry turns stored objects into domain values.
//
// Object names under images/ carry the capture time
// (images/capture_YYYYMMDD_HHMMSS.jpg) and objects under sensor_data/ are
// JSON documents with temperature, humidity, pressure and timestamp fields.
// Neither parser is fatal for a batch: callers receive a SkipError and drop
// the object.
package telemetry
