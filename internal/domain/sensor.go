package domain

import "time"

// SensorReading is one telemetry sample decoded from an object under sensor_data/.
type SensorReading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Timestamp   time.Time `json:"timestamp"`
}
