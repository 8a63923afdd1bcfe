package model

import "time"

// AlarmStatus is the current arm state of the alarm as read from the portal.
type AlarmStatus struct {
	StatusText string `json:"status_text"`
	Armed      bool   `json:"is_armed"`
}

// TemperatureReading is one room sensor value scraped from the temperature table.
type TemperatureReading struct {
	SensorID string  `json:"sensor_id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// EventKind classifies a portal log entry by its icon.
type EventKind string

const (
	EventArm     EventKind = "arm"
	EventDisarm  EventKind = "disarm"
	EventUnknown EventKind = "unknown"
)

// EventRecord is one row of the portal's event log, newest first as served.
// Timestamp is nil when the localized date string could not be parsed; the
// raw text is always preserved.
type EventRecord struct {
	Kind      EventKind  `json:"kind"`
	Timestamp *time.Time `json:"timestamp"`
	RawDate   string     `json:"raw_date"`
	Message   string     `json:"message"`
}
