package model

import "time"

// StatusSnapshot is the full typed result of one status poll.
type StatusSnapshot struct {
	Alarm      AlarmStatus `json:"alarm"`
	ObservedAt time.Time   `json:"observed_at"`
}

// TemperatureSnapshot is the full typed result of one temperature poll,
// keyed by sensor slug.
type TemperatureSnapshot struct {
	Readings   map[string]TemperatureReading `json:"readings"`
	ObservedAt time.Time                     `json:"observed_at"`
}

// EventSnapshot is the full typed result of one event-log poll, preserving
// the server's ordering.
type EventSnapshot struct {
	Events     []EventRecord `json:"events"`
	ObservedAt time.Time     `json:"observed_at"`
}
