package model

import "time"

// EventHistory is an archived portal log entry. The account/raw-date/message
// triple identifies an event across polls because the portal has no event IDs.
type EventHistory struct {
	ID         int64      `gorm:"autoIncrement;primaryKey"`
	AccountID  string     `gorm:"size:64;not null;uniqueIndex:idx_event_identity"`
	Kind       string     `gorm:"size:16;not null"`
	OccurredAt *time.Time `gorm:"index"`
	RawDate    string     `gorm:"size:64;not null;uniqueIndex:idx_event_identity"`
	Message    string     `gorm:"size:512;not null;uniqueIndex:idx_event_identity"`
	CreatedAt  time.Time  `gorm:"not null"`
}
