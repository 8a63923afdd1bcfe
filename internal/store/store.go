package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alarm-status-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ArchiveEvents(ctx context.Context, accountID string, events []model.EventRecord) (int64, error)
	EventHistory(ctx context.Context, accountID string, since time.Time) ([]model.EventHistory, error)
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	Subscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ArchiveEvents persists newly observed portal events. The portal serves a
// rolling window with no event IDs, so rows are deduplicated on the
// account/raw-date/message triple and re-observed events are dropped
// silently. Returns the number of newly inserted rows.
func (s *gormStore) ArchiveEvents(ctx context.Context, accountID string, events []model.EventRecord) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	rows := make([]model.EventHistory, 0, len(events))
	for _, e := range events {
		rows = append(rows, model.EventHistory{
			AccountID:  accountID,
			Kind:       string(e.Kind),
			OccurredAt: e.Timestamp,
			RawDate:    e.RawDate,
			Message:    e.Message,
		})
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"}, {Name: "raw_date"}, {Name: "message"},
		},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to archive events for account %s: %w", accountID, res.Error)
	}
	return res.RowsAffected, nil
}

// EventHistory returns the archived events of an account recorded since the
// given time, newest first.
func (s *gormStore) EventHistory(ctx context.Context, accountID string, since time.Time) ([]model.EventHistory, error) {
	var rows []model.EventHistory
	q := s.db.WithContext(ctx).Where("account_id = ?", accountID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch event history for account %s: %w", accountID, err)
	}
	return rows, nil
}

// SaveSubscription creates or replaces a push subscription.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
}

// DeleteSubscription removes a push subscription by endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// Subscriptions returns all registered push subscriptions.
func (s *gormStore) Subscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// DB exposes the underlying connection for handlers that need it.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
