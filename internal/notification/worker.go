package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"alarm-status-backend/internal/model"
)

// StateChange describes an armed/disarmed transition observed by the poller.
type StateChange struct {
	AccountID  string
	Armed      bool
	StatusText string
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers that push alarm state transitions to
// subscribed browsers.
type WorkerPool struct {
	size    int
	jobs    chan StateChange
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan StateChange, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case change := <-wp.jobs:
			log.Printf("Notification worker %d processing change for account %s", id, change.AccountID)
			wp.notifyChange(ctx, change)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a state change to the worker pool.
func (wp *WorkerPool) Dispatch(change StateChange) {
	wp.jobs <- change
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan StateChange {
	return wp.jobs
}

// notifyChange fetches all subscriptions and pushes the transition to each.
func (wp *WorkerPool) notifyChange(ctx context.Context, change StateChange) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for account %s: %v", change.AccountID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	state := "désactivée"
	if change.Armed {
		state = "activée"
	}
	message := fmt.Sprintf("Alarme %s (%s)", state, change.AccountID)
	if change.StatusText != "" {
		message = fmt.Sprintf("%s (%s)", change.StatusText, change.AccountID)
	}

	log.Printf("Sending %d notifications for account %s", len(subscriptions), change.AccountID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
