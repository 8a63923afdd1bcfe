package poller

import (
	"context"
	"log"
	"time"

	"alarm-status-backend/config"
	"alarm-status-backend/internal/notification"
	"alarm-status-backend/internal/session"
	"alarm-status-backend/internal/snapshot"
	"alarm-status-backend/internal/store"
)

// Service drives the fixed-interval refresh of every account's resources.
// Each resource has its own independent schedule because the portal's
// endpoints have wildly different costs (the temperature page can take
// minutes server-side). A failed poll keeps the previous snapshot; the API
// surfaces staleness, never an error.
type Service struct {
	cfg       *config.Config
	sessions  *session.Manager
	snapshots *snapshot.Registry
	store     store.Store
	pool      *notification.WorkerPool
}

// NewService creates a poller. store and pool may be nil, which disables
// event archival and push notifications respectively.
func NewService(cfg *config.Config, sessions *session.Manager, snapshots *snapshot.Registry, st store.Store, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:       cfg,
		sessions:  sessions,
		snapshots: snapshots,
		store:     st,
		pool:      pool,
	}
}

// Run starts one refresh loop per account and resource and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Poller.Enabled {
		log.Println("Poller is disabled. Not starting.")
		return
	}
	log.Println("Starting poller service...")

	if s.pool != nil {
		s.pool.Start(ctx)
	}

	for _, accountID := range s.sessions.AccountIDs() {
		client, ok := s.sessions.Get(accountID)
		if !ok {
			continue
		}
		id, c := accountID, client
		go s.loop(ctx, s.cfg.Poller.StatusInterval, func(ctx context.Context) { s.RefreshStatus(ctx, id, c) })
		go s.loop(ctx, s.cfg.Poller.TemperatureInterval, func(ctx context.Context) { s.RefreshTemperatures(ctx, id, c) })
		go s.loop(ctx, s.cfg.Poller.EventInterval, func(ctx context.Context) { s.RefreshEvents(ctx, id, c) })
	}

	<-ctx.Done()
	log.Println("Poller service shutting down.")
}

// loop runs refresh immediately, then on every interval tick.
func (s *Service) loop(ctx context.Context, interval time.Duration, refresh func(context.Context)) {
	refresh(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			refresh(ctx)
			timer.Reset(interval)
		}
	}
}

// RefreshStatus polls the alarm state once and dispatches a notification
// when the armed state flipped since the previous snapshot.
func (s *Service) RefreshStatus(ctx context.Context, accountID string, client session.Client) {
	snap, err := client.GetStatus(ctx)
	if err != nil {
		log.Printf("Status poll for account %s degraded to no data: %v", accountID, err)
		return
	}

	prev, had := s.snapshots.Status(accountID)
	s.snapshots.SetStatus(accountID, *snap)

	if had && prev.Alarm.Armed != snap.Alarm.Armed && s.pool != nil {
		s.pool.Dispatch(notification.StateChange{
			AccountID:  accountID,
			Armed:      snap.Alarm.Armed,
			StatusText: snap.Alarm.StatusText,
		})
	}
}

// RefreshTemperatures polls the room temperatures once.
func (s *Service) RefreshTemperatures(ctx context.Context, accountID string, client session.Client) {
	snap, err := client.GetTemperatures(ctx)
	if err != nil {
		log.Printf("Temperature poll for account %s degraded to no data: %v", accountID, err)
		return
	}
	s.snapshots.SetTemperatures(accountID, *snap)
}

// RefreshEvents polls the event log once and archives newly observed rows.
func (s *Service) RefreshEvents(ctx context.Context, accountID string, client session.Client) {
	snap, err := client.GetEvents(ctx, s.cfg.Poller.EventWindowDays)
	if err != nil {
		log.Printf("Event poll for account %s degraded to no data: %v", accountID, err)
		return
	}
	s.snapshots.SetEvents(accountID, *snap)

	if s.store != nil && len(snap.Events) > 0 {
		inserted, err := s.store.ArchiveEvents(ctx, accountID, snap.Events)
		if err != nil {
			log.Printf("Error archiving events for account %s: %v", accountID, err)
		} else if inserted > 0 {
			log.Printf("Archived %d new events for account %s", inserted, accountID)
		}
	}
}

// TriggerStatusRefresh re-polls the status of one account in the background.
// Used after an arm/disarm command, which does not itself return new state.
func (s *Service) TriggerStatusRefresh(accountID string) {
	client, ok := s.sessions.Get(accountID)
	if !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Portal.Timeout+time.Second)
		defer cancel()
		s.RefreshStatus(ctx, accountID, client)
	}()
}
