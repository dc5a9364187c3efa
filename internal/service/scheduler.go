package service

import (
	"context"
	"log"
	"time"

	"footix-backend/internal/model"
)

// Scheduler drives the time-based status transitions: scheduled auctions
// open at their start time, active ones close when the countdown runs out.
// The stored status is the only source of truth for whether bidding is
// allowed; the sweep just compares stored timestamps to now. Cancellation
// is never the scheduler's job.
type Scheduler struct {
	store    AuctionStore
	hub      *WSHub
	webhooks *WebhookService
	interval time.Duration
}

func NewScheduler(store AuctionStore, hub *WSHub, webhooks *WebhookService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Scheduler{store: store, hub: hub, webhooks: webhooks, interval: interval}
}

// Run sweeps until the context is cancelled. Meant to be started as a
// goroutine from main.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass. Both transitions are conditional updates, so
// running a sweep twice over the same auction fires its side effects once.
func (s *Scheduler) Sweep(ctx context.Context) {
	activated, err := s.store.ActivateDue(ctx)
	if err != nil {
		log.Printf("[scheduler] activate sweep failed: %v", err)
	}
	for i := range activated {
		a := &activated[i]
		log.Printf("[scheduler] auction %s opened (player %s)", a.ID, a.PlayerName)
		s.notify(a, model.WSAuctionStarted)
		if s.webhooks != nil {
			s.webhooks.AnnounceOpened(a)
		}
	}

	completed, err := s.store.CompleteDue(ctx)
	if err != nil {
		log.Printf("[scheduler] complete sweep failed: %v", err)
	}
	for i := range completed {
		a := &completed[i]
		log.Printf("[scheduler] auction %s completed (player %s, final bid %d)", a.ID, a.PlayerName, a.CurrentBid)
		s.notify(a, model.WSAuctionCompleted)
		if s.webhooks != nil {
			s.webhooks.AnnounceResult(a)
		}
	}
}

func (s *Scheduler) notify(a *model.Auction, eventType string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAuction(a.ID, model.NewWSEvent(eventType, a))
}
