package service

import (
	"context"
	"testing"
	"time"

	"footix-backend/internal/model"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestScheduler_SweepActivatesDueAuctions(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, nil, nil, time.Second)

	due := store.addAuction(&model.Auction{
		PlayerID:           "p1",
		PlayerName:         "Player p1",
		StartingBid:        1_000_000,
		CurrentBid:         1_000_000,
		Status:             model.AuctionScheduled,
		ScheduledStartTime: time.Now().UTC().Add(-time.Minute),
		CountdownMinutes:   60,
	})
	notDue := store.addAuction(&model.Auction{
		PlayerID:           "p2",
		PlayerName:         "Player p2",
		StartingBid:        1_000_000,
		CurrentBid:         1_000_000,
		Status:             model.AuctionScheduled,
		ScheduledStartTime: time.Now().UTC().Add(time.Hour),
		CountdownMinutes:   60,
	})

	s.Sweep(context.Background())

	a, err := store.GetByID(context.Background(), due.ID)
	assert.NoError(t, err)
	check.Equal(t, model.AuctionActive, a.Status)

	b, err := store.GetByID(context.Background(), notDue.ID)
	assert.NoError(t, err)
	check.Equal(t, model.AuctionScheduled, b.Status)
}

func TestScheduler_SweepCompletionIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, nil, nil, time.Second)

	expired := store.addAuction(&model.Auction{
		PlayerID:           "p1",
		PlayerName:         "Player p1",
		StartingBid:        1_000_000,
		CurrentBid:         1_000_000,
		Status:             model.AuctionActive,
		ScheduledStartTime: time.Now().UTC().Add(-2 * time.Hour),
		CountdownMinutes:   60,
	})

	s.Sweep(context.Background())
	s.Sweep(context.Background())

	a, err := store.GetByID(context.Background(), expired.ID)
	assert.NoError(t, err)
	check.Equal(t, model.AuctionCompleted, a.Status)

	// The transition fired exactly once; the second sweep was a no-op.
	check.Equal(t, 1, store.completedCount)
	check.Equal(t, 0, store.activatedCount)
}

func TestScheduler_NeverTouchesTerminalAuctions(t *testing.T) {
	store := newMemoryStore()
	s := NewScheduler(store, nil, nil, time.Second)

	done := time.Now().UTC().Add(-time.Hour)
	for _, status := range []string{model.AuctionCompleted, model.AuctionCancelled} {
		store.addAuction(&model.Auction{
			PlayerID:           "p-" + status,
			PlayerName:         "Player",
			StartingBid:        1_000_000,
			CurrentBid:         1_000_000,
			Status:             status,
			ScheduledStartTime: time.Now().UTC().Add(-2 * time.Hour),
			CountdownMinutes:   60,
			CompletedAt:        &done,
		})
	}

	s.Sweep(context.Background())

	check.Equal(t, 0, store.activatedCount)
	check.Equal(t, 0, store.completedCount)
}
