package service

import (
	"context"
	"log"
	"time"

	"footix-backend/internal/bidding"
	"footix-backend/internal/model"
)

// AuctionStore is the authoritative store for auctions and bids. CommitBid
// must be atomic: re-validate against the live row under a per-auction
// exclusion unit, then write the new leader and append the bid.
type AuctionStore interface {
	Create(ctx context.Context, a *model.Auction) (*model.Auction, error)
	GetByID(ctx context.Context, id string) (*model.Auction, error)
	GetBids(ctx context.Context, auctionID string, limit int) ([]model.Bid, error)
	CommitBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.Auction, *model.Bid, error)
	Search(ctx context.Context, req *model.SearchAuctionsRequest) ([]model.Auction, int, error)
	GetByClub(ctx context.Context, clubID string) ([]model.Auction, error)
	UpdateSchedule(ctx context.Context, id string, req *model.UpdateScheduleRequest) (*model.Auction, error)
	Cancel(ctx context.Context, id string) (*model.Auction, error)
	ActivateDue(ctx context.Context) ([]model.Auction, error)
	CompleteDue(ctx context.Context) ([]model.Auction, error)
}

// FinanceReader is the read-only view of club finances owned by the
// finance side of the application.
type FinanceReader interface {
	GetClubFinancials(ctx context.Context, clubID, excludeAuctionID string) (*model.ClubFinancials, error)
	GetSalaryCapProjection(ctx context.Context, clubID, playerID string, amount int64) (*model.CapProjection, error)
}

const bidHistoryLimit = 20

type AuctionService struct {
	store         AuctionStore
	finance       FinanceReader
	hub           *WSHub
	commitTimeout time.Duration
}

func NewAuctionService(store AuctionStore, finance FinanceReader, hub *WSHub, commitTimeout time.Duration) *AuctionService {
	if commitTimeout <= 0 {
		commitTimeout = 5 * time.Second
	}
	return &AuctionService{store: store, finance: finance, hub: hub, commitTimeout: commitTimeout}
}

// CreateAuction lists a player. A nil seller means a system (free agent)
// listing. Without a future start time the auction opens immediately.
func (s *AuctionService) CreateAuction(ctx context.Context, sellerClubID, sellerClubName *string, req *model.CreateAuctionRequest) (*model.Auction, error) {
	if req.PlayerID == "" || req.PlayerName == "" || req.StartingBid <= 0 || req.CountdownMinutes <= 0 {
		return nil, bidding.ErrInvalidData
	}

	now := time.Now().UTC()
	a := &model.Auction{
		PlayerID:           req.PlayerID,
		PlayerName:         req.PlayerName,
		SellerClubID:       sellerClubID,
		SellerClubName:     sellerClubName,
		StartingBid:        req.StartingBid,
		CurrentBid:         req.StartingBid,
		Status:             model.AuctionActive,
		ScheduledStartTime: now,
		CountdownMinutes:   req.CountdownMinutes,
	}
	if req.ScheduledStartTime != nil && req.ScheduledStartTime.After(now) {
		a.Status = model.AuctionScheduled
		a.ScheduledStartTime = req.ScheduledStartTime.UTC()
	}

	a, err := s.store.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	if a.Status == model.AuctionActive {
		s.publish(a, model.WSAuctionStarted)
	}
	return a, nil
}

// PlaceBid runs the full pipeline: status check, ordering policy,
// affordability, then the atomic commit. Everything before CommitBid is a
// fast pre-check against a possibly stale snapshot; the commit re-validates
// under the auction row lock, so a concurrent winner makes the loser fail
// against the fresh state instead of overwriting it.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.BidResult, error) {
	if auctionID == "" || clubID == "" || amount <= 0 {
		return nil, bidding.ErrInvalidData
	}

	a, err := s.store.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if err := bidding.ValidateBid(a, clubID, amount); err != nil {
		return nil, err
	}

	fin, err := s.finance.GetClubFinancials(ctx, clubID, auctionID)
	if err != nil {
		return nil, err
	}
	if err := bidding.CheckAffordability(fin, amount); err != nil {
		return nil, err
	}

	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()
	a, bid, err := s.store.CommitBid(commitCtx, auctionID, clubID, clubName, amount)
	if err != nil {
		return nil, err
	}

	result := &model.BidResult{
		Auction:        a,
		Bid:            bid,
		MinimumNextBid: bidding.MinimumNextBid(a.CurrentBid),
	}
	if history, histErr := s.store.GetBids(ctx, auctionID, bidHistoryLimit); histErr == nil {
		result.Bids = history
	}

	// Advisory only: a failed projection is logged, never surfaced as an
	// error, and an exceeded cap never unwinds the committed bid.
	if proj, projErr := s.finance.GetSalaryCapProjection(ctx, clubID, a.PlayerID, amount); projErr != nil {
		log.Printf("[AUCTION] cap projection for club %s: %v", clubID, projErr)
	} else if w := bidding.CapWarning(proj); w != "" {
		result.Warnings = append(result.Warnings, w)
	}

	// Fan-out happens after the commit returns; the row lock is long gone.
	s.publish(a, model.WSBidAccepted)

	return result, nil
}

// GetSnapshot is the authoritative read path. Clients reconcile pushed
// events against this, not the other way round.
func (s *AuctionService) GetSnapshot(ctx context.Context, auctionID string) (*model.AuctionSnapshot, error) {
	a, err := s.store.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	bids, err := s.store.GetBids(ctx, auctionID, bidHistoryLimit)
	if err != nil {
		return nil, err
	}
	return &model.AuctionSnapshot{
		Auction:          a,
		Bids:             bids,
		MinimumNextBid:   bidding.MinimumNextBid(a.CurrentBid),
		TimeRemainingSec: int64(a.TimeRemaining(time.Now().UTC()) / time.Second),
	}, nil
}

func (s *AuctionService) Search(ctx context.Context, req *model.SearchAuctionsRequest) ([]model.Auction, int, error) {
	return s.store.Search(ctx, req)
}

func (s *AuctionService) MyAuctions(ctx context.Context, clubID string) ([]model.Auction, error) {
	return s.store.GetByClub(ctx, clubID)
}

// UpdateSchedule edits starting bid and timing. Only a still-scheduled
// auction is editable; once active the schedule is frozen.
func (s *AuctionService) UpdateSchedule(ctx context.Context, auctionID string, req *model.UpdateScheduleRequest) (*model.Auction, error) {
	if req.StartingBid <= 0 || req.CountdownMinutes <= 0 || req.ScheduledStartTime.IsZero() {
		return nil, bidding.ErrInvalidData
	}
	return s.store.UpdateSchedule(ctx, auctionID, req)
}

// Cancel is the explicit administrative termination; the scheduler never
// cancels.
func (s *AuctionService) Cancel(ctx context.Context, auctionID string) (*model.Auction, error) {
	a, err := s.store.Cancel(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	s.publish(a, model.WSAuctionCancelled)
	return a, nil
}

func (s *AuctionService) publish(a *model.Auction, eventType string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToAuction(a.ID, model.NewWSEvent(eventType, a))
}
