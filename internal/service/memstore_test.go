package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"footix-backend/internal/bidding"
	"footix-backend/internal/model"
)

// memoryStore implements AuctionStore and FinanceReader for tests. Its
// CommitBid mirrors the production commit: all re-validation happens under
// the same lock that guards the write, so the concurrency behavior of the
// pipeline above it is exercised faithfully.
type memoryStore struct {
	mu       sync.Mutex
	auctions map[string]*model.Auction
	bids     map[string][]model.Bid
	balances map[string]int64
	budgets  map[string]int64

	capExceeds bool
	nextID     int

	activatedCount int
	completedCount int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		auctions: make(map[string]*model.Auction),
		bids:     make(map[string][]model.Bid),
		balances: make(map[string]int64),
		budgets:  make(map[string]int64),
	}
}

func copyAuction(a *model.Auction) *model.Auction {
	cp := *a
	return &cp
}

func (s *memoryStore) addAuction(a *model.Auction) *model.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(a)
}

func (s *memoryStore) addLocked(a *model.Auction) *model.Auction {
	s.nextID++
	a.ID = fmt.Sprintf("auction-%d", s.nextID)
	a.CreatedAt = time.Now().UTC()
	s.auctions[a.ID] = a
	return copyAuction(a)
}

func (s *memoryStore) Create(_ context.Context, a *model.Auction) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.auctions {
		if existing.PlayerID == a.PlayerID &&
			(existing.Status == model.AuctionScheduled || existing.Status == model.AuctionActive) {
			return nil, bidding.ErrPlayerAlreadyListed
		}
	}
	return s.addLocked(a), nil
}

func (s *memoryStore) GetByID(_ context.Context, id string) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, bidding.ErrAuctionNotFound
	}
	return copyAuction(a), nil
}

func (s *memoryStore) GetBids(_ context.Context, auctionID string, limit int) ([]model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bids := s.bids[auctionID]
	out := make([]model.Bid, 0, len(bids))
	// Highest first, matching the repository's ordering.
	for i := len(bids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, bids[i])
	}
	return out, nil
}

func (s *memoryStore) exposureLocked(clubID, excludeAuctionID string) int64 {
	var sum int64
	for id, a := range s.auctions {
		if id == excludeAuctionID || a.Status != model.AuctionActive {
			continue
		}
		if a.CurrentBidderID != nil && *a.CurrentBidderID == clubID {
			sum += a.CurrentBid
		}
	}
	return sum
}

func (s *memoryStore) CommitBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.Auction, *model.Bid, error) {
	if ctx.Err() != nil {
		return nil, nil, bidding.ErrTransaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return nil, nil, bidding.ErrAuctionNotFound
	}
	if err := bidding.ValidateBid(a, clubID, amount); err != nil {
		return nil, nil, err
	}

	fin := &model.ClubFinancials{
		Balance:            s.balances[clubID],
		PendingBidExposure: s.exposureLocked(clubID, auctionID),
	}
	if err := bidding.CheckAffordability(fin, amount); err != nil {
		return nil, nil, err
	}

	a.CurrentBid = amount
	bidder, name := clubID, clubName
	a.CurrentBidderID = &bidder
	a.CurrentBidderName = &name

	s.nextID++
	b := model.Bid{
		ID:        fmt.Sprintf("bid-%d", s.nextID),
		AuctionID: auctionID,
		ClubID:    clubID,
		ClubName:  clubName,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	s.bids[auctionID] = append(s.bids[auctionID], b)

	return copyAuction(a), &b, nil
}

func (s *memoryStore) Search(_ context.Context, req *model.SearchAuctionsRequest) ([]model.Auction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Auction
	for _, a := range s.auctions {
		if req.Status == "" || req.Status == "all" || a.Status == req.Status {
			out = append(out, *copyAuction(a))
		}
	}
	return out, len(out), nil
}

func (s *memoryStore) GetByClub(_ context.Context, clubID string) ([]model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Auction
	for _, a := range s.auctions {
		if (a.SellerClubID != nil && *a.SellerClubID == clubID) ||
			(a.CurrentBidderID != nil && *a.CurrentBidderID == clubID) {
			out = append(out, *copyAuction(a))
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateSchedule(_ context.Context, id string, req *model.UpdateScheduleRequest) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, bidding.ErrAuctionNotFound
	}
	if a.Status != model.AuctionScheduled {
		return nil, bidding.ErrScheduleLocked
	}
	a.StartingBid = req.StartingBid
	a.CurrentBid = req.StartingBid
	a.ScheduledStartTime = req.ScheduledStartTime
	a.CountdownMinutes = req.CountdownMinutes
	return copyAuction(a), nil
}

func (s *memoryStore) Cancel(_ context.Context, id string) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, bidding.ErrAuctionNotFound
	}
	if a.Status != model.AuctionScheduled && a.Status != model.AuctionActive {
		return nil, bidding.ErrAuctionNotActive
	}
	a.Status = model.AuctionCancelled
	now := time.Now().UTC()
	a.CompletedAt = &now
	return copyAuction(a), nil
}

func (s *memoryStore) ActivateDue(_ context.Context) ([]model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var out []model.Auction
	for _, a := range s.auctions {
		if a.Status == model.AuctionScheduled && a.IsStarted(now) {
			a.Status = model.AuctionActive
			s.activatedCount++
			out = append(out, *copyAuction(a))
		}
	}
	return out, nil
}

func (s *memoryStore) CompleteDue(_ context.Context) ([]model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var out []model.Auction
	for _, a := range s.auctions {
		if a.Status == model.AuctionActive && a.IsFinished(now) {
			a.Status = model.AuctionCompleted
			completedAt := now
			a.CompletedAt = &completedAt
			s.completedCount++
			out = append(out, *copyAuction(a))
		}
	}
	return out, nil
}

// rowLockStore layers row-level locking over memoryStore the way the SQL
// store does: one lock per auction row, one per club row, taken in that
// order. Unlike memoryStore's single mutex, same-club commits on different
// auctions only serialize on the club lock, so the exposure re-read under
// that lock is what keeps the club's balance from being committed twice.
type rowLockStore struct {
	*memoryStore
	locksMu      sync.Mutex
	auctionLocks map[string]*sync.Mutex
	clubLocks    map[string]*sync.Mutex
}

func newRowLockStore() *rowLockStore {
	return &rowLockStore{
		memoryStore:  newMemoryStore(),
		auctionLocks: make(map[string]*sync.Mutex),
		clubLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *rowLockStore) lockFor(m map[string]*sync.Mutex, key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if l, ok := m[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	m[key] = l
	return l
}

func (s *rowLockStore) CommitBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.Auction, *model.Bid, error) {
	if ctx.Err() != nil {
		return nil, nil, bidding.ErrTransaction
	}

	rowLock := s.lockFor(s.auctionLocks, auctionID)
	rowLock.Lock()
	defer rowLock.Unlock()

	s.mu.Lock()
	a, ok := s.auctions[auctionID]
	if !ok {
		s.mu.Unlock()
		return nil, nil, bidding.ErrAuctionNotFound
	}
	if err := bidding.ValidateBid(a, clubID, amount); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	s.mu.Unlock()

	// Club lock next, mirroring the club-row FOR UPDATE: the exposure read
	// below sees every commit that finished before the lock was granted.
	clubLock := s.lockFor(s.clubLocks, clubID)
	clubLock.Lock()
	defer clubLock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	fin := &model.ClubFinancials{
		Balance:            s.balances[clubID],
		PendingBidExposure: s.exposureLocked(clubID, auctionID),
	}
	if err := bidding.CheckAffordability(fin, amount); err != nil {
		return nil, nil, err
	}

	a.CurrentBid = amount
	bidder, name := clubID, clubName
	a.CurrentBidderID = &bidder
	a.CurrentBidderName = &name

	s.nextID++
	b := model.Bid{
		ID:        fmt.Sprintf("bid-%d", s.nextID),
		AuctionID: auctionID,
		ClubID:    clubID,
		ClubName:  clubName,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	s.bids[auctionID] = append(s.bids[auctionID], b)

	return copyAuction(a), &b, nil
}

// stalledStore wedges every commit until its context bound expires,
// standing in for a transaction stuck behind a lock.
type stalledStore struct {
	*memoryStore
}

func (s *stalledStore) CommitBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.Auction, *model.Bid, error) {
	<-ctx.Done()
	return s.memoryStore.CommitBid(ctx, auctionID, clubID, clubName, amount)
}

func (s *memoryStore) GetClubFinancials(_ context.Context, clubID, excludeAuctionID string) (*model.ClubFinancials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[clubID]; !ok {
		return nil, bidding.ErrInvalidData
	}
	return &model.ClubFinancials{
		ClubID:             clubID,
		Balance:            s.balances[clubID],
		SeasonBudgetBase:   s.budgets[clubID],
		PendingBidExposure: s.exposureLocked(clubID, excludeAuctionID),
	}, nil
}

func (s *memoryStore) GetSalaryCapProjection(_ context.Context, clubID, _ string, amount int64) (*model.CapProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	capLimit := s.budgets[clubID] * 70 / 100
	p := &model.CapProjection{CapLimit: capLimit, ProjectedTotal: amount * 20 / 100}
	p.Exceeds = s.capExceeds || p.ProjectedTotal > p.CapLimit
	return p, nil
}
