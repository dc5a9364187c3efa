package model

import "time"

// Auction statuses. Transitions: scheduled → active → completed,
// with cancelled reachable from scheduled or active via admin action only.
const (
	AuctionScheduled = "scheduled"
	AuctionActive    = "active"
	AuctionCompleted = "completed"
	AuctionCancelled = "cancelled"
)

type Auction struct {
	ID                 string     `json:"id"`
	PlayerID           string     `json:"player_id"`
	PlayerName         string     `json:"player_name"`
	SellerClubID       *string    `json:"seller_club_id,omitempty"`
	SellerClubName     *string    `json:"seller_club_name,omitempty"`
	StartingBid        int64      `json:"starting_bid"`
	CurrentBid         int64      `json:"current_bid"`
	CurrentBidderID    *string    `json:"current_bidder_id,omitempty"`
	CurrentBidderName  *string    `json:"current_bidder_name,omitempty"`
	Status             string     `json:"status"`
	ScheduledStartTime time.Time  `json:"scheduled_start_time"`
	CountdownMinutes   int        `json:"countdown_minutes"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// EndTime is when bidding closes: start plus the countdown window.
func (a *Auction) EndTime() time.Time {
	return a.ScheduledStartTime.Add(time.Duration(a.CountdownMinutes) * time.Minute)
}

func (a *Auction) IsStarted(now time.Time) bool {
	return !now.Before(a.ScheduledStartTime)
}

func (a *Auction) IsFinished(now time.Time) bool {
	return !now.Before(a.EndTime())
}

// TimeRemaining is a display value only; the stored status decides whether
// bidding is permitted.
func (a *Auction) TimeRemaining(now time.Time) time.Duration {
	remaining := a.EndTime().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	ClubID    string    `json:"club_id"`
	ClubName  string    `json:"club_name"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateAuctionRequest struct {
	PlayerID           string     `json:"player_id"`
	PlayerName         string     `json:"player_name"`
	StartingBid        int64      `json:"starting_bid"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty"`
	CountdownMinutes   int        `json:"countdown_minutes"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

type UpdateScheduleRequest struct {
	StartingBid        int64     `json:"starting_bid"`
	ScheduledStartTime time.Time `json:"scheduled_start_time"`
	CountdownMinutes   int       `json:"countdown_minutes"`
}

type SearchAuctionsRequest struct {
	Status       string `json:"status"`
	SearchText   string `json:"search_text"`
	SellerClubID string `json:"seller_club_id"`
	SortBy       string `json:"sort_by"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

// AuctionSnapshot is the read-path view: the auction row plus its bid
// history and derived display values.
type AuctionSnapshot struct {
	Auction          *Auction `json:"auction"`
	Bids             []Bid    `json:"bids"`
	MinimumNextBid   int64    `json:"minimum_next_bid"`
	TimeRemainingSec int64    `json:"time_remaining_sec"`
}

// BidResult is returned from a successful bid commit. Warnings are
// advisory only (e.g. salary-cap exposure) and never block the bid.
type BidResult struct {
	Auction        *Auction `json:"auction"`
	Bid            *Bid     `json:"bid"`
	Bids           []Bid    `json:"bids"`
	MinimumNextBid int64    `json:"minimum_next_bid"`
	Warnings       []string `json:"warnings,omitempty"`
}
