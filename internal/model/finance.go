package model

// ClubFinancials is a read-only snapshot owned by the finance side of the
// application. PendingBidExposure sums the club's leading bids on other
// active auctions; that money is spoken for even before settlement.
type ClubFinancials struct {
	ClubID             string `json:"club_id"`
	ClubName           string `json:"club_name"`
	Balance            int64  `json:"balance"`
	SeasonBudgetBase   int64  `json:"season_budget_base"`
	PendingBidExposure int64  `json:"pending_bid_exposure"`
}

// CapProjection estimates the wage-bill impact of winning a player at a
// given amount. Advisory only.
type CapProjection struct {
	Exceeds        bool  `json:"exceeds"`
	ProjectedTotal int64 `json:"projected_total"`
	CapLimit       int64 `json:"cap_limit"`
}
