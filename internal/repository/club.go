package repository

import (
	"context"
	"errors"

	"footix-backend/internal/bidding"
	"footix-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClubRepository reads club financial state. The auction engine never
// writes balances; settlement after the hammer falls is handled by the
// finance side of the application.
type ClubRepository struct {
	pool            *pgxpool.Pool
	salaryCapPct    int
	wageEstimatePct int
}

func NewClubRepository(pool *pgxpool.Pool, salaryCapPct, wageEstimatePct int) *ClubRepository {
	return &ClubRepository{pool: pool, salaryCapPct: salaryCapPct, wageEstimatePct: wageEstimatePct}
}

// GetClubFinancials returns the club's balance, budget base, and the sum of
// its leading bids on active auctions other than excludeAuctionID. Pass ""
// to include every active auction.
func (r *ClubRepository) GetClubFinancials(ctx context.Context, clubID, excludeAuctionID string) (*model.ClubFinancials, error) {
	fin := &model.ClubFinancials{}
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.balance, c.season_budget_base,
		       COALESCE((
		           SELECT SUM(a.current_bid) FROM auctions a
		           WHERE a.current_bidder_id = c.id AND a.status = 'active'
		             AND ($2::text = '' OR a.id::text <> $2::text)
		       ), 0)
		FROM clubs c WHERE c.id = $1
	`, clubID, excludeAuctionID).Scan(
		&fin.ClubID, &fin.ClubName, &fin.Balance, &fin.SeasonBudgetBase, &fin.PendingBidExposure,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bidding.ErrInvalidData
		}
		return nil, err
	}
	return fin, nil
}

// GetSalaryCapProjection estimates what the club's wage bill would look
// like after signing the player at the given amount. The cap limit is a
// fixed share of the season budget base; the candidate's wage is estimated
// as a share of the transfer amount. Advisory only, never blocks a bid.
func (r *ClubRepository) GetSalaryCapProjection(ctx context.Context, clubID, playerID string, amount int64) (*model.CapProjection, error) {
	var budgetBase, committedWages int64
	err := r.pool.QueryRow(ctx, `
		SELECT c.season_budget_base,
		       COALESCE((SELECT SUM(p.salary) FROM players p WHERE p.club_id = c.id), 0)
		FROM clubs c WHERE c.id = $1
	`, clubID).Scan(&budgetBase, &committedWages)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bidding.ErrInvalidData
		}
		return nil, err
	}

	p := &model.CapProjection{
		CapLimit:       budgetBase * int64(r.salaryCapPct) / 100,
		ProjectedTotal: committedWages + amount*int64(r.wageEstimatePct)/100,
	}
	p.Exceeds = p.ProjectedTotal > p.CapLimit
	return p, nil
}
