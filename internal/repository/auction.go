package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"footix-backend/internal/bidding"
	"footix-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auctionColumns = `id, player_id, player_name, seller_club_id, seller_club_name,
	       starting_bid, current_bid, current_bidder_id, current_bidder_name,
	       status, scheduled_start_time, countdown_minutes, created_at, completed_at`

type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func scanAuction(row pgx.Row) (*model.Auction, error) {
	a := &model.Auction{}
	err := row.Scan(
		&a.ID, &a.PlayerID, &a.PlayerName, &a.SellerClubID, &a.SellerClubName,
		&a.StartingBid, &a.CurrentBid, &a.CurrentBidderID, &a.CurrentBidderName,
		&a.Status, &a.ScheduledStartTime, &a.CountdownMinutes, &a.CreatedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AuctionRepository) Create(ctx context.Context, a *model.Auction) (*model.Auction, error) {
	a.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO auctions (
			id, player_id, player_name, seller_club_id, seller_club_name,
			starting_bid, current_bid, status, scheduled_start_time, countdown_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $9)
		RETURNING created_at
	`,
		a.ID, a.PlayerID, a.PlayerName, a.SellerClubID, a.SellerClubName,
		a.StartingBid, a.Status, a.ScheduledStartTime, a.CountdownMinutes,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, bidding.ErrPlayerAlreadyListed
		}
		return nil, err
	}
	a.CurrentBid = a.StartingBid
	return a, nil
}

// isAuctionID screens path parameters: a malformed id would fail the uuid
// cast in Postgres and surface as an internal error instead of a 404.
func isAuctionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*model.Auction, error) {
	if !isAuctionID(id) {
		return nil, bidding.ErrAuctionNotFound
	}
	a, err := scanAuction(r.pool.QueryRow(ctx, `
		SELECT `+auctionColumns+` FROM auctions WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bidding.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AuctionRepository) GetBids(ctx context.Context, auctionID string, limit int) ([]model.Bid, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, auction_id, club_id, club_name, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY amount DESC
		LIMIT $2
	`, auctionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.ClubID, &b.ClubName, &b.Amount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}

	if bids == nil {
		bids = []model.Bid{}
	}
	return bids, nil
}

// CommitBid is the single write path for bids. It locks the auction row,
// re-runs the ordering policy and the affordability check against the
// locked state, and only then writes the new leader and appends the bid
// record. Two concurrent bidders serialize on the row lock; the loser
// re-validates against the winner's freshly committed bid.
func (r *AuctionRepository) CommitBid(ctx context.Context, auctionID, clubID, clubName string, amount int64) (*model.Auction, *model.Bid, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, commitErr(ctx, err)
	}
	defer tx.Rollback(ctx)

	a, err := scanAuction(tx.QueryRow(ctx, `
		SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE
	`, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, bidding.ErrAuctionNotFound
		}
		return nil, nil, commitErr(ctx, err)
	}

	if err := bidding.ValidateBid(a, clubID, amount); err != nil {
		return nil, nil, err
	}

	// Two commits by the same club on different auctions share no auction
	// row, so the club row is what serializes their affordability checks.
	// Lock order is always auction row, then club row.
	fin := &model.ClubFinancials{ClubID: clubID}
	err = tx.QueryRow(ctx, `
		SELECT balance FROM clubs WHERE id = $1 FOR UPDATE
	`, clubID).Scan(&fin.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, bidding.ErrInvalidData
		}
		return nil, nil, commitErr(ctx, err)
	}

	// Read exposure only after the club lock is held: this statement's
	// snapshot then includes any lead the club just committed elsewhere.
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_bid), 0) FROM auctions
		WHERE current_bidder_id = $1 AND status = 'active' AND id <> $2
	`, clubID, auctionID).Scan(&fin.PendingBidExposure)
	if err != nil {
		return nil, nil, commitErr(ctx, err)
	}

	if err := bidding.CheckAffordability(fin, amount); err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE auctions
		SET current_bid = $2, current_bidder_id = $3, current_bidder_name = $4
		WHERE id = $1
	`, auctionID, amount, clubID, clubName); err != nil {
		return nil, nil, commitErr(ctx, err)
	}

	b := &model.Bid{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		ClubID:    clubID,
		ClubName:  clubName,
		Amount:    amount,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO bids (id, auction_id, club_id, club_name, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, b.ID, b.AuctionID, b.ClubID, b.ClubName, b.Amount).Scan(&b.CreatedAt); err != nil {
		return nil, nil, commitErr(ctx, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, commitErr(ctx, err)
	}

	a.CurrentBid = amount
	a.CurrentBidderID = &b.ClubID
	a.CurrentBidderName = &b.ClubName
	return a, b, nil
}

// commitErr maps storage failures inside the commit to the retryable
// transaction error; validation sentinels never pass through here.
func commitErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return bidding.ErrTransaction
	}
	return fmt.Errorf("%w: %v", bidding.ErrTransaction, err)
}

func (r *AuctionRepository) Search(ctx context.Context, req *model.SearchAuctionsRequest) ([]model.Auction, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if req.Status != "" && req.Status != "all" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, req.Status)
		argIdx++
	}

	if req.SearchText != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(player_name) LIKE $%d", argIdx))
		args = append(args, "%"+strings.ToLower(req.SearchText)+"%")
		argIdx++
	}

	if req.SellerClubID != "" {
		conditions = append(conditions, fmt.Sprintf("seller_club_id = $%d", argIdx))
		args = append(args, req.SellerClubID)
		argIdx++
	}

	where := "TRUE"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM auctions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch req.SortBy {
	case "ending_soon":
		orderBy = "scheduled_start_time + make_interval(mins => countdown_minutes) ASC"
	case "bid_asc":
		orderBy = "current_bid ASC"
	case "bid_desc":
		orderBy = "current_bid DESC"
	case "newest":
		orderBy = "created_at DESC"
	case "player":
		orderBy = "player_name ASC"
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s FROM auctions
		WHERE %s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, auctionColumns, where, orderBy, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, 0, err
		}
		auctions = append(auctions, *a)
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}
	return auctions, total, nil
}

// GetByClub lists auctions a club is selling or currently leading.
func (r *AuctionRepository) GetByClub(ctx context.Context, clubID string) ([]model.Auction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+auctionColumns+` FROM auctions
		WHERE seller_club_id = $1 OR current_bidder_id = $1
		ORDER BY created_at DESC
	`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *a)
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}
	return auctions, nil
}

// UpdateSchedule edits the schedule fields of a still-scheduled auction.
// The current bid follows the starting bid because no bid can exist yet.
func (r *AuctionRepository) UpdateSchedule(ctx context.Context, id string, req *model.UpdateScheduleRequest) (*model.Auction, error) {
	if !isAuctionID(id) {
		return nil, bidding.ErrAuctionNotFound
	}
	a, err := scanAuction(r.pool.QueryRow(ctx, `
		UPDATE auctions
		SET starting_bid = $2, current_bid = $2, scheduled_start_time = $3, countdown_minutes = $4
		WHERE id = $1 AND status = 'scheduled'
		RETURNING `+auctionColumns+`
	`, id, req.StartingBid, req.ScheduledStartTime, req.CountdownMinutes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFoundOr(ctx, id, bidding.ErrScheduleLocked)
		}
		return nil, err
	}
	return a, nil
}

// Cancel terminates an open auction. Scheduler transitions never cancel;
// this is the explicit admin path.
func (r *AuctionRepository) Cancel(ctx context.Context, id string) (*model.Auction, error) {
	if !isAuctionID(id) {
		return nil, bidding.ErrAuctionNotFound
	}
	a, err := scanAuction(r.pool.QueryRow(ctx, `
		UPDATE auctions
		SET status = 'cancelled', completed_at = NOW()
		WHERE id = $1 AND status IN ('scheduled', 'active')
		RETURNING `+auctionColumns+`
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFoundOr(ctx, id, bidding.ErrAuctionNotActive)
		}
		return nil, err
	}
	return a, nil
}

// notFoundOr distinguishes a missing auction from one in the wrong state
// after a conditional update matched no rows.
func (r *AuctionRepository) notFoundOr(ctx context.Context, id string, stateErr error) error {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM auctions WHERE id = $1", id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return bidding.ErrAuctionNotFound
	}
	return stateErr
}

// ActivateDue flips scheduled auctions whose start time has passed. The
// conditional UPDATE makes a repeated sweep a no-op and the row lock it
// takes serializes the transition with in-flight bid commits.
func (r *AuctionRepository) ActivateDue(ctx context.Context) ([]model.Auction, error) {
	return r.transitionDue(ctx, `
		UPDATE auctions
		SET status = 'active'
		WHERE status = 'scheduled' AND scheduled_start_time <= NOW()
		RETURNING `+auctionColumns)
}

// CompleteDue closes active auctions whose countdown has run out.
func (r *AuctionRepository) CompleteDue(ctx context.Context) ([]model.Auction, error) {
	return r.transitionDue(ctx, `
		UPDATE auctions
		SET status = 'completed', completed_at = NOW()
		WHERE status = 'active'
		  AND scheduled_start_time + make_interval(mins => countdown_minutes) <= NOW()
		RETURNING `+auctionColumns)
}

func (r *AuctionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM auctions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

func (r *AuctionRepository) transitionDue(ctx context.Context, query string) ([]model.Auction, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *a)
	}
	return auctions, nil
}
