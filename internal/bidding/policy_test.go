package bidding

import (
	"errors"
	"testing"

	"footix-backend/internal/model"

	"github.com/peterldowns/testy/check"
)

func TestMinimumNextBid(t *testing.T) {
	cases := []struct {
		current int64
		want    int64
	}{
		{1_000_000, 1_100_000},
		{2_000_000, 2_200_000},
		{1, 2},            // ceil(1.1)
		{15, 17},          // ceil(16.5)
		{999, 1099},       // ceil(1098.9)
		{100, 110},        // exact step, no rounding
		{1_000_001, 1_100_002}, // ceil(1100001.1)
	}
	for _, tc := range cases {
		check.Equal(t, tc.want, MinimumNextBid(tc.current))
	}
}

func activeAuction() *model.Auction {
	seller := "seller-club"
	sellerName := "AS Seller"
	return &model.Auction{
		ID:             "auction-1",
		PlayerID:       "player-1",
		PlayerName:     "Kylian Test",
		SellerClubID:   &seller,
		SellerClubName: &sellerName,
		StartingBid:    1_000_000,
		CurrentBid:     1_000_000,
		Status:         model.AuctionActive,
	}
}

func TestValidateBid_StartingBidBaseline(t *testing.T) {
	a := activeAuction()

	// Matching the starting bid is not enough: the baseline minimum is one
	// increment above it.
	check.True(t, errors.Is(ValidateBid(a, "club-a", 1_000_000), ErrBidTooLow))

	// Exactly the minimum is still rejected; the rule is strictly greater.
	check.True(t, errors.Is(ValidateBid(a, "club-a", 1_100_000), ErrBidTooLow))

	// One unit above the minimum is accepted.
	check.NoError(t, ValidateBid(a, "club-a", 1_100_001))
}

func TestValidateBid_AlreadyHighest(t *testing.T) {
	a := activeAuction()
	leader := "club-a"
	a.CurrentBid = 2_000_000
	a.CurrentBidderID = &leader

	// The leader cannot outbid itself even with a big raise.
	check.True(t, errors.Is(ValidateBid(a, "club-a", 2_500_000), ErrAlreadyHighestBid))

	// A rival with the same raise is fine.
	check.NoError(t, ValidateBid(a, "club-b", 2_500_000))
}

func TestValidateBid_OwnAuction(t *testing.T) {
	a := activeAuction()

	// Amount is irrelevant for a self-bid.
	check.True(t, errors.Is(ValidateBid(a, "seller-club", 99_000_000), ErrOwnAuctionBid))
}

func TestValidateBid_FreeAgentListingHasNoSeller(t *testing.T) {
	a := activeAuction()
	a.SellerClubID = nil
	a.SellerClubName = nil

	check.NoError(t, ValidateBid(a, "club-a", 1_200_000))
}

func TestValidateBid_NotActive(t *testing.T) {
	for _, status := range []string{model.AuctionScheduled, model.AuctionCompleted, model.AuctionCancelled} {
		a := activeAuction()
		a.Status = status
		check.True(t, errors.Is(ValidateBid(a, "club-a", 5_000_000), ErrAuctionNotActive))
	}
}

func TestValidateBid_InvalidInput(t *testing.T) {
	a := activeAuction()

	check.True(t, errors.Is(ValidateBid(a, "club-a", 0), ErrInvalidData))
	check.True(t, errors.Is(ValidateBid(a, "club-a", -5), ErrInvalidData))
	check.True(t, errors.Is(ValidateBid(a, "", 2_000_000), ErrInvalidData))
}
