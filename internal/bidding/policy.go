package bidding

import "footix-backend/internal/model"

// incrementPct is the fixed step between the current bid and the minimum
// acceptable next bid.
const incrementPct = 10

// MinimumNextBid is the current bid raised by the increment step, rounded
// up to the next whole unit. A valid bid must strictly exceed this value,
// it is not enough to meet it.
func MinimumNextBid(currentBid int64) int64 {
	return (currentBid*(100+incrementPct) + 99) / 100
}

// ValidateBid applies the ordering policy against a snapshot of the auction
// row. Callers outside the commit transaction use it to fail fast; the
// transaction runs it again on the locked row before writing.
func ValidateBid(a *model.Auction, clubID string, amount int64) error {
	if clubID == "" || amount <= 0 {
		return ErrInvalidData
	}
	if a.Status != model.AuctionActive {
		return ErrAuctionNotActive
	}
	if a.SellerClubID != nil && *a.SellerClubID == clubID {
		return ErrOwnAuctionBid
	}
	if a.CurrentBidderID != nil && *a.CurrentBidderID == clubID {
		return ErrAlreadyHighestBid
	}
	if amount <= MinimumNextBid(a.CurrentBid) {
		return ErrBidTooLow
	}
	return nil
}
