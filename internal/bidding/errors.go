// Package bidding holds the pure rules of the live auction: the minimum
// next-bid policy, the per-state legality of a bid, and the affordability
// check against a club's shared balance. Both the service layer and the
// repository's commit transaction validate through these same functions, so
// a bid that passes the fast pre-check is re-judged by identical rules once
// the auction row is locked.
package bidding

import "errors"

var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrBidTooLow           = errors.New("bid does not exceed the minimum next bid")
	ErrOwnAuctionBid       = errors.New("cannot bid on your own auction")
	ErrAlreadyHighestBid   = errors.New("club already holds the highest bid")
	ErrInsufficientBalance = errors.New("insufficient balance for this bid")
	ErrTransaction         = errors.New("bid could not be committed, retry")
	ErrInvalidData         = errors.New("invalid bid data")

	// ErrPlayerAlreadyListed guards the one-open-auction-per-player rule at
	// creation time.
	ErrPlayerAlreadyListed = errors.New("player already has an open auction")

	// ErrScheduleLocked rejects schedule edits once an auction has left the
	// scheduled state.
	ErrScheduleLocked = errors.New("schedule is frozen once the auction starts")
)
