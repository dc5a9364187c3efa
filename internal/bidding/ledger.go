package bidding

import (
	"fmt"

	"footix-backend/internal/model"
)

// CheckAffordability decides whether a club can cover a prospective bid.
// The club's balance is shared across every auction it is currently
// leading, so the bid is judged against balance minus that pending
// exposure, not against the raw balance.
func CheckAffordability(fin *model.ClubFinancials, amount int64) error {
	if amount <= 0 {
		return ErrInvalidData
	}
	if amount+fin.PendingBidExposure > fin.Balance {
		return ErrInsufficientBalance
	}
	return nil
}

// CapWarning renders a salary-cap projection as an advisory message, or ""
// when the projection stays under the cap. Warnings never block a bid.
func CapWarning(p *model.CapProjection) string {
	if p == nil || !p.Exceeds {
		return ""
	}
	return fmt.Sprintf("projected wage bill %d exceeds salary cap %d", p.ProjectedTotal, p.CapLimit)
}
