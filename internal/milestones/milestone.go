package milestones

import (
	"time"

	"github.com/abhisek/vitality/internal/rewards"
)

// Award records one rank-up milestone.
type Award struct {
	UserID    string
	Rank      rewards.Rank
	Reason    string
	ReceiptID string
	AwardedAt time.Time
}
