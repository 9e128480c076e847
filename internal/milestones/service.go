// Package milestones awards a milestone activity each time a user reaches
// a new rank.
package milestones

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/store"
)

// Recorder records the milestone activity. *progression.Engine satisfies it.
type Recorder interface {
	RecordActivity(ctx context.Context, userID string, req progression.ActivityRequest, now time.Time) (*progression.Receipt, error)
}

// Service is a progression.MilestoneEvaluator. The highest rank already
// rewarded per user is recovered from the event log on first sight, so
// restarts never award the same rank twice.
type Service struct {
	events store.EventRepo
	log    logrus.FieldLogger

	mu       sync.Mutex
	recorder Recorder
	awarded  map[string]rewards.Rank
}

var _ progression.MilestoneEvaluator = (*Service)(nil)

// NewService creates a milestone service. events may be nil.
func NewService(events store.EventRepo, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		events:  events,
		log:     log,
		awarded: make(map[string]rewards.Rank),
	}
}

// Bind sets the recorder. The engine and the service refer to each
// other, so this happens after the engine is built.
func (s *Service) Bind(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// EvaluateMilestones awards one milestone activity per rank newly reached,
// recorded at now. The awards themselves may raise the rank again; the
// nested evaluation handles that.
func (s *Service) EvaluateMilestones(ctx context.Context, userID string, totals ledger.Standing, now time.Time) error {
	s.mu.Lock()
	rec := s.recorder
	prev, ok := s.awarded[userID]
	if !ok {
		var err error
		if prev, err = s.seed(ctx, userID); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if rec == nil || totals.Rank <= prev {
		s.awarded[userID] = prev
		s.mu.Unlock()
		return nil
	}
	// Claim the ranks before recording so the nested call skips them.
	s.awarded[userID] = totals.Rank
	s.mu.Unlock()

	for r := prev + 1; r <= totals.Rank; r++ {
		award := Award{
			UserID:    userID,
			Rank:      r,
			Reason:    fmt.Sprintf("Reached %s", r.Title()),
			AwardedAt: now,
		}
		receipt, err := rec.RecordActivity(ctx, userID, progression.ActivityRequest{
			Type:        rewards.Milestone,
			Description: award.Reason,
		}, award.AwardedAt)
		if err != nil {
			return fmt.Errorf("award %s milestone: %w", r.Title(), err)
		}
		award.ReceiptID = receipt.ID
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"rank":    r.Title(),
			"receipt": award.ReceiptID,
		}).Info("milestone awarded")
	}
	return nil
}

// Awarded returns the highest rank rewarded for the user so far.
func (s *Service) Awarded(userID string) rewards.Rank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awarded[userID]
}

// seed counts milestone activities already in the event log. Caller
// holds s.mu.
func (s *Service) seed(ctx context.Context, userID string) (rewards.Rank, error) {
	if s.events == nil {
		return rewards.Recruit, nil
	}
	evs, err := s.events.Query(ctx, userID, store.QueryOpts{Kind: store.KindActivity})
	if err != nil {
		return rewards.Recruit, fmt.Errorf("load milestone history: %w", err)
	}
	n := 0
	for _, ev := range evs {
		var data store.ActivityEventData
		if err := json.Unmarshal(ev.Payload, &data); err != nil {
			continue
		}
		if data.ActivityType == string(rewards.Milestone) {
			n++
		}
	}
	return rewards.Rank(min(n, rewards.RankCount-1)), nil
}
