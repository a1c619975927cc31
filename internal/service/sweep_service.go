package service

import (
	"fmt"
	"log"
	"time"

	"sygil/internal/domain"
	"sygil/internal/repository"
)

// SweepResult is the payload returned to the cron trigger. Per-record
// failures land in Errors; they never abort the batch.
type SweepResult struct {
	Scanned        int              `json:"scanned"`
	Cancelled      int              `json:"cancelled"`
	PointsRefunded int64            `json:"points_refunded"`
	PointsExpired  int              `json:"points_expired"`
	Creators       []CreatorSummary `json:"creators"`
	Errors         []string         `json:"errors,omitempty"`
}

// CreatorSummary aggregates one creator's cancelled redemptions; exactly one
// notification is sent per entry.
type CreatorSummary struct {
	CreatorID      uint  `json:"creator_id"`
	Cancelled      int   `json:"cancelled"`
	PointsRefunded int64 `json:"points_refunded"`
}

// SweepService is the auto-cancel batch job. It is triggered externally (a
// platform cron hitting the HTTP endpoint) and takes now as a parameter so
// tests control the clock.
type SweepService struct {
	redemptionRepo *repository.RedemptionRepository
	pointsSvc      *PointsService
	notifSvc       *NotificationService
	maxAge         time.Duration
}

func NewSweepService(
	redemptionRepo *repository.RedemptionRepository,
	pointsSvc *PointsService,
	notifSvc *NotificationService,
	maxAge time.Duration,
) *SweepService {
	return &SweepService{
		redemptionRepo: redemptionRepo,
		pointsSvc:      pointsSvc,
		notifSvc:       notifSvc,
		maxAge:         maxAge,
	}
}

// Run cancels every Pending redemption older than the cutoff, refunds its
// points exactly once, and emits one aggregated notification per affected
// creator. It then expires stale point grants.
func (s *SweepService) Run(now time.Time) *SweepResult {
	res := &SweepResult{}
	cutoff := now.Add(-s.maxAge)

	stale, err := s.redemptionRepo.ListStalePending(cutoff)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("list pending: %v", err))
		return res
	}
	res.Scanned = len(stale)

	perCreator := make(map[uint]*CreatorSummary)
	var order []uint
	for _, rd := range stale {
		ok, err := s.redemptionRepo.MarkCancelled(rd.ID, domain.SweepCancelReason, now)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("redemption %d: %v", rd.ID, err))
			continue
		}
		if !ok {
			// Already left Pending since the list query; nothing to refund.
			continue
		}
		if err := s.pointsSvc.Refund(rd.FanID, rd.CreatorID, rd.PointsSpent,
			"Refund: redemption auto-cancelled", fmt.Sprintf("redemption_%d", rd.ID)); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("redemption %d refund: %v", rd.ID, err))
			continue
		}
		res.Cancelled++
		res.PointsRefunded += rd.PointsSpent
		sum := perCreator[rd.CreatorID]
		if sum == nil {
			sum = &CreatorSummary{CreatorID: rd.CreatorID}
			perCreator[rd.CreatorID] = sum
			order = append(order, rd.CreatorID)
		}
		sum.Cancelled++
		sum.PointsRefunded += rd.PointsSpent
	}

	for _, creatorID := range order {
		sum := perCreator[creatorID]
		res.Creators = append(res.Creators, *sum)
		if s.notifSvc != nil {
			_ = s.notifSvc.NotifySweepSummary(creatorID, sum.Cancelled, sum.PointsRefunded)
		}
	}

	expired, errs := s.pointsSvc.ExpirePoints(now)
	res.PointsExpired = expired
	for _, err := range errs {
		res.Errors = append(res.Errors, fmt.Sprintf("expire: %v", err))
	}

	log.Printf("[sweep] scanned=%d cancelled=%d refunded=%d expired=%d errors=%d",
		res.Scanned, res.Cancelled, res.PointsRefunded, res.PointsExpired, len(res.Errors))
	return res
}
