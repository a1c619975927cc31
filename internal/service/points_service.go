package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"
	"sygil/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPoints      = errors.New("points must be a positive number")
	ErrInsufficientPoints = repository.ErrInsufficientPoints
)

// PointsService owns every FamPoints mutation: earn on donation capture,
// admin bonus grants, redemption spends and refunds, and expiry. Balance
// columns are authoritative; each mutation also appends a ledger row.
type PointsService struct {
	pointRepo *repository.PointRepository
	userRepo  *repository.UserRepository
	notifSvc  *NotificationService
	expiry    time.Duration
}

func NewPointsService(pointRepo *repository.PointRepository, userRepo *repository.UserRepository, notifSvc *NotificationService, expiry time.Duration) *PointsService {
	return &PointsService{pointRepo: pointRepo, userRepo: userRepo, notifSvc: notifSvc, expiry: expiry}
}

// PointsForDonation is the earn rule: floor(amount * 0.1).
func PointsForDonation(amount int64) int64 {
	return int64(math.Floor(float64(amount) * domain.PointsEarnRate))
}

// AwardForDonation credits points earned by a completed donation to the payer.
// Returns the number of points awarded (0 when the donation is too small).
func (s *PointsService) AwardForDonation(fanID, creatorID uint, amount int64, orderID string) (int64, error) {
	points := PointsForDonation(amount)
	if points <= 0 {
		return 0, nil
	}
	expiresAt := time.Now().Add(s.expiry)
	tx := &models.PointTransaction{
		UserID:      fanID,
		CreatorID:   &creatorID,
		Type:        domain.TxTypeEarned,
		Amount:      points,
		Description: fmt.Sprintf("Earned from donation of %d", amount),
		Reference:   orderID,
		ExpiresAt:   &expiresAt,
	}
	if err := s.pointRepo.CreateTransaction(tx); err != nil {
		return 0, err
	}
	if err := s.pointRepo.CreditBucket(fanID, creatorID, points); err != nil {
		return 0, err
	}
	if err := s.userRepo.IncrementPoints(fanID, points); err != nil {
		return 0, err
	}
	return points, nil
}

// GrantBonus is the admin-only bonus grant. The target is resolved by numeric
// ID string or username; the grant carries the standard expiry window.
func (s *PointsService) GrantBonus(userRef string, points int64, description string) (*models.PointTransaction, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	u, err := s.userRepo.Resolve(userRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if description == "" {
		description = "Bonus points granted by admin"
	}
	expiresAt := time.Now().Add(s.expiry)
	tx := &models.PointTransaction{
		UserID:      u.ID,
		Type:        domain.TxTypeBonus,
		Amount:      points,
		Description: description,
		ExpiresAt:   &expiresAt,
	}
	if err := s.pointRepo.CreateTransaction(tx); err != nil {
		return nil, err
	}
	if err := s.userRepo.IncrementPoints(u.ID, points); err != nil {
		return nil, err
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifyBonusGranted(u.ID, points)
	}
	return tx, nil
}

// Spend debits the fan's bucket with the creator and appends a Spent row.
// No mutation happens when the bucket is missing or short.
func (s *PointsService) Spend(fanID, creatorID uint, points int64, description, reference string) error {
	if points <= 0 {
		return nil // free items spend nothing
	}
	if err := s.pointRepo.DebitBucket(fanID, creatorID, points); err != nil {
		return err
	}
	if err := s.userRepo.IncrementPoints(fanID, -points); err != nil {
		return err
	}
	return s.pointRepo.CreateTransaction(&models.PointTransaction{
		UserID:      fanID,
		CreatorID:   &creatorID,
		Type:        domain.TxTypeSpent,
		Amount:      points,
		Description: description,
		Reference:   reference,
	})
}

// Refund re-credits the exact amount to the same bucket it was drawn from and
// appends a Refund row.
func (s *PointsService) Refund(fanID, creatorID uint, points int64, description, reference string) error {
	if points <= 0 {
		return nil
	}
	if err := s.pointRepo.CreditBucket(fanID, creatorID, points); err != nil {
		return err
	}
	if err := s.userRepo.IncrementPoints(fanID, points); err != nil {
		return err
	}
	return s.pointRepo.CreateTransaction(&models.PointTransaction{
		UserID:      fanID,
		CreatorID:   &creatorID,
		Type:        domain.TxTypeRefund,
		Amount:      points,
		Description: description,
		Reference:   reference,
	})
}

// ExpirePoints marks past-expiry Earned/Bonus grants expired and deducts the
// remaining value from the holder's balances. Returns the number of grants
// expired. Per-grant failures are logged by the caller via the error slice.
func (s *PointsService) ExpirePoints(now time.Time) (int, []error) {
	grants, err := s.pointRepo.ListExpirable(now)
	if err != nil {
		return 0, []error{err}
	}
	var errs []error
	expired := 0
	for _, g := range grants {
		if err := s.pointRepo.MarkExpired(g.ID); err != nil {
			errs = append(errs, fmt.Errorf("grant %d: %w", g.ID, err))
			continue
		}
		// The ledger row records what was actually deducted. Bucketed grants
		// drain the bucket clamped at zero: part of the grant may already
		// have been spent, and spent points are not deducted again.
		deducted := g.Amount
		if g.CreatorID != nil {
			deducted = 0
			if b, err := s.pointRepo.GetBalance(g.UserID, *g.CreatorID); err == nil && b.Points > 0 {
				drain := g.Amount
				if drain > b.Points {
					drain = b.Points
				}
				if err := s.pointRepo.DebitBucket(g.UserID, *g.CreatorID, drain); err == nil {
					_ = s.userRepo.IncrementPoints(g.UserID, -drain)
					deducted = drain
				}
			}
		} else {
			_ = s.userRepo.IncrementPoints(g.UserID, -g.Amount)
		}
		if deducted > 0 {
			if err := s.pointRepo.CreateTransaction(&models.PointTransaction{
				UserID:      g.UserID,
				CreatorID:   g.CreatorID,
				Type:        domain.TxTypeExpired,
				Amount:      deducted,
				Description: fmt.Sprintf("Points from transaction %d expired", g.ID),
			}); err != nil {
				errs = append(errs, fmt.Errorf("grant %d ledger: %w", g.ID, err))
				continue
			}
		}
		expired++
	}
	return expired, errs
}

// Reconcile reports both balance sources for a user so drift between the
// authoritative columns and the ledger is observable.
func (s *PointsService) Reconcile(userRef string) (aggregate, ledger int64, err error) {
	u, err := s.userRepo.Resolve(userRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, err
	}
	ledger, err = s.pointRepo.SumSpendable(u.ID)
	if err != nil {
		return 0, 0, err
	}
	return u.Points, ledger, nil
}
