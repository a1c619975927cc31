package service

import (
	"errors"
	"strings"
	"time"

	"sygil/internal/models"
	"sygil/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrCodeNotFound       = errors.New("discount code not found")
	ErrCodeInactive       = errors.New("discount code is no longer active")
	ErrCodeExpired        = errors.New("discount code has expired")
	ErrCodeLimitReached   = errors.New("discount code usage limit reached")
	ErrCodeAlreadyApplied = errors.New("discount code already applied")
	ErrCodeWrongAccount   = errors.New("discount code is not available for this account type")
)

// IncompleteOnboardingError carries the specific unmet checklist steps so the
// API can tell the user what to finish.
type IncompleteOnboardingError struct {
	Steps []string
}

func (e *IncompleteOnboardingError) Error() string {
	return "complete onboarding to use this code: " + strings.Join(e.Steps, ", ")
}

type DiscountService struct {
	discountRepo *repository.DiscountRepository
	userRepo     *repository.UserRepository
}

func NewDiscountService(discountRepo *repository.DiscountRepository, userRepo *repository.UserRepository) *DiscountService {
	return &DiscountService{discountRepo: discountRepo, userRepo: userRepo}
}

// Apply validates eligibility and records a single-use-per-user application
// of the code. Checks run in order: existence, active, expiry, account type,
// onboarding gate, already-applied, global usage limit.
func (s *DiscountService) Apply(userID uint, code string, now time.Time) (*models.DiscountCode, error) {
	dc, err := s.discountRepo.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if !dc.Active {
		return nil, ErrCodeInactive
	}
	if dc.ExpiresAt != nil && now.After(*dc.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if dc.AccountType != "" && u.AccountType != dc.AccountType {
		return nil, ErrCodeWrongAccount
	}
	if dc.RequiresOnboarding {
		if steps := u.OnboardingSteps(); len(steps) > 0 {
			return nil, &IncompleteOnboardingError{Steps: steps}
		}
	}

	applied, err := s.discountRepo.HasApplied(dc.ID, userID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, ErrCodeAlreadyApplied
	}

	ok, err := s.discountRepo.ClaimUsage(dc.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeLimitReached
	}
	return dc, nil
}
