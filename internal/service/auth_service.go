package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"sygil/config"
	"sygil/internal/auth"
	"sygil/internal/domain"
	"sygil/internal/models"
	"sygil/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrOTPMismatch    = errors.New("verification code is wrong or expired")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

func (s *AuthService) Register(email, username, password, accountType string) (*models.User, string, string, error) {
	if accountType != domain.AccountTypeCreator {
		accountType = domain.AccountTypeUser
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	if username != "" {
		_, err = s.userRepo.GetByUsername(username)
		if err == nil {
			return nil, "", "", ErrUsernameExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		AccountType:  accountType,
	}
	if username != "" {
		u.Username = &username
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.AccountType)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.AccountType)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.AccountType)
}

// LoginWithGoogle creates or finds the user by Google ID and returns user,
// tokens and an isNew flag. New accounts default to the fan account type.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.User, string, string, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.AccountType)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
		return u, access, refresh, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", false, err
	}
	existing, _ := s.userRepo.GetByEmail(email)
	if existing != nil {
		// Link Google to the existing account.
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" {
			existing.AvatarURL = avatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, "", "", false, err
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, existing.ID, existing.Email, existing.AccountType)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, existing.ID)
		return existing, access, refresh, false, nil
	}
	gid := googleID
	username := strings.Split(email, "@")[0]
	if name != "" {
		username = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	u = &models.User{
		Email:       email,
		Name:        name,
		GoogleID:    &gid,
		AccountType: domain.AccountTypeUser,
		AvatarURL:   avatarURL,
	}
	// The derived username is a convenience; if it is already taken the
	// account starts without one and the user picks later.
	if _, err := s.userRepo.GetByUsername(username); errors.Is(err, gorm.ErrRecordNotFound) {
		u.Username = &username
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", false, err
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.AccountType)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, true, nil
}

// IssueVerificationOTP stores a fresh 6-digit code with a 10 minute window
// for the user's instagram handle. Delivery (DM/email) happens out of band.
func (s *AuthService) IssueVerificationOTP(userID uint, instagramHandle string) (string, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(10 * time.Minute)
	u.InstagramHandle = instagramHandle
	u.VerifyOTP = code
	u.VerifyOTPExpiry = &expiry
	if err := s.userRepo.Update(u); err != nil {
		return "", err
	}
	return code, nil
}

// ConfirmVerificationOTP checks the submitted code and marks the account
// verified. Creators are promoted from the plain fan account type.
func (s *AuthService) ConfirmVerificationOTP(userID uint, code string) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u.VerifyOTP == "" || u.VerifyOTP != code ||
		u.VerifyOTPExpiry == nil || time.Now().After(*u.VerifyOTPExpiry) {
		return nil, ErrOTPMismatch
	}
	u.Verified = true
	u.VerifyOTP = ""
	u.VerifyOTPExpiry = nil
	if u.AccountType == domain.AccountTypeUser {
		u.AccountType = domain.AccountTypeCreator
	}
	if err := s.userRepo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
