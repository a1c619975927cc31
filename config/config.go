package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Admin      AdminConfig
	PayPal     PayPalConfig
	Razorpay   RazorpayConfig
	Cloudinary CloudinaryConfig
	Sweep      SweepConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// AdminConfig holds the static admin allow-list and the shared secret the
// external cron must present to trigger the sweep.
type AdminConfig struct {
	Emails     []string
	SweepToken string
}

type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type SweepConfig struct {
	// Pending redemptions older than this are cancelled and refunded.
	RedemptionMaxAge time.Duration
	// Earned/Bonus grants carry this expiry window.
	PointExpiry time.Duration
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "sygil:sygil@tcp(localhost:3306)/sygil?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "sygil",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     env("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: env("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  env("GOOGLE_REDIRECT_URL", ""),
		},
		Admin: AdminConfig{
			Emails:     splitList(env("ADMIN_EMAILS", "")),
			SweepToken: env("SWEEP_TOKEN", ""),
		},
		PayPal: PayPalConfig{
			BaseURL:      env("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			ClientID:     env("PAYPAL_CLIENT_ID", ""),
			ClientSecret: env("PAYPAL_CLIENT_SECRET", ""),
		},
		Razorpay: RazorpayConfig{
			BaseURL:   env("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:     env("RAZORPAY_KEY_ID", ""),
			KeySecret: env("RAZORPAY_KEY_SECRET", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		Sweep: SweepConfig{
			RedemptionMaxAge: 60 * 24 * time.Hour,
			PointExpiry:      60 * 24 * time.Hour,
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// IsAdmin reports whether the given email is on the static allow-list.
func (a *AdminConfig) IsAdmin(email string) bool {
	email = strings.ToLower(email)
	for _, e := range a.Emails {
		if e == email {
			return true
		}
	}
	return false
}
