package config

import (
	"os"
	"time"
)

type Config struct {
	HTTPPort            string
	DatabaseURL         string
	Currency            string
	StripeSecretKey     string
	StripeWebhookSecret string
	JWTSecret           string
	AllowedOrigins      string

	// PendingTTL > 0 enables the stale-pending sweep: pending bookings older
	// than the TTL are cancelled and their slot released. Zero disables it.
	PendingTTL time.Duration
}

func Load() Config {
	return Config{
		HTTPPort:            getenv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Currency:            getenv("CURRENCY", "usd"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AllowedOrigins:      getenv("ALLOWED_ORIGINS", "*"),
		PendingTTL:          getduration("PENDING_TTL", 0),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
