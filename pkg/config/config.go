package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server Server
	Stripe Stripe
	Email  Email
	Sweep  Sweep

	DatabaseURL string
	JWTSecret   string
}

type Server struct {
	Port string
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type Email struct {
	ResendAPIKey string
}

type Sweep struct {
	// Schedule is a cron expression; empty means every minute.
	Schedule string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: Server{
			Port: getEnv("PORT", "3000"),
		},
		Stripe: Stripe{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/payment-success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/payment-cancelled"),
		},
		Email: Email{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
		Sweep: Sweep{
			Schedule: getEnv("SWEEP_SCHEDULE", ""),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "rentora-dev-secret"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
