package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DBUrl            string
	JWTSecret        string
	AppEnv           string
	PushGatewayURL   string
	SummarizerURL    string
	SummarizerKey    string
	SummarizerModel  string
	StripeSecretKey  string
	StripePublicKey  string
	StorageURL       string
	StorageBucket    string
	StorageKey       string
	DefaultAdminMail string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBUrl:            getEnv("DB_URL", ""),
		JWTSecret:        jwtSecret,
		AppEnv:           normalizeEnv(getEnv("APP_ENV", "production")),
		PushGatewayURL:   getEnv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
		SummarizerURL:    getEnv("SUMMARIZER_URL", "https://api.openai.com/v1/chat/completions"),
		SummarizerKey:    getEnv("SUMMARIZER_API_KEY", ""),
		SummarizerModel:  getEnv("SUMMARIZER_MODEL", "gpt-4o-mini"),
		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", "sk_test_mock_key"),
		StripePublicKey:  getEnv("STRIPE_PUBLISHABLE_KEY", "pk_test_mock_key"),
		StorageURL:       getEnv("SUPABASE_URL", ""),
		StorageBucket:    getEnv("SUPABASE_BUCKET", "caregiver-media"),
		StorageKey:       getEnv("SUPABASE_SERVICE_KEY", ""),
		DefaultAdminMail: getEnv("DEFAULT_ADMIN_EMAIL", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
