package config

import (
	"fmt"
	"os"
	"whatsapp-console/internal/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Environment          string
	BusinessPhone        string
	GatewayURL           string
	AutomationWebhookURL string
	ConversationTable    string
	S3Config             *S3Config
}

type S3Config struct {
	AccessKey  string
	SecretKey  string
	BucketName string
	ServiceUrl string
	BucketUrl  string
}

// NewConfig loads configuration from the environment. A .env file is
// honored when present, the same way the deployment scripts provide it.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8081"),
		Environment:          getEnv("APP_ENV", "development"),
		BusinessPhone:        os.Getenv("BUSINESS_PHONE"),
		GatewayURL:           os.Getenv("GATEWAY_URL"),
		AutomationWebhookURL: os.Getenv("AUTOMATION_WEBHOOK_URL"),
		ConversationTable:    getEnv("CONVERSATION_TABLE", "conversation_records"),
	}

	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3Config = &S3Config{
			AccessKey:  accessKey,
			SecretKey:  os.Getenv("S3_SECRET_KEY"),
			BucketName: os.Getenv("S3_BUCKET_NAME"),
			ServiceUrl: getEnv("S3_SERVICE_URL", "https://s3.amazonaws.com"),
			BucketUrl:  os.Getenv("S3_BUCKET_URL"),
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BusinessPhone == "" {
		return fmt.Errorf("BUSINESS_PHONE is required")
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("GATEWAY_URL is required")
	}
	if !utils.IsURL(c.GatewayURL) {
		return fmt.Errorf("GATEWAY_URL is not a valid URL: %s", c.GatewayURL)
	}
	if c.AutomationWebhookURL != "" && !utils.IsURL(c.AutomationWebhookURL) {
		return fmt.Errorf("AUTOMATION_WEBHOOK_URL is not a valid URL: %s", c.AutomationWebhookURL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
