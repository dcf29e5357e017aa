package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	AdminJWTSecret     string

	// TrustProxyHeaders takes the client IP from True-Client-IP, X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// Submission guard
	LeadCooldown      time.Duration
	CooldownBackend   string // memory, redis, dynamodb
	IPRateLimitRPS    float64
	IPRateLimitBurst  int
	AnalyticsQueueLen int

	// Delivery
	LeadEndpointURL     string
	LeadEndpointToken   string
	LeadEndpointTimeout time.Duration
	LeadQueueURL        string
	SalesInboxEmail     string
	SalesInboxName      string

	DatabaseURL string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	CooldownTable       string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Email
	EmailProvider     string // sendgrid, ses, stub
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),

		LeadCooldown:      getEnvAsDuration("LEAD_COOLDOWN", time.Minute),
		CooldownBackend:   strings.ToLower(strings.TrimSpace(getEnv("COOLDOWN_BACKEND", "memory"))),
		IPRateLimitRPS:    getEnvAsFloat("IP_RATE_LIMIT_RPS", 1),
		IPRateLimitBurst:  getEnvAsInt("IP_RATE_LIMIT_BURST", 5),
		AnalyticsQueueLen: getEnvAsInt("ANALYTICS_QUEUE_LEN", 256),

		LeadEndpointURL:     getEnv("LEAD_ENDPOINT_URL", ""),
		LeadEndpointToken:   getEnv("LEAD_ENDPOINT_TOKEN", ""),
		LeadEndpointTimeout: getEnvAsDuration("LEAD_ENDPOINT_TIMEOUT", 10*time.Second),
		LeadQueueURL:        getEnv("LEAD_QUEUE_URL", ""),
		SalesInboxEmail:     getEnv("SALES_INBOX_EMAIL", ""),
		SalesInboxName:      getEnv("SALES_INBOX_NAME", "Sales"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		CooldownTable:       getEnv("COOLDOWN_TABLE", "lead_cooldowns"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Lead Intake"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
