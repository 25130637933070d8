package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	APIUrl      string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret               string
	JWTAccessTokenDuration  time.Duration
	JWTRefreshTokenDuration time.Duration

	// Superuser seed
	AdminEmail        string
	AdminPassword     string
	AdminMobileNumber string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// OTP verification
	OTPExpiry          time.Duration
	OTPMaxFailAttempts int

	// Password reset
	ResetTokenExpiry time.Duration

	// Signup validation
	AllowedEmailDomains []string
	MinSignupAge        int
	MaxSignupAge        int

	// Sessions
	SessionCookieName string
	SessionTTL        time.Duration

	// Security
	BcryptCost          int
	RateLimitRequests   int
	RateLimitDuration   time.Duration
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		APIUrl:      getEnv("API_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "mpgepmc"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "mpgepmc_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),
		JWTRefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", "168h"),

		// Superuser seed
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@mpgepmc.com"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
		AdminMobileNumber: getEnv("ADMIN_MOBILE_NUMBER", "+12025550100"),

		// SMTP
		SMTPHost:     getEnv("SMTP_HOST", "smtp.mpgepmc.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", "accounts@mpgepmc.com"),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "accounts@mpgepmc.com"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "mpgepmc"),

		// OTP verification
		OTPExpiry:          getEnvAsDuration("OTP_EXPIRY", "30m"),
		OTPMaxFailAttempts: getEnvAsInt("OTP_MAX_FAIL_ATTEMPTS", 3),

		// Password reset
		ResetTokenExpiry: getEnvAsDuration("RESET_TOKEN_EXPIRY", "2h"),

		// Signup validation
		AllowedEmailDomains: getEnvAsSlice("ALLOWED_EMAIL_DOMAINS", []string{"gmail.com", "yahoo.com", "mpgepmc.com"}),
		MinSignupAge:        getEnvAsInt("MIN_SIGNUP_AGE", 12),
		MaxSignupAge:        getEnvAsInt("MAX_SIGNUP_AGE", 150),

		// Sessions
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "mpgepmc_session"),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", "24h"),

		// Security
		BcryptCost:          getEnvAsInt("BCRYPT_COST", 12),
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration:   getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		AuthRateLimitMax:    getEnvAsInt("AUTH_RATE_LIMIT_MAX", 10),
		AuthRateLimitWindow: getEnvAsDuration("AUTH_RATE_LIMIT_WINDOW", "5m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://mpgepmc.com"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
