package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // Splitting lists
	"time"    // Durations

	"github.com/joho/godotenv"   // For loading .env files
	"golang.org/x/text/currency" // ISO 4217 validation
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // Token lifetime
	DecryptKey  string        // Fernet key protecting payout credentials
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	IsProd      bool          // Is production environment
	CORSOrigins []string      // Allowed browser origins

	Wise WiseConfig // Payment provider
	S3   S3Config   // Photo storage
}

// WiseConfig configures the payment provider client
type WiseConfig struct {
	BaseURL        string        // API root
	SourceCurrency string        // Currency charged
	TargetCurrency string        // Currency paid out
	Timeout        time.Duration // Per-request timeout
}

// S3Config configures photo storage
type S3Config struct {
	Bucket string // Bucket receiving jacket photos
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),                                 // Application port
		DBUser:      os.Getenv("DB_USER"),                                       // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                                   // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),                             // Database host
		DBPort:      getEnv("DB_PORT", "3306"),                                  // Database port
		DBName:      os.Getenv("DB_NAME"),                                       // Database name
		JWTSecret:   os.Getenv("JWT_SECRET"),                                    // JWT secret key
		JWTTTL:      getEnvDuration("JWT_TTL", 48*time.Hour),                    // Token lifetime
		DecryptKey:  os.Getenv("DECRYPT_KEY"),                                   // Fernet key
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),                     // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                                    // Redis password
		RedisDB:     redisDB,                                                    // Redis database number
		IsProd:      os.Getenv("IS_PROD") == "true",                             // Is production environment
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")), // Allowed origins
		Wise: WiseConfig{
			BaseURL:        getEnv("WISE_BASE_URL", "https://api.sandbox.transferwise.tech"),
			SourceCurrency: getEnv("WISE_SOURCE_CURRENCY", "EUR"),
			TargetCurrency: getEnv("WISE_TARGET_CURRENCY", "EUR"),
			Timeout:        getEnvDuration("WISE_TIMEOUT", 30*time.Second),
		},
		S3: S3Config{
			Bucket: os.Getenv("S3_BUCKET"),
		},
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.DecryptKey == "" {
		errs = append(errs, errors.New("DECRYPT_KEY is not set"))
	}
	for _, code := range []string{c.Wise.SourceCurrency, c.Wise.TargetCurrency} {
		if _, err := currency.ParseISO(code); err != nil {
			errs = append(errs, fmt.Errorf("invalid currency %q: %w", code, err))
		}
	}
	return errors.Join(errs...)
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv retrieves an environment variable with a default fallback
func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultVal
}

// getEnvDuration parses a Go duration, falling back on empty or invalid input
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
