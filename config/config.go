package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Business Rules
	ReturnWindow         time.Duration
	MaxOrderItemQuantity int
	// Cache
	CacheCheckoutTTL time.Duration
	CacheStatsTTL    time.Duration
	// Rate limiting, per client IP
	RateLimitRPS   float64
	RateLimitBurst int
	// Outbound notification webhook; empty URL disables it. Deliveries run
	// off the request path through a bounded queue.
	NotifyWebhookURL       string
	NotifyWebhookSecret    string
	NotifyWebhookTimeout   time.Duration
	NotifyWebhookQueueSize int
	// Refund reminder job
	RefundReminderSchedule string
	RefundReminderAge      time.Duration
	// R2 Storage for finance exports
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	R2UploadTimeout   time.Duration
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars otherwise
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// 7 day return window; 0 disables the check
		ReturnWindow:         getDurationEnv("RETURN_WINDOW", 7*24*time.Hour),
		MaxOrderItemQuantity: getIntEnv("MAX_ORDER_ITEM_QUANTITY", 1000),

		CacheCheckoutTTL: getDurationEnv("CACHE_CHECKOUT_TTL", 10*time.Minute),
		CacheStatsTTL:    getDurationEnv("CACHE_STATS_TTL", 5*time.Minute),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		NotifyWebhookURL:       getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyWebhookSecret:    getEnv("NOTIFY_WEBHOOK_SECRET", ""),
		NotifyWebhookTimeout:   getDurationEnv("NOTIFY_WEBHOOK_TIMEOUT", 5*time.Second),
		NotifyWebhookQueueSize: getIntEnv("NOTIFY_WEBHOOK_QUEUE_SIZE", 256),

		RefundReminderSchedule: getEnv("REFUND_REMINDER_SCHEDULE", "@every 1h"),
		RefundReminderAge:      getDurationEnv("REFUND_REMINDER_AGE", 48*time.Hour),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.MaxOrderItemQuantity < 1 {
		log.Fatal("CRITICAL: MAX_ORDER_ITEM_QUANTITY must be at least 1")
	}
	if c.ReturnWindow < 0 {
		log.Println("WARNING: RETURN_WINDOW is negative, using the 7 day default")
		c.ReturnWindow = 7 * 24 * time.Hour
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}
