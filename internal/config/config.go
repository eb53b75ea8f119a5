package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr string

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret  string
	SessionTTL time.Duration

	GatewayURL       string
	GatewayKeyID     string
	GatewayKeySecret string
	GatewayCurrency  string
	GatewayTimeout   time.Duration

	// ClearCartAfterCheckout empties the cart in the checkout transaction.
	// Off by default: placed orders leave the cart as it was.
	ClearCartAfterCheckout bool

	ProductCacheTTL time.Duration
	RateLimit       float64
	RateBurst       int
	LogLevel        string
}

// Load reads the environment, after merging in a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8082"),
		DBHost:           getEnv("DB_HOST", "127.0.0.1"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "root"),
		DBPass:           os.Getenv("DB_PASS"),
		DBName:           getEnv("DB_NAME", "storefront"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:     getKafkaBrokerURLs(),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "order-topic"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		GatewayURL:       getEnv("GATEWAY_URL", "https://api.razorpay.com"),
		GatewayKeyID:     os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("GATEWAY_KEY_SECRET"),
		GatewayCurrency:  getEnv("GATEWAY_CURRENCY", "INR"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.GatewayTimeout, err = getDuration("GATEWAY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProductCacheTTL, err = getDuration("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ClearCartAfterCheckout, err = getBool("CLEAR_CART_AFTER_CHECKOUT", false); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getFloat("RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	burst, err := getFloat("RATE_BURST", 10)
	if err != nil {
		return nil, err
	}
	cfg.RateBurst = int(burst)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.GatewayKeyID == "" || cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("gateway configuration missing")
	}

	return cfg, nil
}

// DSN is the go-sql-driver/mysql data source name. parseTime is needed to
// scan DATETIME columns into time.Time.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
