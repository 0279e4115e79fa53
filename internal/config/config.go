package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	Redis    RedisConfig    `json:"redis"`
	Portal   PortalConfig   `json:"portal"`
	Registry RegistryConfig `json:"registry"`
	Payment  PaymentConfig  `json:"payment"`
	Log      LogConfig      `json:"log"`
	Security SecurityConfig `json:"security"`
	Browser  BrowserConfig  `json:"browser"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// PortalConfig holds configuration for the interactive registry portal
// that is driven through a real browser.
type PortalConfig struct {
	SearchURL    string        `json:"search_url"`
	Timezone     string        `json:"timezone"`
	DefaultEmail string        `json:"default_email"`
	MaxRetries   int           `json:"max_retries"`
	RetryDelay   time.Duration `json:"retry_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
}

// RegistryConfig holds configuration for the legacy federal registry
// pages that are fetched and parsed statically.
type RegistryConfig struct {
	BaseURL        string        `json:"base_url"`
	RequestBaseURL string        `json:"request_base_url"`
	Timeout        time.Duration `json:"timeout"`
	CacheTTL       time.Duration `json:"cache_ttl"`
}

// PaymentConfig holds the credit card used at portal checkout.
type PaymentConfig struct {
	CardOwner  string `json:"-"`
	CardNumber string `json:"-"`
	ExpMonth   string `json:"-"`
	ExpYear    string `json:"-"`
	CVD        string `json:"-"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	APIToken  string          `json:"-"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	Headless       bool          `json:"headless"`
	SessionTimeout time.Duration `json:"session_timeout"`
	UserDataDir    string        `json:"user_data_dir"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			ReadTimeout: getEnvAsInt("READ_TIMEOUT", 30),
			// Portal workflows can legitimately run for many minutes
			// before the response is written.
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 1800),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT", 5)) * time.Second,
			ReadTimeout:  time.Duration(getEnvAsInt("REDIS_READ_TIMEOUT", 3)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("REDIS_WRITE_TIMEOUT", 3)) * time.Second,
		},
		Portal: PortalConfig{
			SearchURL:    getEnv("PORTAL_SEARCH_URL", "https://www.appmybizaccount.gov.on.ca/onbis/master/entry.pub?applicationCode=onbis-master&businessService=registerItemSearch"),
			Timezone:     getEnv("PORTAL_TIMEZONE", "America/Toronto"),
			DefaultEmail: getEnv("PORTAL_DEFAULT_EMAIL", ""),
			MaxRetries:   getEnvAsInt("PORTAL_MAX_RETRIES", 10),
			RetryDelay:   time.Duration(getEnvAsInt("PORTAL_RETRY_DELAY", 1)) * time.Second,
			MaxDelay:     time.Duration(getEnvAsInt("PORTAL_MAX_DELAY", 10)) * time.Second,
		},
		Registry: RegistryConfig{
			BaseURL:        getEnv("REGISTRY_BASE_URL", "https://ised-isde.canada.ca/cc/lgcy"),
			RequestBaseURL: getEnv("REGISTRY_REQUEST_BASE_URL", "https://ised-isde.canada.ca/cc/api"),
			Timeout:        time.Duration(getEnvAsInt("REGISTRY_TIMEOUT", 30)) * time.Second,
			CacheTTL:       time.Duration(getEnvAsInt("REGISTRY_CACHE_TTL", 3600)) * time.Second,
		},
		Payment: PaymentConfig{
			CardOwner:  getEnv("PAYMENT_CARD_OWNER", ""),
			CardNumber: getEnv("PAYMENT_CARD_NUMBER", ""),
			ExpMonth:   getEnv("PAYMENT_CARD_EXP_MONTH", ""),
			ExpYear:    getEnv("PAYMENT_CARD_EXP_YEAR", ""),
			CVD:        getEnv("PAYMENT_CARD_CVD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			APIToken: getEnv("API_TOKEN", ""),
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 100),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
			},
		},
		Browser: BrowserConfig{
			Headless:       getEnvAsBool("BROWSER_HEADLESS", true),
			SessionTimeout: time.Duration(getEnvAsInt("BROWSER_SESSION_TIMEOUT", 600)) * time.Second,
			UserDataDir:    getEnv("BROWSER_USER_DATA_DIR", ""),
		},
	}

	// Validate required fields
	if cfg.Security.APIToken == "" {
		return nil, fmt.Errorf("API_TOKEN is required")
	}
	if cfg.Portal.DefaultEmail == "" {
		return nil, fmt.Errorf("PORTAL_DEFAULT_EMAIL is required")
	}
	// An incomplete card would only surface minutes into a checkout
	// workflow, so refuse to start without one.
	for env, value := range map[string]string{
		"PAYMENT_CARD_OWNER":     cfg.Payment.CardOwner,
		"PAYMENT_CARD_NUMBER":    cfg.Payment.CardNumber,
		"PAYMENT_CARD_EXP_MONTH": cfg.Payment.ExpMonth,
		"PAYMENT_CARD_EXP_YEAR":  cfg.Payment.ExpYear,
		"PAYMENT_CARD_CVD":       cfg.Payment.CVD,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", env)
		}
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
