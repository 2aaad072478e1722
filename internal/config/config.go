package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=fodi port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:3000"
	defaultBaseURL     = "http://localhost:3000"
)

type Config struct {
	AppEnv            string
	HTTPPort          string
	DatabaseDSN       string
	JWTSecret         string
	CORSOrigins       string
	PublicBaseURL     string // site origin used for redirect validation
	ProductImagePath  string
	PriceMarkup       float64 // suggested price = cost * markup
	SessionMaxAgeDays int
	MetricsEnabled    bool
}

// Load reads configuration from the environment, after an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("PUBLIC_BASE_URL", defaultBaseURL)
	v.SetDefault("PRODUCT_IMAGE_PATH", "./product-images")
	v.SetDefault("PRICE_MARKUP", 3.0)
	v.SetDefault("SESSION_MAX_AGE_DAYS", 30)
	v.SetDefault("METRICS_ENABLED", true)

	cfg := &Config{
		AppEnv:            v.GetString("APP_ENV"),
		HTTPPort:          v.GetString("HTTP_PORT"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		CORSOrigins:       v.GetString("CORS_ALLOWED_ORIGINS"),
		PublicBaseURL:     strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		ProductImagePath:  v.GetString("PRODUCT_IMAGE_PATH"),
		PriceMarkup:       v.GetFloat64("PRICE_MARKUP"),
		SessionMaxAgeDays: v.GetInt("SESSION_MAX_AGE_DAYS"),
		MetricsEnabled:    v.GetBool("METRICS_ENABLED"),
	}

	return cfg
}

// Validate refuses to start with an unsafe secret and warns about
// development defaults.
func (c *Config) Validate(log *zap.Logger) {
	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters long")
	}
	if c.PriceMarkup <= 0 {
		log.Fatal("PRICE_MARKUP must be positive", zap.Float64("markup", c.PriceMarkup))
	}
	if c.SessionMaxAgeDays <= 0 {
		c.SessionMaxAgeDays = 30
	}
	if c.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN uses the development default")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		log.Warn("CORS_ALLOWED_ORIGINS uses the development default")
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}
