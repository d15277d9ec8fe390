package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port              string        `yaml:"port"`
	Env               string        `yaml:"env"`
	MongoURI          string        `yaml:"mongoUri"`
	MongoDatabase     string        `yaml:"mongoDatabase"`
	JWTSecret         string        `yaml:"jwtSecret"`
	JWTExpiry         time.Duration `yaml:"jwtExpiry"`
	RedisURL          string        `yaml:"redisUrl"`
	CORSOrigins       []string      `yaml:"corsOrigins"`
	AuthRateLimit     float64       `yaml:"authRateLimit"`
	AuthRateBurst     int           `yaml:"authRateBurst"`
	LowStockThreshold int           `yaml:"lowStockThreshold"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:              "3000",
		Env:               "development",
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "hardware_store",
		JWTExpiry:         72 * time.Hour,
		CORSOrigins:       []string{"*"},
		AuthRateLimit:     5,
		AuthRateBurst:     10,
		LowStockThreshold: 10,
	}
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; using system environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load builds the config from defaults, an optional YAML file named by
// CONFIG_FILE and finally the environment.
func Load() (*Config, error) {
	LoadEnv()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges a YAML config file over the current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing YAML config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = GetEnv("PORT", c.Port)
	c.Env = GetEnv("APP_ENV", c.Env)
	c.MongoURI = GetEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = GetEnv("MONGODB_DATABASE", c.MongoDatabase)
	c.JWTSecret = GetEnv("JWT_SECRET", c.JWTSecret)
	c.RedisURL = GetEnv("REDIS_URL", c.RedisURL)

	if v, ok := os.LookupEnv("JWT_EXPIRY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRY %q: %w", v, err)
		}
		c.JWTExpiry = d
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid AUTH_RATE_LIMIT %q: %w", v, err)
		}
		c.AuthRateLimit = f
	}
	if v, ok := os.LookupEnv("AUTH_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_RATE_BURST %q: %w", v, err)
		}
		c.AuthRateBurst = n
	}
	if v, ok := os.LookupEnv("LOW_STOCK_THRESHOLD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LOW_STOCK_THRESHOLD %q: %w", v, err)
		}
		c.LowStockThreshold = n
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		log.Println("JWT_SECRET not set; using an insecure development secret")
		c.JWTSecret = "development-secret"
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
