package config

import (
	"errors"
	"fmt"
	"log"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	Port string

	// ServiceURL is the public base URL of this deployment. Verification links
	// are built from it.
	ServiceURL string
	// ServiceKey signs access and verification tokens.
	ServiceKey string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool
	MinioRegion     string
	AudioBucket     string
	ReelAudioBucket string
	CoverBucket     string
	// StoragePublicURL prefixes bucket/key to form public object URLs.
	StoragePublicURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AccessTokenTTL           time.Duration
	RequireEmailConfirmation bool
	AuthRateLimitPerMinute   int
	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For
	// header is honoured when identifying clients.
	TrustedProxies []string
	MaxUploadBytes int64

	LogLevel string
	LogFile  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseTrustedProxies converts addresses and CIDRs into prefixes. A bare
// address becomes a single-host prefix.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Load loads configuration from environment variables (via .env file) or defaults.
// godotenv.Load never overrides variables that are already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	port := getEnv("PORT", "8080")
	serviceURL := strings.TrimRight(getEnv("SERVICE_URL", "http://localhost:"+port), "/")

	minioEndpoint := getEnv("MINIO_ENDPOINT", "127.0.0.1:9000")
	minioSSL := getEnvBool("MINIO_USE_SSL", false)

	return &Config{
		Port:       port,
		ServiceURL: serviceURL,
		ServiceKey: os.Getenv("SERVICE_KEY"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "melodify"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:    minioEndpoint,
		MinioAccessKey:   os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:   os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:      minioSSL,
		MinioRegion:      getEnv("MINIO_REGION", "us-east-1"),
		AudioBucket:      getEnv("AUDIO_BUCKET", "audio"),
		ReelAudioBucket:  getEnv("REEL_AUDIO_BUCKET", "reel-audio"),
		CoverBucket:      getEnv("COVER_BUCKET", "covers"),
		StoragePublicURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", defaultStorageURL(minioEndpoint, minioSSL)), "/"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@melodify.local"),

		AccessTokenTTL:           time.Duration(getEnvInt("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RequireEmailConfirmation: getEnvBool("AUTH_REQUIRE_EMAIL_CONFIRMATION", false),
		AuthRateLimitPerMinute:   getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:           getEnvList("TRUSTED_PROXIES"),
		MaxUploadBytes:           int64(getEnvInt("MAX_UPLOAD_BYTES", 50<<20)),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func defaultStorageURL(endpoint string, useSSL bool) string {
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceKey == "" {
		errs = append(errs, errors.New("SERVICE_KEY is required"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if _, err := ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}
