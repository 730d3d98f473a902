package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes the configuration values that collaborators outside this
// package depend on. Tests substitute small fakes that embed the interface.
type Provider interface {
	GetAppBaseURL() string
	GetHTTPAddr() string
	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string
	GetVerifyDomain() string
	GetLocale() string
}

// Auth provider names accepted by AUTH_PROVIDER.
const (
	AuthProviderToolkit = "toolkit"
	AuthProviderSurreal = "surreal"
)

// Config holds all configuration for the application.
type Config struct {
	LogFormat string
	LogLevel  string
	Locale    string

	HTTPAddr   string
	AppBaseURL string

	AuthProvider     string
	IdentityAPIKey   string
	IdentityBaseURL  string
	IdentityTokenURL string

	VerifyDomain       string
	VerifyContinueURL  string
	VerifyPollInterval time.Duration

	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string

	JWTSecret string
	JWTExpiry time.Duration

	EmailProvider string
	EmailAPIKey   string
	EmailSender   string

	DataDir    string
	LibraryDir string

	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

// New loads configuration from a .env file (when present) and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	dataDir := getEnv("DATA_DIR", ".editorimages")

	cfg := &Config{
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Locale:    getEnv("LOCALE", "en"),

		HTTPAddr:   getEnv("HTTP_ADDR", ":3000"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),

		AuthProvider:     getEnv("AUTH_PROVIDER", AuthProviderToolkit),
		IdentityAPIKey:   os.Getenv("IDENTITY_API_KEY"),
		IdentityBaseURL:  getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		IdentityTokenURL: getEnv("IDENTITY_TOKEN_URL", "https://securetoken.googleapis.com/v1/token"),

		VerifyDomain:       getEnv("VERIFY_DOMAIN", "verifyeeditorimages.page.link"),
		VerifyContinueURL:  getEnv("VERIFY_CONTINUE_URL", "https://verifyeeditorimages.page.link"),
		VerifyPollInterval: getDuration("VERIFY_POLL_INTERVAL", 5*time.Second),

		DBUrl:  os.Getenv("SURREAL_URL"),
		DBUser: os.Getenv("SURREAL_USER"),
		DBPass: os.Getenv("SURREAL_PASS"),
		DBNs:   os.Getenv("SURREAL_NS"),
		DBDb:   os.Getenv("SURREAL_DB"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: getDuration("JWT_EXPIRY", time.Hour),

		EmailProvider: getEnv("EMAIL_PROVIDER", "log"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		EmailSender:   os.Getenv("EMAIL_SENDER"),

		DataDir:    dataDir,
		LibraryDir: getEnv("LIBRARY_DIR", filepath.Join(dataDir, "library")),

		TracingServiceName: getEnv("PUBSUB_TRACING_SERVICE_NAME", "editorimages"),
		TracingZipkinURL:   getEnv("PUBSUB_TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	if raw := os.Getenv("PUBSUB_TRACING_ENABLED"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.TracingEnabled = enabled
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthProvider {
	case AuthProviderToolkit:
		if c.IdentityAPIKey == "" {
			return fmt.Errorf("AUTH_PROVIDER is %q but IDENTITY_API_KEY is not set", c.AuthProvider)
		}
	case AuthProviderSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			return fmt.Errorf("AUTH_PROVIDER is %q but SURREAL_URL, SURREAL_NS or SURREAL_DB is not set", c.AuthProvider)
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("AUTH_PROVIDER is %q but JWT_SECRET is not set", c.AuthProvider)
		}
	default:
		return fmt.Errorf("unknown auth provider: %s", c.AuthProvider)
	}
	if c.VerifyPollInterval <= 0 {
		return fmt.Errorf("VERIFY_POLL_INTERVAL must be a positive duration")
	}
	return nil
}

func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetEmailProvider() string { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string   { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string   { return c.EmailSender }
func (c *Config) GetVerifyDomain() string  { return c.VerifyDomain }
func (c *Config) GetLocale() string        { return c.Locale }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a time.Duration, keeping the fallback for empty or
// malformed values.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
