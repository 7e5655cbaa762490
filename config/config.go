package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-jwt-secret-change-me"

// Config holds application configuration loaded from environment variables.
// Defaults target local development.
type Config struct {
	AppName    string
	Env        string // development, test, production
	Host       string
	Port       string
	GinMode    string
	BackendURL string
	// FrontendURL is where OAuth callbacks redirect after login.
	FrontendURL string

	// Database
	DatabaseURL   string // overrides the DB_* parts when set
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis (rate limiting)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitEnabled bool

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// JWT
	JWTSecret           string
	JWTExpiresIn        time.Duration
	JWTCookieExpireDays int

	// Cookies
	CookieDomain string

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	BcryptCost int

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated; empty disables profile search
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESProfilesIndex    string

	// Organization/links for emails
	OrganizationName string
	LogoURL          string
	SupportURL       string
	MailGeoLookup    bool

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Email sending toggle
	MailSendEnabled bool

	// Debug metrics (/api/v1/debug/vars and /api/v1/debug/metrics)
	DebugMetricsEnabled bool

	// HTTP access log toggle
	HTTPLogEnabled bool

	// WaitlistAdminKey guards GET /api/v1/waitlist; empty leaves the route unregistered.
	WaitlistAdminKey string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName:     getenv("APP_NAME", "abio-api"),
		Env:         getenv("APP_ENV", "development"),
		Host:        getenv("HOST", "0.0.0.0"),
		Port:        getenv("PORT", "8080"),
		GinMode:     getenv("GIN_MODE", "release"),
		BackendURL:  getenv("BACKEND_URL", "http://localhost:8080"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "abio"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", true),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		JWTSecret:           getenv("JWT_SECRET", devJWTSecret),
		JWTExpiresIn:        getdur("JWT_EXPIRES_IN", 90*24*time.Hour),
		JWTCookieExpireDays: getint("JWT_COOKIE_EXPIRES_IN_DAYS", 1),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		BcryptCost: getint("BCRYPT_COST", 12),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESProfilesIndex:    getenv("ES_PROFILES_INDEX", "profiles"),

		OrganizationName: getenv("ORGANIZATION_NAME", "Abio"),
		LogoURL:          getenv("LOGO_URL", ""),
		SupportURL:       getenv("SUPPORT_URL", ""),
		MailGeoLookup:    getbool("MAIL_GEO_LOOKUP", false),

		GoogleClientID:     getenv("GOOGLE_OAUTH_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_OAUTH_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getenv("GOOGLE_OAUTH_CALLBACK_URL", "http://localhost:8080/api/v1/auth/google/callback"),

		// Email sending toggle; when false mails are only logged
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),

		WaitlistAdminKey: getenv("WAITLIST_ADMIN_KEY", ""),
	}
}

// IsProduction reports whether the app runs with production cookie and logging settings.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 bytes in production")
		}
	}
	if c.BcryptCost < 10 {
		return errors.New("BCRYPT_COST must be at least 10")
	}
	if c.WaitlistAdminKey != "" && len(c.WaitlistAdminKey) < 24 {
		return errors.New("WAITLIST_ADMIN_KEY must be at least 24 bytes")
	}
	if c.JWTCookieExpireDays <= 0 {
		return errors.New("JWT_COOKIE_EXPIRES_IN_DAYS must be positive")
	}
	return nil
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return c.Host + ":" + c.Port }

// CookieTTL is the lifetime of the session cookies.
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.JWTCookieExpireDays) * 24 * time.Hour
}

// GoogleOAuthEnabled reports whether federated login is configured.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
