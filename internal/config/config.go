// Package config loads the process configuration from the environment.
// Values are read once at startup; there is no reload.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DefaultSkipPaths are served without the API key.
const DefaultSkipPaths = "/healthz,/metrics"

// Config is the full process configuration.
type Config struct {
	Environment       string `env:"APP_ENV"`
	LegacyEnvironment string `env:"NODE_ENV"`
	Store             string `env:"STORE,default=postgres"`

	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Reporter  ReporterConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT,default=3000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig describes the PostgreSQL connection. URL wins over the
// discrete fields when set.
type DatabaseConfig struct {
	URL      string `env:"DB_URL"`
	Host     string `env:"DB_HOST,default=localhost"`
	Port     int    `env:"DB_PORT,default=5432"`
	User     string `env:"DB_USER,default=default_user"`
	Password string `env:"DB_PASS,default=password"`
	Name     string `env:"DB_NAME,default=default_db"`
	SSLMode  string `env:"DB_SSLMODE"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME,default=30s"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME"`
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`

	PingInterval    time.Duration `env:"DB_PING_INTERVAL,default=15s"`
	MaxPingFailures int           `env:"DB_MAX_PING_FAILURES,default=3"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE,default=true"`

	// RequireTLS is derived from the environment, not read directly.
	RequireTLS bool
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	timeout := strconv.Itoa(int(d.ConnectTimeout / time.Second))
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil || u.Scheme == "" {
			// key=value form; pass through untouched.
			return d.URL
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", "require")
		}
		if q.Get("connect_timeout") == "" && d.ConnectTimeout > 0 {
			q.Set("connect_timeout", timeout)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
		if d.RequireTLS {
			sslmode = "require"
		}
	}
	q := url.Values{}
	q.Set("sslmode", sslmode)
	if d.ConnectTimeout > 0 {
		q.Set("connect_timeout", timeout)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// AuthConfig holds the shared secret every request must present.
type AuthConfig struct {
	APIKey    string `env:"API_KEY"`
	Header    string `env:"API_KEY_HEADER,default=X-API-Key"`
	// SkipPaths is comma separated. envdecode splits tags on commas, so the
	// default lives in normalize.
	SkipPaths string `env:"API_KEY_SKIP_PATHS"`
}

// SkipPathList splits SkipPaths on commas.
func (a AuthConfig) SkipPathList() []string {
	return splitCSV(a.SkipPaths)
}

// LoggingConfig configures pkg/logger.
type LoggingConfig struct {
	Level    string `env:"LOG_LEVEL,default=info"`
	Format   string `env:"LOG_FORMAT,default=text"`
	Output   string `env:"LOG_OUTPUT,default=stdout"`
	FilePath string `env:"LOG_FILE_PATH,default=logs/app.log"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

// Origins splits AllowedOrigins on commas.
func (c CORSConfig) Origins() []string {
	return splitCSV(c.AllowedOrigins)
}

// RateLimitConfig bounds requests per client address. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   int `env:"RATE_LIMIT_RPS,default=50"`
	Burst int `env:"RATE_LIMIT_BURST,default=100"`
}

// ReporterConfig schedules the pending-returns report.
type ReporterConfig struct {
	Schedule string `env:"OVERDUE_REPORT_SCHEDULE,default=@hourly"`
}

// Load reads an optional .env file, decodes the environment and validates
// the result.
func Load() (*Config, error) {
	cfg, err := Decode()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode is Load without Validate. Maintenance commands that never serve
// HTTP use it so they do not need API_KEY.
func Decode() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// IsProduction reports whether APP_ENV (or NODE_ENV) is "production".
func (c *Config) IsProduction() bool {
	env := c.Environment
	if env == "" {
		env = c.LegacyEnvironment
	}
	return strings.EqualFold(strings.TrimSpace(env), "production")
}

// Validate checks the invariants the runtime relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.APIKey) == "" {
		return errors.New("API_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Server.Port)
	}
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return errors.New("database pool sizes must not be negative")
	}
	return nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = StorePostgres
	}
	c.Database.RequireTLS = c.IsProduction()
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns && c.Database.MaxOpenConns > 0 {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	if strings.TrimSpace(c.Auth.Header) == "" {
		c.Auth.Header = "X-API-Key"
	}
	if strings.TrimSpace(c.Auth.SkipPaths) == "" {
		c.Auth.SkipPaths = DefaultSkipPaths
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
