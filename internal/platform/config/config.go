package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects which analyzer answers wizard tasks.
type Backend string

const (
	BackendMock   Backend = "mock"
	BackendRemote Backend = "remote"
)

// Config is the full runtime configuration for the gateway, the mock backend and the CLI.
type Config struct {
	Server    Server         `yaml:"server"`
	API       API            `yaml:"api"`
	Upload    Upload         `yaml:"upload"`
	Auth      Auth           `yaml:"auth"`
	Redis     RedisConfig    `yaml:"redis"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Backend   Backend        `yaml:"backend"`
	Mock      Mock           `yaml:"mock"`
	RateLimit RateLimit      `yaml:"rate_limit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	MockBackendAddr string        `yaml:"mock_backend_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// API configures the outbound client for the external analysis service.
type API struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	UploadTimeout time.Duration `yaml:"upload_timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

// Upload bounds what the wizard accepts before any network call is made.
type Upload struct {
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// Auth configures token issuance and the optional demo account.
type Auth struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	SeedDemoUser  bool          `yaml:"seed_demo_user"`
}

// RedisConfig enables Redis-backed user and session stores when URL is set.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PostgresConfig enables the Postgres user store when DSN is set.
type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RateLimit bounds requests per client IP on the /auth endpoints.
// A zero AuthRequests disables limiting. X-Forwarded-For and X-Real-IP are
// only believed when the peer address is in TrustedProxies (IPs or CIDRs).
type RateLimit struct {
	AuthRequests   int           `yaml:"auth_requests"`
	Window         time.Duration `yaml:"window"`
	TrustedProxies []string      `yaml:"trusted_proxies"`
}

// ProxyPrefixes parses TrustedProxies. A bare IP becomes a single-address prefix.
func (r RateLimit) ProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("rate_limit.trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("rate_limit.trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Mock tunes the in-repo mock analyzer.
type Mock struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// Default returns the configuration used when nothing is overridden.
// API values mirror the browser client this service replaces.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			MockBackendAddr: ":8000",
			ShutdownTimeout: 10 * time.Second,
			LogLevel:        "info",
		},
		API: API{
			BaseURL:       "http://localhost:8000",
			Timeout:       60 * time.Second,
			UploadTimeout: 30 * time.Second,
			MaxRetries:    3,
			RetryDelay:    2 * time.Second,
			BackoffFactor: 1.5,
		},
		Upload: Upload{
			MaxFileSize:       10 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".docx", ".txt", ".doc", ".rtf"},
		},
		Auth: Auth{
			// Use a default for development - should be overridden in production
			JWTSigningKey: "dev-secret-key-change-in-production",
			TokenTTL:      24 * time.Hour,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{MaxOpenConns: 10},
		Backend:  BackendMock,
		Mock: Mock{
			MinDelay: 500 * time.Millisecond,
			MaxDelay: 2 * time.Second,
		},
		RateLimit: RateLimit{
			AuthRequests: 20,
			Window:       time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH, default config.yaml) and DOCVERIFY_* environment variables,
// in that order of precedence.
func Load() (Config, error) {
	cfg := Default()

	path := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && os.Getenv("CONFIG_PATH") == "":
		// optional
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	if c.Backend != BackendMock && c.Backend != BackendRemote {
		return fmt.Errorf("invalid backend %q: must be %q or %q", c.Backend, BackendMock, BackendRemote)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must not be negative")
	}
	if c.API.BackoffFactor < 1 {
		return fmt.Errorf("api.backoff_factor must be >= 1")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("auth.jwt_signing_key is required")
	}
	if c.RateLimit.AuthRequests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive when rate limiting is enabled")
	}
	if _, err := c.RateLimit.ProxyPrefixes(); err != nil {
		return err
	}
	if c.Mock.MaxDelay < c.Mock.MinDelay {
		return fmt.Errorf("mock.max_delay must be >= mock.min_delay")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Addr, "DOCVERIFY_ADDR")
	setString(&cfg.Server.MockBackendAddr, "DOCVERIFY_MOCK_BACKEND_ADDR")
	setString(&cfg.Server.LogLevel, "DOCVERIFY_LOG_LEVEL")
	setString(&cfg.API.BaseURL, "DOCVERIFY_API_BASE_URL")
	setString(&cfg.Auth.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")

	if v := os.Getenv("DOCVERIFY_BACKEND"); v != "" {
		cfg.Backend = Backend(strings.ToLower(v))
	}
	if v := os.Getenv("DOCVERIFY_ALLOWED_EXTENSIONS"); v != "" {
		cfg.Upload.AllowedExtensions = splitList(v)
	}
	if v := os.Getenv("DOCVERIFY_TRUSTED_PROXIES"); v != "" {
		cfg.RateLimit.TrustedProxies = splitList(v)
	}

	durations := map[string]*time.Duration{
		"DOCVERIFY_API_TIMEOUT":        &cfg.API.Timeout,
		"DOCVERIFY_API_UPLOAD_TIMEOUT": &cfg.API.UploadTimeout,
		"DOCVERIFY_API_RETRY_DELAY":    &cfg.API.RetryDelay,
		"DOCVERIFY_TOKEN_TTL":          &cfg.Auth.TokenTTL,
		"DOCVERIFY_SHUTDOWN_TIMEOUT":   &cfg.Server.ShutdownTimeout,
		"DOCVERIFY_MOCK_MIN_DELAY":     &cfg.Mock.MinDelay,
		"DOCVERIFY_MOCK_MAX_DELAY":     &cfg.Mock.MaxDelay,
		"DOCVERIFY_RATE_LIMIT_WINDOW":  &cfg.RateLimit.Window,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("DOCVERIFY_API_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCVERIFY_API_MAX_RETRIES: %w", err)
		}
		cfg.API.MaxRetries = n
	}
	if v := os.Getenv("DOCVERIFY_API_BACKOFF_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DOCVERIFY_API_BACKOFF_FACTOR: %w", err)
		}
		cfg.API.BackoffFactor = f
	}
	if v := os.Getenv("DOCVERIFY_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("DOCVERIFY_MAX_FILE_SIZE: %w", err)
		}
		cfg.Upload.MaxFileSize = n
	}
	if v := os.Getenv("DOCVERIFY_RATE_LIMIT_AUTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCVERIFY_RATE_LIMIT_AUTH: %w", err)
		}
		cfg.RateLimit.AuthRequests = n
	}
	if v := os.Getenv("DOCVERIFY_SEED_DEMO_USER"); v != "" {
		cfg.Auth.SeedDemoUser = v == "true"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
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
