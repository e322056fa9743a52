package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
	Storage   StorageConfig
	Assistant AssistantConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
	Receipt   ReceiptConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs with production guards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. When disabled the rate
// limiter keeps its counters in process memory.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	SessionCookie    string
	SecureCookies    bool
	IdempotencyTTL   time.Duration // how long a checkout Idempotency-Key is held
}

// JWTConfig holds settings for admin access tokens
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
	Audience              string
}

// AdminConfig holds the single shop-owner credential
type AdminConfig struct {
	PasswordHash string // bcrypt
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration

	ProfilingEnabled bool
	PyroscopeAddress string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// ProviderConfig configures one OpenAI-compatible text provider
type ProviderConfig struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	Model    string
	Priority int
	Timeout  time.Duration
}

// ImageConfig configures the image generation provider
type ImageConfig struct {
	Enabled bool
	BaseURL string
	Width   int
	Height  int
	Timeout time.Duration
}

// AssistantConfig holds the AI provider chain settings
type AssistantConfig struct {
	MaxTokens       int
	Temperature     float64
	Recommendations int
	Pollinations    ProviderConfig
	HuggingFace     ProviderConfig
	IONet           ProviderConfig
	Anthropic       ProviderConfig
	Image           ImageConfig
}

// RateLimitConfig holds the fixed-window limiter settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	AssistantDaily    int
}

// SchedulerConfig holds background maintenance job settings
type SchedulerConfig struct {
	Enabled           bool
	CheckInterval     time.Duration
	RunHour           int // 0-23, local time
	JobTimeout        time.Duration
	CartTTL           time.Duration
	ContactArchiveAge time.Duration
}

// ReceiptConfig holds the PDF receipt renderer settings
type ReceiptConfig struct {
	PDFEnabled bool
	RemoteURL  string // optional DevTools websocket of a remote Chrome
	Timeout    time.Duration
	ShopName   string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TROVES_ prefix (e.g., TROVES_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TROVES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			SessionCookie:    v.GetString("http.session_cookie"),
			SecureCookies:    v.GetBool("http.secure_cookies"),
			IdempotencyTTL:   v.GetDuration("http.idempotency_ttl"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
			Audience:              v.GetString("jwt.audience"),
		},
		Admin: AdminConfig{
			PasswordHash: v.GetString("admin.password_hash"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Assistant: AssistantConfig{
			MaxTokens:       v.GetInt("assistant.max_tokens"),
			Temperature:     v.GetFloat64("assistant.temperature"),
			Recommendations: v.GetInt("assistant.recommendations"),
			Pollinations:    loadProvider(v, "assistant.pollinations"),
			HuggingFace:     loadProvider(v, "assistant.huggingface"),
			IONet:           loadProvider(v, "assistant.ionet"),
			Anthropic:       loadProvider(v, "assistant.anthropic"),
			Image: ImageConfig{
				Enabled: v.GetBool("assistant.image.enabled"),
				BaseURL: v.GetString("assistant.image.base_url"),
				Width:   v.GetInt("assistant.image.width"),
				Height:  v.GetInt("assistant.image.height"),
				Timeout: v.GetDuration("assistant.image.timeout"),
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("ratelimit.enabled"),
			RequestsPerMinute: v.GetInt("ratelimit.requests_per_minute"),
			AssistantDaily:    v.GetInt("ratelimit.assistant_daily"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			CheckInterval:     v.GetDuration("scheduler.check_interval"),
			RunHour:           v.GetInt("scheduler.run_hour"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
			CartTTL:           v.GetDuration("scheduler.cart_ttl"),
			ContactArchiveAge: v.GetDuration("scheduler.contact_archive_age"),
		},
		Receipt: ReceiptConfig{
			PDFEnabled: v.GetBool("receipt.pdf_enabled"),
			RemoteURL:  v.GetString("receipt.remote_url"),
			Timeout:    v.GetDuration("receipt.timeout"),
			ShopName:   v.GetString("receipt.shop_name"),
		},
	}

	// Booleans that default to true cannot be detected as unset after
	// GetBool, so they are resolved here against IsSet.
	if !v.IsSet("ratelimit.enabled") {
		cfg.RateLimit.Enabled = true
	}
	if !v.IsSet("scheduler.enabled") {
		cfg.Scheduler.Enabled = true
	}
	if !v.IsSet("assistant.pollinations.enabled") {
		cfg.Assistant.Pollinations.Enabled = true
	}
	if !v.IsSet("assistant.image.enabled") {
		cfg.Assistant.Image.Enabled = true
	}
	if !v.IsSet("scheduler.run_hour") {
		cfg.Scheduler.RunHour = 3
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Enabled:  v.GetBool(prefix + ".enabled"),
		BaseURL:  v.GetString(prefix + ".base_url"),
		APIKey:   v.GetString(prefix + ".api_key"),
		Model:    v.GetString(prefix + ".model"),
		Priority: v.GetInt(prefix + ".priority"),
		Timeout:  v.GetDuration(prefix + ".timeout"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "troves-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "troves"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// assistant calls can walk the whole provider chain
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Session-ID", "Idempotency-Key"}
	}
	if cfg.HTTP.SessionCookie == "" {
		cfg.HTTP.SessionCookie = "session_id"
	}
	if cfg.HTTP.IdempotencyTTL == 0 {
		cfg.HTTP.IdempotencyTTL = 24 * time.Hour
	}

	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "troves-backend"
	}
	if cfg.JWT.Audience == "" {
		cfg.JWT.Audience = "troves-admin"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeAddress == "" {
		cfg.Telemetry.PyroscopeAddress = "http://localhost:4040"
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "troves"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	applyAssistantDefaults(&cfg.Assistant)

	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 120
	}
	if cfg.RateLimit.AssistantDaily == 0 {
		cfg.RateLimit.AssistantDaily = 50
	}

	if cfg.Scheduler.CheckInterval == 0 {
		cfg.Scheduler.CheckInterval = 15 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.CartTTL == 0 {
		cfg.Scheduler.CartTTL = 72 * time.Hour
	}
	if cfg.Scheduler.ContactArchiveAge == 0 {
		cfg.Scheduler.ContactArchiveAge = 90 * 24 * time.Hour
	}

	if cfg.Receipt.Timeout == 0 {
		cfg.Receipt.Timeout = 20 * time.Second
	}
	if cfg.Receipt.ShopName == "" {
		cfg.Receipt.ShopName = "Troves & Coves"
	}
}

func applyAssistantDefaults(a *AssistantConfig) {
	if a.MaxTokens == 0 {
		a.MaxTokens = 400
	}
	if a.Temperature == 0 {
		a.Temperature = 0.7
	}
	if a.Recommendations == 0 {
		a.Recommendations = 4
	}

	providerDefaults := []struct {
		p        *ProviderConfig
		baseURL  string
		model    string
		priority int
	}{
		{&a.Pollinations, "https://text.pollinations.ai/openai", "openai", 1},
		{&a.HuggingFace, "https://router.huggingface.co/v1", "meta-llama/Llama-3.1-8B-Instruct", 2},
		{&a.IONet, "https://api.intelligence.io.solutions/api/v1", "meta-llama/Llama-3.3-70B-Instruct", 3},
		{&a.Anthropic, "https://api.anthropic.com/v1/", "claude-3-5-haiku-latest", 4},
	}
	for _, d := range providerDefaults {
		if d.p.BaseURL == "" {
			d.p.BaseURL = d.baseURL
		}
		if d.p.Model == "" {
			d.p.Model = d.model
		}
		if d.p.Priority == 0 {
			d.p.Priority = d.priority
		}
		if d.p.Timeout == 0 {
			d.p.Timeout = 20 * time.Second
		}
	}

	if a.Image.BaseURL == "" {
		a.Image.BaseURL = "https://image.pollinations.ai"
	}
	if a.Image.Width == 0 {
		a.Image.Width = 1024
	}
	if a.Image.Height == 0 {
		a.Image.Height = 1024
	}
	if a.Image.Timeout == 0 {
		a.Image.Timeout = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Scheduler.RunHour < 0 || c.Scheduler.RunHour > 23 {
		return fmt.Errorf("scheduler.run_hour must be between 0 and 23, got %d", c.Scheduler.RunHour)
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.AssistantDaily < 0 {
		return fmt.Errorf("ratelimit limits cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.password_hash is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if len(c.HTTP.CORSAllowOrigins) == 0 {
			return fmt.Errorf("http.cors_allow_origins must be set in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
