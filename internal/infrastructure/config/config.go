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
	Event     EventConfig
	HTTP      HTTPConfig
	Authz     AuthzConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
	Profiler  ProfilerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
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

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EventConfig holds event publisher configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64 // Maximum request body size in bytes
	RateLimitEnabled  bool
	RateLimitRequests int           // Requests per window
	RateLimitWindow   time.Duration // Window duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// AuthzConfig holds Policy-Version Gate settings (spec §4.J).
type AuthzConfig struct {
	// Enforced, when true (the default), makes the gate reject with 503 when
	// the version store is unavailable. Operators may set this false for a
	// gradual rollout: the gate then logs and admits instead of rejecting.
	Enforced bool
	// AllowLegacyZeroVersions lets tokens with tenant_v == user_v == 0 bypass
	// the version check, for backward compatibility with pre-versioning tokens.
	AllowLegacyZeroVersions bool
	// VersionStoreTimeout is the hard deadline for a version-store round trip
	// before the gate treats it as unavailable.
	VersionStoreTimeout time.Duration
}

// CacheConfig holds Decision Cache settings (spec §4.K).
type CacheConfig struct {
	DecisionTTL time.Duration
}

// SchedulerConfig holds periodic background job intervals.
type SchedulerConfig struct {
	QuarantineSweepInterval    time.Duration
	LockExpirySweepInterval    time.Duration
	ReplenishmentCheckInterval time.Duration
}

// MetricsConfig holds OpenTelemetry metrics exporter settings and the
// interval at which BusinessMetrics polls gauge state (locked quantity,
// low-stock count) per tenant.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	Insecure          bool
	CollectInterval   time.Duration
}

// ProfilerConfig holds continuous-profiling settings, mirroring the subset of
// telemetry.ProfilerConfig's fields that are meaningful at the environment
// level (profile type toggles otherwise stay at the Pyroscope SDK defaults).
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
}

// Load loads configuration from environment variables (and an optional config
// file/APP_CONFIG_FILE), using viper for precedence and type coercion.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile := v.GetString("config_file"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app_name"),
			Env:  v.GetString("app_env"),
			Port: v.GetString("app_port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			DBName:          v.GetString("db_name"),
			SSLMode:         v.GetString("db_ssl_mode"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetInt("db_conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("db_conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetInt("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			Output: v.GetString("log_output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event_processor_enabled"),
			BatchSize:        v.GetInt("event_processor_batch_size"),
			PollInterval:     v.GetDuration("event_processor_interval"),
			MaxRetries:       v.GetInt("event_max_retries"),
			CleanupEnabled:   v.GetBool("event_cleanup_enabled"),
			CleanupRetention: v.GetDuration("event_cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http_read_timeout"),
			WriteTimeout:      v.GetDuration("http_write_timeout"),
			IdleTimeout:       v.GetDuration("http_idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http_max_header_bytes"),
			MaxBodySize:       v.GetInt64("http_max_body_size"),
			RateLimitEnabled:  v.GetBool("http_rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http_rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http_rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http_cors_origins"),
			CORSAllowMethods:  v.GetStringSlice("http_cors_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http_cors_headers"),
			TrustedProxies:    v.GetStringSlice("http_trusted_proxies"),
		},
		Authz: AuthzConfig{
			Enforced:                v.GetBool("authz_gate_enforced"),
			AllowLegacyZeroVersions: v.GetBool("authz_allow_legacy_zero_versions"),
			VersionStoreTimeout:     v.GetDuration("authz_version_store_timeout"),
		},
		Cache: CacheConfig{
			DecisionTTL: v.GetDuration("decision_cache_ttl"),
		},
		Scheduler: SchedulerConfig{
			QuarantineSweepInterval:    v.GetDuration("quarantine_sweep_interval"),
			LockExpirySweepInterval:    v.GetDuration("lock_expiry_sweep_interval"),
			ReplenishmentCheckInterval: v.GetDuration("replenishment_check_interval"),
		},
		Metrics: MetricsConfig{
			Enabled:           v.GetBool("metrics_enabled"),
			CollectorEndpoint: v.GetString("metrics_collector_endpoint"),
			ExportInterval:    v.GetDuration("metrics_export_interval"),
			Insecure:          v.GetBool("metrics_insecure"),
			CollectInterval:   v.GetDuration("metrics_collect_interval"),
		},
		Profiler: ProfilerConfig{
			Enabled:         v.GetBool("profiler_enabled"),
			ServerAddress:   v.GetString("profiler_server_address"),
			ApplicationName: v.GetString("profiler_application_name"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "stockledger")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", "8080")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "stockledger")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 60)
	v.SetDefault("db_conn_max_idle_time", 30)

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_output", "stdout")

	v.SetDefault("event_processor_enabled", true)
	v.SetDefault("event_processor_batch_size", 100)
	v.SetDefault("event_processor_interval", 5*time.Second)
	v.SetDefault("event_max_retries", 5)
	v.SetDefault("event_cleanup_enabled", true)
	v.SetDefault("event_cleanup_retention", 168*time.Hour)

	v.SetDefault("http_read_timeout", 15*time.Second)
	v.SetDefault("http_write_timeout", 15*time.Second)
	v.SetDefault("http_idle_timeout", 60*time.Second)
	v.SetDefault("http_max_header_bytes", 1<<20)
	v.SetDefault("http_max_body_size", 10<<20)
	v.SetDefault("http_rate_limit_enabled", true)
	v.SetDefault("http_rate_limit_requests", 100)
	v.SetDefault("http_rate_limit_window", time.Minute)
	v.SetDefault("http_cors_origins", []string{"*"})
	v.SetDefault("http_cors_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("http_cors_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("http_trusted_proxies", []string{})

	// Fail closed by default, per spec §4.J: the version store being down is
	// not, by itself, a reason to admit unverified requests.
	v.SetDefault("authz_gate_enforced", true)
	v.SetDefault("authz_allow_legacy_zero_versions", true)
	v.SetDefault("authz_version_store_timeout", 50*time.Millisecond)

	v.SetDefault("decision_cache_ttl", 15*time.Second)

	v.SetDefault("quarantine_sweep_interval", 24*time.Hour)
	v.SetDefault("lock_expiry_sweep_interval", time.Hour)
	v.SetDefault("replenishment_check_interval", time.Hour)

	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_collector_endpoint", "localhost:4317")
	v.SetDefault("metrics_export_interval", 60*time.Second)
	v.SetDefault("metrics_insecure", true)
	v.SetDefault("metrics_collect_interval", 5*time.Minute)

	v.SetDefault("profiler_enabled", false)
	v.SetDefault("profiler_server_address", "http://localhost:4040")
	v.SetDefault("profiler_application_name", "stockledger")
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("DB_SSL_MODE cannot be 'disable' in production")
		}
		if c.Authz.VersionStoreTimeout > 200*time.Millisecond {
			return fmt.Errorf("AUTHZ_VERSION_STORE_TIMEOUT is too lax for production (%s)", c.Authz.VersionStoreTimeout)
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
