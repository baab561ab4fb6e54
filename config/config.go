package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

const envPrefix = "OPENSHELF"

// Storage engines.
const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

// PostgreSQL connection adapters.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"
)

// Audit sinks.
const (
	AuditSinkNone     = "none"
	AuditSinkLog      = "log"
	AuditSinkPostgres = "postgres"
)

var (
	// ErrReadingConfigFailed is returned when the YAML file cannot be read or parsed.
	ErrReadingConfigFailed = errors.New("reading config file failed")

	// ErrDecodingConfigFailed is returned when a value has the wrong type, e.g. a malformed duration.
	ErrDecodingConfigFailed = errors.New("decoding config failed")

	// ErrInvalidConfig is returned when validation fails. The validator's errors are joined to it.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Config is the complete circulationd configuration.
	Config struct {
		Storage       Storage       `mapstructure:"storage"`
		Retry         Retry         `mapstructure:"retry"`
		Policy        Policy        `mapstructure:"policy"`
		Dispatch      Dispatch      `mapstructure:"dispatch"`
		Sweeper       Sweeper       `mapstructure:"sweeper"`
		Notifications Notifications `mapstructure:"notifications"`
		Audit         Audit         `mapstructure:"audit"`
		Log           Log           `mapstructure:"log"`
		Telemetry     Telemetry     `mapstructure:"telemetry"`
		Shutdown      time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	}

	Storage struct {
		Engine          string        `mapstructure:"engine" validate:"oneof=memory postgres"`
		Adapter         string        `mapstructure:"adapter" validate:"oneof=pgx.pool sql.db sqlx.db"`
		PostgresDSN     string        `mapstructure:"postgres_dsn" validate:"required_if=Engine postgres"`
		ReplicaDSN      string        `mapstructure:"replica_dsn"`
		TableName       string        `mapstructure:"table_name" validate:"required"`
		CreateSchema    bool          `mapstructure:"create_schema"`
		MaxConns        int           `mapstructure:"max_conns" validate:"min=1"`
		MinConns        int           `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
		MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" validate:"gt=0"`
		MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time" validate:"gt=0"`
		ConnectTimeout  time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	}

	Retry struct {
		MaxAttempts  int           `mapstructure:"max_attempts" validate:"min=1"`
		BaseDelay    time.Duration `mapstructure:"base_delay" validate:"gt=0"`
		JitterFactor float64       `mapstructure:"jitter_factor" validate:"gte=0,lte=1"`
	}

	// Policy overrides the house rules. Fees are decimal strings.
	Policy struct {
		LoanPeriod       time.Duration `mapstructure:"loan_period" validate:"gt=0"`
		HoldPickupPeriod time.Duration `mapstructure:"hold_pickup_period" validate:"gt=0"`
		LateFeePerDay    string        `mapstructure:"late_fee_per_day" validate:"numeric"`
		LateFeeCap       string        `mapstructure:"late_fee_cap" validate:"numeric"`
	}

	Dispatch struct {
		QueueSize int `mapstructure:"queue_size" validate:"min=1"`
		Workers   int `mapstructure:"workers" validate:"min=1"`
	}

	Sweeper struct {
		Enabled    bool          `mapstructure:"enabled"`
		Schedule   string        `mapstructure:"schedule" validate:"required_if=Enabled true"`
		LockKey    string        `mapstructure:"lock_key"`
		LockTTL    time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
		RunTimeout time.Duration `mapstructure:"run_timeout" validate:"gte=0"`
	}

	// Notifications go to Redis when RedisAddr is set, through the outbox when OutboxPath is set.
	Notifications struct {
		RedisAddr     string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
		Channel       string `mapstructure:"channel" validate:"required"`
		OutboxPath    string `mapstructure:"outbox_path"`
		OutboxWorkers int    `mapstructure:"outbox_workers" validate:"min=1"`
	}

	Audit struct {
		Sink      string `mapstructure:"sink" validate:"oneof=none log postgres"`
		TableName string `mapstructure:"table_name" validate:"required"`
	}

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
		Format string `mapstructure:"format" validate:"oneof=json text"`
	}

	Telemetry struct {
		Enabled        bool   `mapstructure:"enabled"`
		ServiceName    string `mapstructure:"service_name" validate:"required"`
		MetricsPrefix  string `mapstructure:"metrics_prefix"`
		ServiceVersion string `mapstructure:"service_version"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("storage.engine", EngineMemory)
	v.SetDefault("storage.adapter", AdapterPGXPool)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.replica_dsn", "")
	v.SetDefault("storage.table_name", "events")
	v.SetDefault("storage.create_schema", false)
	v.SetDefault("storage.max_conns", 8)
	v.SetDefault("storage.min_conns", 2)
	v.SetDefault("storage.max_conn_lifetime", "1h")
	v.SetDefault("storage.max_conn_idle_time", "5m")
	v.SetDefault("storage.connect_timeout", "5s")

	v.SetDefault("retry.max_attempts", 6)
	v.SetDefault("retry.base_delay", "10ms")
	v.SetDefault("retry.jitter_factor", 0.3)

	rules := policy.Default()
	v.SetDefault("policy.loan_period", rules.LoanPeriod.String())
	v.SetDefault("policy.hold_pickup_period", rules.HoldPickupPeriod.String())
	v.SetDefault("policy.late_fee_per_day", rules.LateFeePerDay.String())
	v.SetDefault("policy.late_fee_cap", rules.LateFeeCap.String())

	v.SetDefault("dispatch.queue_size", 1024)
	v.SetDefault("dispatch.workers", 2)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.schedule", "*/5 * * * *")
	v.SetDefault("sweeper.lock_key", "openshelf:lock:hold-sweep")
	v.SetDefault("sweeper.lock_ttl", "4m")
	v.SetDefault("sweeper.run_timeout", "3m")

	v.SetDefault("notifications.redis_addr", "")
	v.SetDefault("notifications.channel", "openshelf:notifications")
	v.SetDefault("notifications.outbox_path", "")
	v.SetDefault("notifications.outbox_workers", 2)

	v.SetDefault("audit.sink", AuditSinkLog)
	v.SetDefault("audit.table_name", "circulation_audit")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "circulationd")
	v.SetDefault("telemetry.metrics_prefix", "openshelf")
	v.SetDefault("telemetry.service_version", "dev")
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// short forms
	_ = v.BindEnv("storage.postgres_dsn", envPrefix+"_STORAGE_POSTGRES_DSN", envPrefix+"_POSTGRES_DSN")
	_ = v.BindEnv("notifications.redis_addr", envPrefix+"_NOTIFICATIONS_REDIS_ADDR", envPrefix+"_REDIS_ADDR")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Join(ErrDecodingConfigFailed, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags and the policy rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if _, err := c.PolicyRules(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// PolicyRules returns the configured policy.
func (c *Config) PolicyRules() (policy.Policy, error) {
	perDay, err := decimal.NewFromString(c.Policy.LateFeePerDay)
	if err != nil {
		return policy.Policy{}, err
	}

	feeCap, err := decimal.NewFromString(c.Policy.LateFeeCap)
	if err != nil {
		return policy.Policy{}, err
	}

	rules := policy.Policy{
		LoanPeriod:       c.Policy.LoanPeriod,
		HoldPickupPeriod: c.Policy.HoldPickupPeriod,
		LateFeePerDay:    perDay,
		LateFeeCap:       feeCap,
	}

	return rules, rules.Validate()
}

// RetryOptions returns the command retry settings.
func (c *Config) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.Retry.MaxAttempts),
		shell.WithBaseDelay(c.Retry.BaseDelay),
		shell.WithJitterFactor(c.Retry.JitterFactor),
	}
}

// SlogLevel maps Log.Level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
