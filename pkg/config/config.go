package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	OrderPolicy  OrderPolicyConfig
	Coupon       CouponConfig
	OTP          OTPConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if cfg.OrderPolicy.CODMaxAmount < 0 {
		return nil, fmt.Errorf("%s must not be negative", EnvCODMaxAmount)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CELLSPHERE_APP_ENV" required:"true"`
	Port         string `envconfig:"CELLSPHERE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CELLSPHERE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CELLSPHERE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CELLSPHERE_LOG_FORMAT" default:"json"`
	// MetricsAddr enables a scrape endpoint on background workers, e.g. ":9090".
	MetricsAddr string `envconfig:"CELLSPHERE_METRICS_ADDR"`
	// CORSOrigins is comma separated; empty keeps the built-in storefront origins.
	CORSOrigins []string `envconfig:"CELLSPHERE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"CELLSPHERE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CELLSPHERE_DB_DSN"`
	Driver string `envconfig:"CELLSPHERE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CELLSPHERE_DB_HOST"`
	LegacyPort     int    `envconfig:"CELLSPHERE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CELLSPHERE_DB_USER"`
	LegacyPassword string `envconfig:"CELLSPHERE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CELLSPHERE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CELLSPHERE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CELLSPHERE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CELLSPHERE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CELLSPHERE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CELLSPHERE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"CELLSPHERE_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CELLSPHERE_REDIS_URL"`
	Address      string        `envconfig:"CELLSPHERE_REDIS_ADDR"`
	Password     string        `envconfig:"CELLSPHERE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CELLSPHERE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CELLSPHERE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CELLSPHERE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CELLSPHERE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CELLSPHERE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CELLSPHERE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CELLSPHERE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CELLSPHERE_JWT_ISSUER" default:"cellsphere"`
	ExpirationMinutes int    `envconfig:"CELLSPHERE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PasswordConfig tunes the argon2id parameters used for stored one-time passcodes.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CELLSPHERE_ARGON_MEMORY_KB" default:"19456"`
	ArgonTime        int `envconfig:"CELLSPHERE_ARGON_TIME" default:"2"`
	ArgonParallelism int `envconfig:"CELLSPHERE_ARGON_PARALLELISM" default:"1"`
	ArgonSaltLen     int `envconfig:"CELLSPHERE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CELLSPHERE_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CELLSPHERE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CELLSPHERE_AUTO_MIGRATE" default:"false"`
}

// OrderPolicyConfig carries the business-policy switches for order placement,
// cancellation and returns.
type OrderPolicyConfig struct {
	// WalletCheckFirst debits the wallet before any stock is committed.
	WalletCheckFirst bool `envconfig:"CELLSPHERE_ORDER_WALLET_CHECK_FIRST" default:"true"`
	// SalesStatusBySKU patches sales delivery status per (order, sku) instead of (order, product).
	SalesStatusBySKU bool `envconfig:"CELLSPHERE_ORDER_SALES_STATUS_BY_SKU" default:"false"`
	// CODMaxAmount is the largest discounted total accepted for cash on delivery. Zero disables the ceiling.
	CODMaxAmount         int64 `envconfig:"CELLSPHERE_ORDER_COD_MAX_AMOUNT" default:"15000"`
	AllowCancelDelivered bool  `envconfig:"CELLSPHERE_ORDER_ALLOW_CANCEL_DELIVERED" default:"true"`
	RefundCOD            bool  `envconfig:"CELLSPHERE_ORDER_REFUND_COD" default:"false"`
	ReturnWindowDays     int   `envconfig:"CELLSPHERE_ORDER_RETURN_WINDOW_DAYS" default:"7"`
	DeliveryDays         int   `envconfig:"CELLSPHERE_ORDER_DELIVERY_DAYS" default:"7"`
}

// CODCeiling returns the cash-on-delivery ceiling as a decimal.
func (o OrderPolicyConfig) CODCeiling() decimal.Decimal {
	return decimal.NewFromInt(o.CODMaxAmount)
}

// ReturnWindow returns the return eligibility window. Zero means unlimited.
func (o OrderPolicyConfig) ReturnWindow() time.Duration {
	if o.ReturnWindowDays <= 0 {
		return 0
	}
	return time.Duration(o.ReturnWindowDays) * 24 * time.Hour
}

// DefaultOrderPolicy mirrors the envconfig defaults for callers that build services without env.
func DefaultOrderPolicy() OrderPolicyConfig {
	return OrderPolicyConfig{
		WalletCheckFirst:     true,
		CODMaxAmount:         15000,
		AllowCancelDelivered: true,
		ReturnWindowDays:     7,
		DeliveryDays:         7,
	}
}

type CouponConfig struct {
	ClampFixedToAmount bool          `envconfig:"CELLSPHERE_COUPON_CLAMP_FIXED_TO_AMOUNT" default:"false"`
	PreviewRateLimit   int           `envconfig:"CELLSPHERE_COUPON_PREVIEW_RATE_LIMIT" default:"30"`
	PreviewRateWindow  time.Duration `envconfig:"CELLSPHERE_COUPON_PREVIEW_RATE_WINDOW" default:"1m"`
}

type OTPConfig struct {
	TTL time.Duration `envconfig:"CELLSPHERE_OTP_TTL" default:"60s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CELLSPHERE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"CELLSPHERE_PUBSUB_ORDERS_TOPIC" default:"cs-order-events"`
	LedgerTopic        string `envconfig:"CELLSPHERE_PUBSUB_LEDGER_TOPIC" default:"cs-ledger-events"`
	OrdersSubscription string `envconfig:"CELLSPHERE_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"CELLSPHERE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"CELLSPHERE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"CELLSPHERE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"CELLSPHERE_OUTBOX_RETENTION" default:"168h"`
	DLQRetention   time.Duration `envconfig:"CELLSPHERE_OUTBOX_DLQ_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CELLSPHERE_CRON_INTERVAL" default:"1m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:cellsphere.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
