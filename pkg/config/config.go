package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Events       EventsConfig
	Catalog      CatalogConfig
	MercadoPago  MercadoPagoConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMICVERSE_APP_ENV" required:"true"`
	Port         string `envconfig:"COMICVERSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMICVERSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMICVERSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COMICVERSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COMICVERSE_DB_DSN"`
	Driver string `envconfig:"COMICVERSE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COMICVERSE_DB_HOST"`
	Port     int    `envconfig:"COMICVERSE_DB_PORT" default:"5432"`
	User     string `envconfig:"COMICVERSE_DB_USER"`
	Password string `envconfig:"COMICVERSE_DB_PASSWORD"`
	Name     string `envconfig:"COMICVERSE_DB_NAME"`
	SSLMode  string `envconfig:"COMICVERSE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"COMICVERSE_DB_SQLITE_PATH" default:"comicverse.db"`

	MaxOpenConns    int           `envconfig:"COMICVERSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMICVERSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMICVERSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMICVERSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded SQLite driver is selected.
func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

func (d *DBConfig) ensureDSN() error {
	if d.IsSQLite() {
		if d.DSN == "" {
			d.DSN = d.SQLitePath
		}
		return nil
	}
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db dsn or host/user/name must be provided")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"COMICVERSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COMICVERSE_REDIS_ADDR"`
	Password     string        `envconfig:"COMICVERSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMICVERSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMICVERSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMICVERSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMICVERSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMICVERSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMICVERSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"COMICVERSE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"COMICVERSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"COMICVERSE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"COMICVERSE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COMICVERSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COMICVERSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COMICVERSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COMICVERSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COMICVERSE_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	ShippingFeeCents  int           `envconfig:"COMICVERSE_CHECKOUT_SHIPPING_FEE_CENTS" default:"3000"`
	AttemptLockTTL    time.Duration `envconfig:"COMICVERSE_CHECKOUT_ATTEMPT_LOCK_TTL" default:"45s"`
	PreferenceTimeout time.Duration `envconfig:"COMICVERSE_CHECKOUT_PREFERENCE_TIMEOUT" default:"30s"`
	DeepLinkScheme    string        `envconfig:"COMICVERSE_CHECKOUT_DEEP_LINK_SCHEME" default:"comicverse"`
}

type EventsConfig struct {
	QueueTTL time.Duration `envconfig:"COMICVERSE_EVENTS_QUEUE_TTL" default:"24h"`
}

type CatalogConfig struct {
	Source        string        `envconfig:"COMICVERSE_CATALOG_SOURCE" default:"local"`
	RemoteBaseURL string        `envconfig:"COMICVERSE_CATALOG_REMOTE_BASE_URL"`
	RemoteAPIKey  string        `envconfig:"COMICVERSE_CATALOG_REMOTE_API_KEY"`
	RemoteTimeout time.Duration `envconfig:"COMICVERSE_CATALOG_REMOTE_TIMEOUT" default:"10s"`
}

// UsesRemoteSource reports whether catalog reads go to the remote REST backend.
func (c CatalogConfig) UsesRemoteSource() bool {
	return strings.EqualFold(c.Source, "remote")
}

type MercadoPagoConfig struct {
	BaseURL        string        `envconfig:"COMICVERSE_MP_BASE_URL" default:"https://api.mercadopago.com"`
	AccessToken    string        `envconfig:"COMICVERSE_MP_ACCESS_TOKEN"`
	CurrencyID     string        `envconfig:"COMICVERSE_MP_CURRENCY_ID" default:"CLP"`
	RequestTimeout time.Duration `envconfig:"COMICVERSE_MP_REQUEST_TIMEOUT" default:"30s"`
	SuccessURL     string        `envconfig:"COMICVERSE_MP_BACK_URL_SUCCESS"`
	FailureURL     string        `envconfig:"COMICVERSE_MP_BACK_URL_FAILURE"`
	PendingURL     string        `envconfig:"COMICVERSE_MP_BACK_URL_PENDING"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"COMICVERSE_AUTO_MIGRATE" default:"false"`
	EphemeralCart bool `envconfig:"COMICVERSE_EPHEMERAL_CART" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COMICVERSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"COMICVERSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COMICVERSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"COMICVERSE_PUBSUB_ORDERS_TOPIC" default:"cv-order-events"`
	OrdersSubscription string `envconfig:"COMICVERSE_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COMICVERSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COMICVERSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COMICVERSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
