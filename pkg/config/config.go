package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "bookstore"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "BOOKSTORE_APP_ENV"
	EnvPort     = "BOOKSTORE_APP_PORT"
	EnvDBDSN    = "BOOKSTORE_DB_DSN"
	EnvDBHost   = "BOOKSTORE_DB_HOST"
	EnvDBUser   = "BOOKSTORE_DB_USER"
	EnvDBName   = "BOOKSTORE_DB_NAME"
	EnvRedisURL = "BOOKSTORE_REDIS_URL"

	EnvGCPProjectID     = "BOOKSTORE_GCP_PROJECT_ID"
	EnvPubSubEventTopic = "BOOKSTORE_PUBSUB_EVENTS_TOPIC"
	EnvPubSubEventSub   = "BOOKSTORE_PUBSUB_EVENTS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
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
	Env          string `envconfig:"BOOKSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BOOKSTORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKSTORE_DB_DSN"`
	Driver string `envconfig:"BOOKSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKSTORE_DB_USER"`
	LegacyPassword string `envconfig:"BOOKSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOOKSTORE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOOKSTORE_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"BOOKSTORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"BOOKSTORE_PUBSUB_EVENTS_TOPIC" default:"bookstore-domain-events"`
	EventsSubscription string `envconfig:"BOOKSTORE_PUBSUB_EVENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BOOKSTORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BOOKSTORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BOOKSTORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		// sqlite callers pass a file path (or :memory:) through DSN, nothing to derive.
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
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
