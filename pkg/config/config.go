package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "INVENTORYPRO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "INVENTORYPRO_APP_ENV"
	EnvPort     = "INVENTORYPRO_APP_PORT"
	EnvDBDSN    = "INVENTORYPRO_DB_DSN"
	EnvDBHost   = "INVENTORYPRO_DB_HOST"
	EnvDBUser   = "INVENTORYPRO_DB_USER"
	EnvDBName   = "INVENTORYPRO_DB_NAME"
	EnvRedisURL = "INVENTORYPRO_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Assembly     AssemblyConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"INVENTORYPRO_APP_ENV" required:"true"`
	Port         string `envconfig:"INVENTORYPRO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INVENTORYPRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INVENTORYPRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INVENTORYPRO_DB_DSN"`
	Driver string `envconfig:"INVENTORYPRO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INVENTORYPRO_DB_HOST"`
	LegacyPort     int    `envconfig:"INVENTORYPRO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVENTORYPRO_DB_USER"`
	LegacyPassword string `envconfig:"INVENTORYPRO_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVENTORYPRO_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVENTORYPRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INVENTORYPRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVENTORYPRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORYPRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVENTORYPRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INVENTORYPRO_REDIS_URL"`
	Address      string        `envconfig:"INVENTORYPRO_REDIS_ADDR"`
	Password     string        `envconfig:"INVENTORYPRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVENTORYPRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVENTORYPRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVENTORYPRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVENTORYPRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVENTORYPRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVENTORYPRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AssemblyConfig struct {
	// SerialMaxAttempts caps how many serial-number candidates are tried
	// before assembly creation fails with a conflict.
	SerialMaxAttempts int `envconfig:"INVENTORYPRO_ASSEMBLY_SERIAL_MAX_ATTEMPTS" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INVENTORYPRO_AUTO_MIGRATE" default:"false"`
	// RestoreStockOnAssemblyDelete controls whether deleting an assembly puts
	// the consumed leaf stock back. The historically observed behavior keeps
	// the physical consumption, so the flag defaults to off.
	RestoreStockOnAssemblyDelete bool `envconfig:"INVENTORYPRO_RESTORE_STOCK_ON_ASSEMBLY_DELETE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
