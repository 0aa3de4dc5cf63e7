package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Store     StoreConfig
	Bot       BotConfig
	ITAD      ITADConfig
	DealCheck DealCheckConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DB.ensureDSN()
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GAMEWISH_APP_ENV" default:"dev"`
	Port         string `envconfig:"GAMEWISH_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"GAMEWISH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GAMEWISH_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"GAMEWISH_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"GAMEWISH_DB_DSN"`

	LegacyHost     string `envconfig:"GAMEWISH_DB_HOST"`
	LegacyPort     int    `envconfig:"GAMEWISH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GAMEWISH_DB_USER"`
	LegacyPassword string `envconfig:"GAMEWISH_DB_PASSWORD"`
	LegacyName     string `envconfig:"GAMEWISH_DB_NAME"`
	LegacySSLMode  string `envconfig:"GAMEWISH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GAMEWISH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GAMEWISH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GAMEWISH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GAMEWISH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GAMEWISH_REDIS_URL"`
	Address      string        `envconfig:"GAMEWISH_REDIS_ADDR"`
	Password     string        `envconfig:"GAMEWISH_REDIS_PASSWORD"`
	DB           int           `envconfig:"GAMEWISH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GAMEWISH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GAMEWISH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GAMEWISH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GAMEWISH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GAMEWISH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StoreConfig covers the wishlist store API: the token it accepts and the
// base URL the bot-side client dials.
type StoreConfig struct {
	APIToken string `envconfig:"GAMEWISH_STORE_API_TOKEN"`
	BaseURL  string `envconfig:"GAMEWISH_STORE_BASE_URL" default:"http://127.0.0.1:8000"`
}

type BotConfig struct {
	Token         string        `envconfig:"GAMEWISH_BOT_TOKEN"`
	Prefix        string        `envconfig:"GAMEWISH_BOT_PREFIX" default:"!"`
	ReactionEmoji string        `envconfig:"GAMEWISH_BOT_REACTION_EMOJI" default:"👀"`
	ReactionWait  time.Duration `envconfig:"GAMEWISH_BOT_REACTION_WAIT" default:"60s"`
	TrackingFile  string        `envconfig:"GAMEWISH_BOT_TRACKING_FILE" default:"data.json"`
}

type ITADConfig struct {
	APIKey  string        `envconfig:"GAMEWISH_ITAD_API_KEY"`
	BaseURL string        `envconfig:"GAMEWISH_ITAD_BASE_URL" default:"https://api.isthereanydeal.com"`
	Timeout time.Duration `envconfig:"GAMEWISH_ITAD_TIMEOUT" default:"10s"`
}

type DealCheckConfig struct {
	Interval time.Duration `envconfig:"GAMEWISH_DEALCHECK_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"GAMEWISH_DEALCHECK_LOCK_TTL" default:"25h"`
}

// ensureDSN assembles a postgres DSN from the legacy per-field vars when no
// DSN is set. Processes that never open the database (the bot) may run with
// an empty DSN; db.New enforces the requirement at connect time.
func (db *DBConfig) ensureDSN() {
	if db.DSN != "" {
		return
	}
	if db.LegacyHost == "" || db.LegacyUser == "" || db.LegacyName == "" {
		return
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
}
