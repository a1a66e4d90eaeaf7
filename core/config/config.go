package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"eventsync/core/constants"
	"eventsync/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	GoogleAPI GoogleAPIConfig `mapstructure:"google_api"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Where the browser is sent after a successful Google callback.
	PostLoginRedirect string `mapstructure:"post_login_redirect"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GoogleAPIConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURI  string   `mapstructure:"redirect_uri"`
	Scopes       []string `mapstructure:"scopes"`
}

type CalendarConfig struct {
	CalendarID      string        `mapstructure:"calendar_id"`
	Endpoint        string        `mapstructure:"endpoint"`
	DefaultTimezone string        `mapstructure:"default_timezone"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ExportName      string        `mapstructure:"export_name"`
}

type SyncConfig struct {
	TokenSafetyMargin time.Duration `mapstructure:"token_safety_margin"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BaseBackoff       time.Duration `mapstructure:"base_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	StateSecret string `mapstructure:"state_secret"`
	// Key under which the single session's credential is cached.
	Key string `mapstructure:"key"`
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Init loads .env (if present), then config.yaml and EVENTSYNC_* variables.
func Init() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("Config:Init:NoDotEnv")
	}

	return Load("")
}

// Load reads configuration from path, or from ./config.yaml and ./config/config.yaml when path is empty.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EVENTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.post_login_redirect", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("google_api.client_id", "")
	v.SetDefault("google_api.client_secret", "")
	v.SetDefault("google_api.redirect_uri", "")
	v.SetDefault("google_api.scopes", []string{constants.ScopeUserInfoEmail, constants.ScopeCalendar})

	v.SetDefault("calendar.calendar_id", constants.DefaultCalendarID)
	v.SetDefault("calendar.endpoint", "")
	v.SetDefault("calendar.default_timezone", constants.DefaultTimezone)
	v.SetDefault("calendar.request_timeout", constants.DefaultTimeout)
	v.SetDefault("calendar.export_name", "My Event Calendar")

	v.SetDefault("sync.token_safety_margin", constants.TokenSafetyMargin)
	v.SetDefault("sync.max_attempts", constants.DefaultMaxAttempts)
	v.SetDefault("sync.base_backoff", constants.DefaultBaseBackoff)
	v.SetDefault("sync.max_backoff", constants.DefaultMaxBackoff)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.state_secret", "")
	v.SetDefault("session.key", "default")
}

func (c *Config) normalize() {
	if c.Server.Port <= 0 {
		c.Server.Port = 7070
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = constants.DefaultTimeout
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = constants.DefaultCalendarID
	}
	if c.Calendar.DefaultTimezone == "" {
		c.Calendar.DefaultTimezone = constants.DefaultTimezone
	}
	if c.Calendar.RequestTimeout <= 0 {
		c.Calendar.RequestTimeout = constants.DefaultTimeout
	}
	if c.Sync.TokenSafetyMargin < 0 {
		c.Sync.TokenSafetyMargin = constants.TokenSafetyMargin
	}
	if c.Sync.MaxAttempts <= 0 {
		c.Sync.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.Sync.BaseBackoff <= 0 {
		c.Sync.BaseBackoff = constants.DefaultBaseBackoff
	}
	if c.Sync.MaxBackoff < c.Sync.BaseBackoff {
		c.Sync.MaxBackoff = constants.DefaultMaxBackoff
	}
	if c.Session.Key == "" {
		c.Session.Key = "default"
	}
}
