package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SCHOOLGATE_SERVER_PORT
const EnvPrefix = "SCHOOLGATE"

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the full process configuration, built once at start
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Gate    GateConfig    `mapstructure:"gate"`
	Tiles   TilesConfig   `mapstructure:"tiles"`
	Pass    PassConfig    `mapstructure:"pass"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type AuthConfig struct {
	MaxFailedAttempts int                  `mapstructure:"max_failed_attempts"`
	PasswordScheme    string               `mapstructure:"password_scheme"`
	BcryptCost        int                  `mapstructure:"bcrypt_cost"`
	BootstrapAdmin    BootstrapAdminConfig `mapstructure:"bootstrap_admin"`
}

// BootstrapAdminConfig names an admin account created at start if its
// username is free. Leave Username empty to skip.
type BootstrapAdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

type GateConfig struct {
	PuzzleFailureLimit int           `mapstructure:"puzzle_failure_limit"`
	WindowTTL          time.Duration `mapstructure:"window_ttl"`
	CleanupInterval    time.Duration `mapstructure:"cleanup_interval"`
}

type TilesConfig struct {
	Dirs []string `mapstructure:"dirs"`
	Size int      `mapstructure:"size"`
}

type PassConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.type", StorageMemory)
	v.SetDefault("storage.redis.url", "")
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.postgres.dsn", "")

	v.SetDefault("auth.max_failed_attempts", 3)
	v.SetDefault("auth.password_scheme", "plain")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.bootstrap_admin.username", "")
	v.SetDefault("auth.bootstrap_admin.password", "")
	v.SetDefault("auth.bootstrap_admin.full_name", "Administrator")

	v.SetDefault("gate.puzzle_failure_limit", 3)
	v.SetDefault("gate.window_ttl", 15*time.Minute)
	v.SetDefault("gate.cleanup_interval", time.Minute)

	v.SetDefault("tiles.dirs", []string{"images", "."})
	v.SetDefault("tiles.size", 150)

	v.SetDefault("pass.secret", "")
	v.SetDefault("pass.ttl", 8*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Default returns the built-in defaults without reading files or the environment
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic("config defaults do not decode: " + err.Error())
	}
	return c
}

// Load builds the configuration from defaults, an optional YAML file and
// SCHOOLGATE_* environment variables, in increasing priority. An empty path
// looks for schoolgate.yaml in the working directory and ignores its absence;
// an explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("schoolgate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that cannot be defaulted
func (c Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			return errors.New("config error: storage.redis.url required when storage.type is redis")
		}
	case StoragePostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.New("config error: storage.postgres.dsn required when storage.type is postgres")
		}
	default:
		return fmt.Errorf("config error: unknown storage.type %q", c.Storage.Type)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server.port %d out of range", c.Server.Port)
	}
	if c.Auth.MaxFailedAttempts < 1 {
		return errors.New("config error: auth.max_failed_attempts must be positive")
	}
	if c.Auth.BootstrapAdmin.Username != "" && c.Auth.BootstrapAdmin.Password == "" {
		return errors.New("config error: auth.bootstrap_admin.password required when a bootstrap admin is named")
	}
	if c.Gate.PuzzleFailureLimit < 1 {
		return errors.New("config error: gate.puzzle_failure_limit must be positive")
	}
	if c.Tiles.Size < 1 {
		return errors.New("config error: tiles.size must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured log level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config error: log.level: %w", err)
	}
	return level, nil
}
