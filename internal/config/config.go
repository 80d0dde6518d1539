package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const DefaultPath = "configs/config.toml"

type Config struct {
	Server struct {
		Host                 string        `validate:"required"`
		GRPCHost             string        `toml:"grpc_host"`
		StrReadTimeout       string        `toml:"read_timeout"`
		StrWriteTimeout      string        `toml:"write_timeout"`
		StrReadHeaderTimeout string        `toml:"read_header_timeout"`
		ReadTimeout          time.Duration `toml:"-"`
		WriteTimeout         time.Duration `toml:"-"`
		ReadHeaderTimeout    time.Duration `toml:"-"`
	}
	Database struct {
		Host     string `validate:"required"`
		User     string `validate:"required"`
		Password string
		Database string `validate:"required"`
		MaxConns int    `toml:"max_conns" validate:"gte=1"`
	}
	Redis struct {
		RedisAddr     string        `toml:"redis_addr"`
		RedisPassword string        `toml:"redis_password"`
		RedisDB       int           `toml:"redis_db"`
		StrLockTTL    string        `toml:"lock_ttl"`
		LockTTL       time.Duration `toml:"-"`
	}
	Locks struct {
		Backend string `validate:"oneof=redis local"`
	}
	Push struct {
		Endpoint    string        `validate:"required,url"`
		AccessToken string        `toml:"access_token"`
		ChunkSize   int           `toml:"chunk_size" validate:"gte=1,lte=100"`
		StrTimeout  string        `toml:"timeout"`
		Timeout     time.Duration `toml:"-"`
	}
	Log struct {
		File  string
		Level string `validate:"omitempty,oneof=debug info warn error"`
	}
}

// GetConfig reads the TOML file at path, applies .env and environment
// overrides, then parses durations and validates the result.
func GetConfig(path string, logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Error loading .env file", slog.String("error", err.Error()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error read config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	cfg, err := Parse(string(data))
	if err != nil {
		logger.Error("Error decode config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Config is loaded", slog.String("path", path))
	return cfg, nil
}

// Parse decodes TOML content into a validated Config.
func Parse(content string) (*Config, error) {
	var cfg Config
	setDefaults(&cfg)

	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)

	if err := parseDurations(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if cfg.Locks.Backend == "redis" && cfg.Redis.RedisAddr == "" {
		return errors.New("validation failed: redis_addr is required for the redis lock backend")
	}

	return nil
}

// Level maps the configured log level onto slog.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.Log.Level) {
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

func setDefaults(cfg *Config) {
	cfg.Server.StrReadTimeout = "10s"
	cfg.Server.StrWriteTimeout = "30s"
	cfg.Server.StrReadHeaderTimeout = "5s"
	cfg.Database.MaxConns = 10
	cfg.Redis.StrLockTTL = "15s"
	cfg.Locks.Backend = "local"
	cfg.Push.Endpoint = "https://exp.host/--/api/v2/push/send"
	cfg.Push.ChunkSize = 100
	cfg.Push.StrTimeout = "10s"
	cfg.Log.File = "server.log"
	cfg.Log.Level = "info"
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SHIFT_DB_PASSWORD"); ok {
		cfg.Database.Password = v
	}
	if v, ok := os.LookupEnv("SHIFT_REDIS_PASSWORD"); ok {
		cfg.Redis.RedisPassword = v
	}
	if v, ok := os.LookupEnv("SHIFT_PUSH_ACCESS_TOKEN"); ok {
		cfg.Push.AccessToken = v
	}
}

func parseDurations(cfg *Config) error {
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"read_timeout", cfg.Server.StrReadTimeout, &cfg.Server.ReadTimeout},
		{"write_timeout", cfg.Server.StrWriteTimeout, &cfg.Server.WriteTimeout},
		{"read_header_timeout", cfg.Server.StrReadHeaderTimeout, &cfg.Server.ReadHeaderTimeout},
		{"lock_ttl", cfg.Redis.StrLockTTL, &cfg.Redis.LockTTL},
		{"push timeout", cfg.Push.StrTimeout, &cfg.Push.Timeout},
	}

	for _, d := range durations {
		parsed, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}
