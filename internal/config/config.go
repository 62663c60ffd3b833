package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`

	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RateLimit     int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"kanso-progress"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	TiersFile  string        `env:"LEVEL_TIERS_FILE"`
	CheckinXP  int64         `env:"CHECKIN_XP" envDefault:"5"`
	QueueSize  int           `env:"EFFECT_QUEUE_SIZE" envDefault:"256"`
	CacheTTL   time.Duration `env:"XP_CACHE_TTL" envDefault:"10m"`
	ShutdownIn time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("config: DB_USER and DB_NAME are required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Driver)
	}

	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if err := domain.ValidateXPReward(c.CheckinXP); err != nil {
		return fmt.Errorf("config: CHECKIN_XP: %w", err)
	}
	if c.QueueSize <= 0 {
		return errors.New("config: EFFECT_QUEUE_SIZE must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

type tierFile struct {
	Tiers []domain.LevelTier `toml:"tiers"`
}

// LoadTiers reads a level table from a TOML file of [[tiers]] entries. An
// empty path yields the built-in table.
func LoadTiers(path string) ([]domain.LevelTier, error) {
	if path == "" {
		return domain.DefaultTiers(), nil
	}

	var file tierFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("read tier table %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read tier table %s: unknown key %q", path, undecoded[0].String())
	}
	if err := domain.ValidateTiers(file.Tiers); err != nil {
		return nil, fmt.Errorf("read tier table %s: %w", path, err)
	}
	return file.Tiers, nil
}
