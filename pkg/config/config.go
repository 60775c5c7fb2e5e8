package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	GinMode      string   `mapstructure:"gin_mode"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DBConfig selects the store. A non-empty URL means Postgres, otherwise SQLite at Path.
type DBConfig struct {
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

// RedisConfig configures the archive cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds session and API key secrets and the bootstrap manager account.
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	APIMasterSecret string        `mapstructure:"api_master_secret"`
	AdminID         int           `mapstructure:"admin_id"`
	AdminPassword   string        `mapstructure:"admin_password"`
	AdminName       string        `mapstructure:"admin_name"`
	AdminSite       string        `mapstructure:"admin_site"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ArchiveConfig controls how many past documents a site keeps.
type ArchiveConfig struct {
	Retention int `mapstructure:"retention"`
}

// EnvFiles are the .env locations tried, first match wins.
var EnvFiles = []string{".env", "../.env", "../../.env"}

// LoadEnv loads the first .env file found. A missing file is not an error.
func LoadEnv() {
	for _, p := range EnvFiles {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads configuration like Read and validates it for the server.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from defaults, an optional config file and ROSTER_*
// environment variables, in increasing priority. Nothing is validated.
func Read(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.url", "")
	v.SetDefault("db.path", "roster.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.api_master_secret", "")
	v.SetDefault("auth.admin_id", 1)
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_name", "Site Manager")
	v.SetDefault("auth.admin_site", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("archive.retention", 5)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if err := c.Auth.ValidateAPIKeys(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: auth.token_ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Archive.Retention < 1 {
		return fmt.Errorf("config: archive.retention must be at least 1")
	}
	return nil
}

// ValidateAPIKeys checks only what signing solver keys needs.
func (a AuthConfig) ValidateAPIKeys() error {
	if a.APIMasterSecret == "" {
		return fmt.Errorf("config: auth.api_master_secret is required")
	}
	return nil
}
