package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override, e.g. RETAILADMIN_API_BASE_URL.
const EnvPrefix = "RETAILADMIN"

// Config struct holds application configuration for the console and the sandbox API.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	// Console
	APIBaseURL string `mapstructure:"api_base_url"`
	SessionDir string `mapstructure:"session_dir"`
	PageLimit  int    `mapstructure:"page_limit"`

	// Sandbox API
	Addr        string        `mapstructure:"addr"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	DatabaseURL string        `mapstructure:"database_url"`
	UploadDir   string        `mapstructure:"upload_dir"`

	// AdminEmail and AdminPassword seed the first admin account when both are set.
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load reads configuration from an optional .env file, an optional config file and the environment,
// in increasing order of precedence. configFile may be empty.
func Load(configFile string) (*Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file, using environment variables")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(homeDir(), ".retailadmin"))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the console cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("api_base_url is not set")
	}
	if c.PageLimit < 1 {
		return fmt.Errorf("page_limit must be positive, got %d", c.PageLimit)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	return nil
}

// ValidateServer rejects settings the sandbox API cannot run with.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is not set")
	}
	if c.Addr == "" {
		return errors.New("addr is not set")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("admin_email and admin_password must be set together")
	}
	return nil
}

// LogFields returns the configuration as zap fields, without secrets.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Environment),
		zap.String("api_base_url", c.APIBaseURL),
		zap.String("session_dir", c.SessionDir),
		zap.Int("page_limit", c.PageLimit),
		zap.String("addr", c.Addr),
		zap.Bool("database", c.DatabaseURL != ""),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "http://localhost:5000/api")
	v.SetDefault("session_dir", filepath.Join(homeDir(), ".retailadmin", "session"))
	v.SetDefault("page_limit", 10)
	v.SetDefault("addr", ":5000")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 72*time.Hour)
	v.SetDefault("database_url", "")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}
