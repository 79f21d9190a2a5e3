// Package config loads drogon-orm CLI settings from a config file, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/Orochi-Adde/drogon/runtime/client"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

const (
	fileName  = ".drogon-orm"
	envPrefix = "DROGON_ORM"
)

// Config holds the application configuration
type Config struct {
	Provider     string
	DatabaseURL  string
	MaxOpenConns int
	MaxInFlight  int64
	QueryTimeout time.Duration
	Debug        bool
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	return Load(AppFs)
}

// Load reads configuration using fs for every file access. Precedence, from
// lowest: defaults, config file, .env, .env.local, environment.
func Load(fs afero.Fs) (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "drogon-orm"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", "")
	v.SetDefault("database_url", "")
	v.SetDefault("max_open_conns", 25)
	v.SetDefault("max_in_flight", 0)
	v.SetDefault("query_timeout", "30s")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env.local wins over .env; neither overrides the real environment
	dotenv := map[string]string{}
	for _, name := range []string{".env", ".env.local"} {
		values, err := readDotenv(fs, name)
		if err != nil {
			return nil, err
		}
		for k, val := range values {
			dotenv[k] = val
		}
	}
	lookup := func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return dotenv[key]
	}

	cfg := &Config{
		Provider:     v.GetString("provider"),
		DatabaseURL:  v.GetString("database_url"),
		MaxOpenConns: v.GetInt("max_open_conns"),
		MaxInFlight:  v.GetInt64("max_in_flight"),
		QueryTimeout: v.GetDuration("query_timeout"),
		Debug:        v.GetBool("debug"),
	}
	if val := lookup(envPrefix + "_PROVIDER"); val != "" {
		cfg.Provider = val
	}
	if val := lookup(envPrefix + "_DATABASE_URL"); val != "" {
		cfg.DatabaseURL = val
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = lookup("DATABASE_URL")
	}
	if cfg.Provider == "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}

	return cfg, nil
}

func readDotenv(fs afero.Fs, name string) (map[string]string, error) {
	f, err := fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return values, nil
}

// DetectProvider guesses the provider from a connection string.
func DetectProvider(url string) string {
	lower := strings.ToLower(url)
	switch {
	case url == "":
		return "sqlite3"
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"), strings.Contains(lower, "@tcp("):
		return "mysql"
	case strings.HasPrefix(lower, "duckdb://"), strings.HasSuffix(lower, ".duckdb"):
		return "duckdb"
	default:
		return "sqlite3"
	}
}

// ClientConfig converts the settings into a client configuration.
func (c *Config) ClientConfig() client.Config {
	cc := client.DefaultConfig()
	cc.Provider = c.Provider
	cc.URL = c.DatabaseURL
	if cc.URL == "" && c.Provider == "sqlite3" {
		cc.URL = ":memory:"
	}
	cc.URL = strings.TrimPrefix(cc.URL, "duckdb://")
	cc.URL = strings.TrimPrefix(cc.URL, "mysql://")
	if c.MaxOpenConns > 0 {
		cc.MaxOpenConns = c.MaxOpenConns
	}
	cc.MaxInFlight = c.MaxInFlight
	cc.QueryTimeout = c.QueryTimeout
	return cc
}

// SaveConfig writes the settings to ~/.config/drogon-orm/.drogon-orm.yaml.
func SaveConfig(cfg *Config) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.Set("provider", cfg.Provider)
	v.Set("database_url", cfg.DatabaseURL)
	v.Set("max_open_conns", cfg.MaxOpenConns)
	v.Set("max_in_flight", cfg.MaxInFlight)
	v.Set("query_timeout", cfg.QueryTimeout.String())
	v.Set("debug", cfg.Debug)

	configPath := filepath.Join(home, ".config", "drogon-orm")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return "", err
	}

	configFile := filepath.Join(configPath, fileName+".yaml")
	return configFile, v.WriteConfigAs(configFile)
}
