package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// LocalBackend identifies where local mode keeps its snapshot.
type LocalBackend string

const (
	LocalBackendFile  LocalBackend = "file"
	LocalBackendRedis LocalBackend = "redis"
)

const (
	DefaultPort           = "5050"
	DefaultSourceEndpoint = "https://data.wprdc.org/api/3/action/datastore_search"
	DefaultResourceID     = "65855e14-549e-4992-b5be-d629afc676fa"
	DefaultLocalKey       = "realEstateProperties"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrInvalidBatchSize   = errors.New("import batch size must be between 1 and 1000")
	ErrInvalidChunkSize   = errors.New("import chunk size must be positive")
	ErrUnknownBackend     = errors.New("unknown local backend")
)

// Config is the full service configuration.
type Config struct {
	Port           string   `yaml:"port"`
	DatabaseURL    string   `yaml:"database_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	Source SourceConfig `yaml:"source"`
	Import ImportConfig `yaml:"import"`
	Local  LocalConfig  `yaml:"local"`
	Search SearchConfig `yaml:"search"`
}

// SourceConfig points at the open-data datastore.
type SourceConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	ResourceID string        `yaml:"resource_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ImportConfig controls the batch importer and the populate loop.
type ImportConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	ChunkSize  int           `yaml:"chunk_size"`
	Delay      time.Duration `yaml:"delay"`
	MaxBatches int           `yaml:"max_batches"`
}

// LocalConfig controls the local snapshot store.
type LocalConfig struct {
	Backend       LocalBackend `yaml:"backend"`
	Dir           string       `yaml:"dir"`
	Key           string       `yaml:"key"`
	RedisAddr     string       `yaml:"redis_addr"`
	RedisPassword string       `yaml:"redis_password"`
	RedisDB       int          `yaml:"redis_db"`
}

type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port: DefaultPort,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:8080",
		},
		LogLevel:  "info",
		LogFormat: "json",
		Source: SourceConfig{
			Endpoint:   DefaultSourceEndpoint,
			ResourceID: DefaultResourceID,
			Timeout:    30 * time.Second,
		},
		Import: ImportConfig{
			BatchSize:  500,
			ChunkSize:  100,
			Delay:      100 * time.Millisecond,
			MaxBatches: 500,
		},
		Local: LocalConfig{
			Backend: LocalBackendFile,
			Dir:     "data",
			Key:     DefaultLocalKey,
		},
		Search: SearchConfig{
			MaxResults: 2000,
		},
	}
}

// LoadFromEnv builds a Config from defaults, the optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
//
// Environment variables:
//   - PORT, DATABASE_URL, ALLOWED_ORIGINS (comma separated), SECURE_COOKIES
//   - LOG_LEVEL, LOG_FORMAT ("json" or "console")
//   - ADMIN_EMAIL, ADMIN_PASSWORD
//   - WPRDC_ENDPOINT, WPRDC_RESOURCE_ID, WPRDC_TIMEOUT
//   - IMPORT_BATCH_SIZE, IMPORT_CHUNK_SIZE, IMPORT_DELAY, IMPORT_MAX_BATCHES
//   - LOCAL_BACKEND ("file" or "redis"), LOCAL_DIR, LOCAL_KEY, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
//   - SEARCH_MAX_RESULTS
func LoadFromEnv() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")

	setString(&cfg.Source.Endpoint, "WPRDC_ENDPOINT")
	setString(&cfg.Source.ResourceID, "WPRDC_RESOURCE_ID")

	var errs []error
	errs = append(errs,
		setBool(&cfg.SecureCookies, "SECURE_COOKIES"),
		setDuration(&cfg.Source.Timeout, "WPRDC_TIMEOUT"),
		setInt(&cfg.Import.BatchSize, "IMPORT_BATCH_SIZE"),
		setInt(&cfg.Import.ChunkSize, "IMPORT_CHUNK_SIZE"),
		setDuration(&cfg.Import.Delay, "IMPORT_DELAY"),
		setInt(&cfg.Import.MaxBatches, "IMPORT_MAX_BATCHES"),
		setInt(&cfg.Local.RedisDB, "REDIS_DB"),
		setInt(&cfg.Search.MaxResults, "SEARCH_MAX_RESULTS"),
	)

	if b := strings.ToLower(strings.TrimSpace(os.Getenv("LOCAL_BACKEND"))); b != "" {
		cfg.Local.Backend = LocalBackend(b)
	}
	setString(&cfg.Local.Dir, "LOCAL_DIR")
	setString(&cfg.Local.Key, "LOCAL_KEY")
	setString(&cfg.Local.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Local.RedisPassword, "REDIS_PASSWORD")

	return cfg, errors.Join(errs...)
}

// LoadFile overlays values from a YAML file onto cfg.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Import.BatchSize < 1 || c.Import.BatchSize > 1000 {
		return ErrInvalidBatchSize
	}
	if c.Import.ChunkSize < 1 {
		return ErrInvalidChunkSize
	}
	switch c.Local.Backend {
	case LocalBackendFile, LocalBackendRedis:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Local.Backend)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// setDuration accepts Go durations ("1500ms") or a bare number of milliseconds.
func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
