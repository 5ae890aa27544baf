package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigurationError is fatal: the scan must not start when one is raised.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func Errorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Config holds every input the engine consumes. All of it is validated
// before the engine is constructed.
type Config struct {
	Profile        string   `yaml:"profile"`
	Root           string   `yaml:"root"`
	Format         string   `yaml:"format"`
	Output         string   `yaml:"output"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Workers        int      `yaml:"workers"`
	Fix            bool     `yaml:"fix"`
	Exclude        []string `yaml:"exclude"`
	IncludeOnly    []string `yaml:"include_only"`
	ProfilesPath   string   `yaml:"profiles_path"`
	WaiversPath    string   `yaml:"waivers_path"`
	Publish        Publish  `yaml:"publish"`
}

// Publish configures the optional report upload. Credentials come from the
// environment only, never from the config file.
type Publish struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

var Formats = []string{"text", "json", "csv", "html", "xml"}

func Default() Config {
	return Config{
		Profile:        "baseline",
		Root:           "/",
		Format:         "text",
		TimeoutSeconds: 30,
		Workers:        1,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// is absent, then applies HARDSCAN_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, Errorf("parse %s: %v", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Root == "" {
		cfg.Root = "/"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Default().TimeoutSeconds
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HARDSCAN_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("HARDSCAN_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("HARDSCAN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("HARDSCAN_S3_ENDPOINT"); v != "" {
		cfg.Publish.Endpoint = v
	}
	if v := os.Getenv("HARDSCAN_S3_BUCKET"); v != "" {
		cfg.Publish.Bucket = v
	}
	if v := os.Getenv("HARDSCAN_S3_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Publish.UseSSL = b
		}
	}
	cfg.Publish.AccessKey = os.Getenv("HARDSCAN_S3_ACCESS_KEY")
	cfg.Publish.SecretKey = os.Getenv("HARDSCAN_S3_SECRET_KEY")
}

// Validate checks everything the engine will rely on. It returns a
// ConfigurationError so callers can map it to the config exit code.
func Validate(cfg Config) error {
	if cfg.Profile == "" {
		return Errorf("profile is required")
	}
	if !SupportedFormat(cfg.Format) {
		return Errorf("unsupported output format: %s", cfg.Format)
	}
	if cfg.TimeoutSeconds <= 0 {
		return Errorf("timeout_seconds must be positive")
	}
	if cfg.Workers < 1 {
		return Errorf("workers must be at least 1")
	}
	return nil
}

func SupportedFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
