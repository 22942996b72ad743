package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "15m" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or \"15m\"")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete application configuration. Provider
// credentials come from the environment only, never from the YAML file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	App       AppConfig       `yaml:"app"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Providers ProvidersConfig `yaml:"-"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// JobsConfig holds the lifecycle clocks of the job subsystem. ResultTTL and
// JobRetention are independent: a result usually expires well before the
// terminal job record that references it.
type JobsConfig struct {
	ResultTTL    Duration `yaml:"result_ttl"`
	JobRetention Duration `yaml:"job_retention"`
	ReapInterval Duration `yaml:"reap_interval"`
}

// UploadsConfig holds upload validation and rate-limit settings.
type UploadsConfig struct {
	MaxSizeBytes      int64    `yaml:"max_size_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	PerHour           int      `yaml:"per_hour"`
}

// ProvidersConfig holds the external stage credentials, read from the
// environment.
type ProvidersConfig struct {
	OpenAIAPIKey string
	GoogleAPIKey string
}

// Load reads and parses the configuration file, applies defaults and picks
// up provider credentials from the environment.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.Providers = ProvidersConfig{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Jobs.ResultTTL <= 0 {
		c.Jobs.ResultTTL = Duration(15 * time.Minute)
	}
	if c.Jobs.JobRetention <= 0 {
		c.Jobs.JobRetention = Duration(time.Hour)
	}
	if c.Jobs.ReapInterval <= 0 {
		c.Jobs.ReapInterval = Duration(5 * time.Minute)
	}
	if c.Uploads.MaxSizeBytes <= 0 {
		c.Uploads.MaxSizeBytes = 25 * 1024 * 1024
	}
	if len(c.Uploads.AllowedExtensions) == 0 {
		c.Uploads.AllowedExtensions = []string{".wav", ".mp3"}
	}
	if c.Uploads.PerHour <= 0 {
		c.Uploads.PerHour = 10
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Jobs.ResultTTL <= 0 {
		return fmt.Errorf("jobs result_ttl must be greater than 0")
	}

	if c.Jobs.JobRetention <= 0 {
		return fmt.Errorf("jobs job_retention must be greater than 0")
	}

	if c.Jobs.ReapInterval <= 0 {
		return fmt.Errorf("jobs reap_interval must be greater than 0")
	}

	if c.Uploads.MaxSizeBytes <= 0 {
		return fmt.Errorf("uploads max_size_bytes must be greater than 0")
	}

	if c.Uploads.PerHour <= 0 {
		return fmt.Errorf("uploads per_hour must be greater than 0")
	}

	return nil
}
