package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the exceldl CLI.
type Config struct {
	// ExcelFile is the path to the source spreadsheet.
	ExcelFile string `yaml:"excel_file"`

	// URLColumn is the header of the column containing URLs.
	URLColumn string `yaml:"url_column"`

	// OutputFolder is the destination for downloaded files. A plain path is
	// treated as a local directory (created if absent); a gocloud bucket URL
	// such as s3://bucket/prefix is passed through as-is.
	OutputFolder string `yaml:"output_folder"`

	// MaxConcurrent is the maximum number of downloads in flight at once.
	MaxConcurrent int `yaml:"max_concurrent_downloads"`

	// FailureThreshold is the number of consecutive failures tolerated
	// before no new downloads are dispatched. The run halts once the count
	// strictly exceeds this value.
	FailureThreshold int `yaml:"failure_threshold"`

	// Timeout applies to each individual request.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`

	// Headers are additional static headers sent with every request.
	Headers map[string]string `yaml:"headers"`

	// DefaultExtension is appended to destination names when the URL path
	// carries no recognized extension.
	DefaultExtension string `yaml:"default_extension"`

	// ErrorLog is the path of the JSON error log written after a run.
	ErrorLog string `yaml:"error_log"`

	// Progress enables the live console progress display.
	Progress bool `yaml:"progress"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ExcelFile:        "input.xlsx",
		URLColumn:        "URL",
		OutputFolder:     "downloaded_images",
		MaxConcurrent:    4,
		FailureThreshold: 10,
		Timeout:          30 * time.Second,
		UserAgent:        "exceldl/1.0",
		DefaultExtension: ".jpg",
		ErrorLog:         "error_log.json",
		LogLevel:         "info",
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	ExcelFile        string            `yaml:"excel_file"`
	URLColumn        string            `yaml:"url_column"`
	OutputFolder     string            `yaml:"output_folder"`
	MaxConcurrent    int               `yaml:"max_concurrent_downloads"`
	FailureThreshold int               `yaml:"failure_threshold"`
	Timeout          string            `yaml:"timeout"`
	UserAgent        string            `yaml:"user_agent"`
	Headers          map[string]string `yaml:"headers"`
	DefaultExtension string            `yaml:"default_extension"`
	ErrorLog         string            `yaml:"error_log"`
	Progress         bool              `yaml:"progress"`
	LogLevel         string            `yaml:"log_level"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.ExcelFile != "" {
		cfg.ExcelFile = yc.ExcelFile
	}
	if yc.URLColumn != "" {
		cfg.URLColumn = yc.URLColumn
	}
	if yc.OutputFolder != "" {
		cfg.OutputFolder = yc.OutputFolder
	}
	if yc.MaxConcurrent != 0 {
		cfg.MaxConcurrent = yc.MaxConcurrent
	}
	if yc.FailureThreshold != 0 {
		cfg.FailureThreshold = yc.FailureThreshold
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if len(yc.Headers) > 0 {
		cfg.Headers = yc.Headers
	}
	if yc.DefaultExtension != "" {
		cfg.DefaultExtension = yc.DefaultExtension
	}
	if yc.ErrorLog != "" {
		cfg.ErrorLog = yc.ErrorLog
	}
	cfg.Progress = yc.Progress
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the EXCELDL_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("EXCELDL_EXCEL_FILE"); v != "" {
		c.ExcelFile = v
	}
	if v := os.Getenv("EXCELDL_URL_COLUMN"); v != "" {
		c.URLColumn = v
	}
	if v := os.Getenv("EXCELDL_OUTPUT_FOLDER"); v != "" {
		c.OutputFolder = v
	}
	if v := os.Getenv("EXCELDL_MAX_CONCURRENT_DOWNLOADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse EXCELDL_MAX_CONCURRENT_DOWNLOADS: %w", err)
		}
		c.MaxConcurrent = n
	}
	if v := os.Getenv("EXCELDL_FAILURE_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse EXCELDL_FAILURE_THRESHOLD: %w", err)
		}
		c.FailureThreshold = n
	}
	if v := os.Getenv("EXCELDL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse EXCELDL_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("EXCELDL_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("EXCELDL_DEFAULT_EXTENSION"); v != "" {
		c.DefaultExtension = v
	}
	if v := os.Getenv("EXCELDL_ERROR_LOG"); v != "" {
		c.ErrorLog = v
	}
	if v := os.Getenv("EXCELDL_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("EXCELDL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ExcelFile == "" {
		return errors.New("config: excel_file is required")
	}
	if c.URLColumn == "" {
		return errors.New("config: url_column is required")
	}
	if c.OutputFolder == "" {
		return errors.New("config: output_folder is required")
	}
	if c.MaxConcurrent <= 0 {
		return errors.New("config: max_concurrent_downloads must be positive")
	}
	if c.FailureThreshold <= 0 {
		return errors.New("config: failure_threshold must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.DefaultExtension != "" && !strings.HasPrefix(c.DefaultExtension, ".") {
		return errors.New("config: default_extension must start with a dot")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.ExcelFile != "" {
		c.ExcelFile = override.ExcelFile
	}
	if override.URLColumn != "" {
		c.URLColumn = override.URLColumn
	}
	if override.OutputFolder != "" {
		c.OutputFolder = override.OutputFolder
	}
	if override.MaxConcurrent != 0 {
		c.MaxConcurrent = override.MaxConcurrent
	}
	if override.FailureThreshold != 0 {
		c.FailureThreshold = override.FailureThreshold
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if len(override.Headers) > 0 {
		c.Headers = override.Headers
	}
	if override.DefaultExtension != "" {
		c.DefaultExtension = override.DefaultExtension
	}
	if override.ErrorLog != "" {
		c.ErrorLog = override.ErrorLog
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	return c
}

// BucketURL converts OutputFolder into a gocloud bucket URL. Plain local
// paths become file:// URLs; anything with a URL scheme passes through.
func (c *Config) BucketURL() (string, error) {
	if strings.Contains(c.OutputFolder, "://") {
		return c.OutputFolder, nil
	}
	abs, err := filepath.Abs(c.OutputFolder)
	if err != nil {
		return "", fmt.Errorf("resolve output folder: %w", err)
	}
	// metadata=skip keeps fileblob from writing .attrs sidecar files next
	// to the downloads.
	return "file://" + filepath.ToSlash(abs) + "?create_dir=true&metadata=skip", nil
}
