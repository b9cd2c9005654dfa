// Package config loads settings with priority: defaults -> TOML file -> .env -> environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"ui_automation/application/wait"
)

// Config is the full tool configuration.
type Config struct {
	Browser BrowserConfig `toml:"browser"`
	Wait    WaitConfig    `toml:"wait"`
	Report  ReportConfig  `toml:"report"`
	Logging LoggingConfig `toml:"logging"`
}

// BrowserConfig selects and configures the driver.
type BrowserConfig struct {
	Driver    string `toml:"driver" validate:"oneof=playwright chromedp static"`
	Headless  bool   `toml:"headless"`
	BaseURL   string `toml:"base_url" validate:"omitempty,url"`
	SlowMoMS  int    `toml:"slow_mo_ms" validate:"gte=0"`
	TimeoutMS int    `toml:"timeout_ms" validate:"gt=0"`
	Width     int    `toml:"width" validate:"gt=0"`
	Height    int    `toml:"height" validate:"gt=0"`
	UserAgent string `toml:"user_agent"`
	StateFile string `toml:"state_file"` // playwright storage state reused between runs
}

// Timeout returns TimeoutMS as a duration.
func (b BrowserConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// WaitConfig bounds polling waits.
type WaitConfig struct {
	RetryCount      int `toml:"retry_count" validate:"gte=1"`
	RetryIntervalMS int `toml:"retry_interval_ms" validate:"gte=0"`
}

// Policy returns the wait policy described by the section.
func (w WaitConfig) Policy() wait.Policy {
	return wait.Policy{
		Retries:  w.RetryCount,
		Interval: time.Duration(w.RetryIntervalMS) * time.Millisecond,
	}
}

// ReportConfig controls step reporting.
type ReportConfig struct {
	Locale     string `toml:"locale" validate:"required"`
	ResultsDir string `toml:"results_dir" validate:"required"`
	Async      bool   `toml:"async"`
	Screenshot bool   `toml:"screenshot_on_failure"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Driver:    "playwright",
			Headless:  true,
			TimeoutMS: 30000,
			Width:     1280,
			Height:    720,
		},
		Wait: WaitConfig{
			RetryCount:      wait.DefaultPolicy.Retries,
			RetryIntervalMS: int(wait.DefaultPolicy.Interval / time.Millisecond),
		},
		Report: ReportConfig{
			Locale:     "en",
			ResultsDir: "results",
			Screenshot: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var (
	defaultOnce sync.Once
	defaultCfg  *Config
	defaultErr  error
)

// Default loads the process-wide configuration once, from the file named by
// UIA_CONFIG when set.
func Default() (*Config, error) {
	defaultOnce.Do(func() {
		defaultCfg, defaultErr = Load(os.Getenv("UIA_CONFIG"))
	})
	return defaultCfg, defaultErr
}

// Load builds a configuration from defaults, the TOML file at path (skipped
// when empty), a .env file in the working directory and UIA_* variables.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if driver := os.Getenv("UIA_DRIVER"); driver != "" {
		cfg.Browser.Driver = strings.ToLower(driver)
	}
	if headless := os.Getenv("UIA_HEADLESS"); headless != "" {
		b, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("UIA_HEADLESS: %w", err)
		}
		cfg.Browser.Headless = b
	}
	if baseURL := os.Getenv("UIA_BASE_URL"); baseURL != "" {
		cfg.Browser.BaseURL = baseURL
	}
	if retries := os.Getenv("UIA_RETRY_COUNT"); retries != "" {
		n, err := strconv.Atoi(retries)
		if err != nil {
			return fmt.Errorf("UIA_RETRY_COUNT: %w", err)
		}
		cfg.Wait.RetryCount = n
	}
	if interval := os.Getenv("UIA_RETRY_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("UIA_RETRY_INTERVAL: %w", err)
		}
		cfg.Wait.RetryIntervalMS = int(d / time.Millisecond)
	}
	if locale := os.Getenv("UIA_LOCALE"); locale != "" {
		cfg.Report.Locale = locale
	}
	if dir := os.Getenv("UIA_RESULTS_DIR"); dir != "" {
		cfg.Report.ResultsDir = dir
	}
	if level := os.Getenv("UIA_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return nil
}
