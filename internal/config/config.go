package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	EnvPrefix = "CAUSELIST_"

	defaultListen       = ":8080"
	defaultOutputDir    = "downloaded_pdfs"
	defaultBaseURL      = "https://newdelhi.dcourts.gov.in"
	defaultCauseListURL = defaultBaseURL + "/cause-list-%e2%81%84-daily-board/"
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultPageTimeout  = 10 * time.Second
	defaultFileTimeout  = 20 * time.Second
	defaultMinFileSize  = 1000
	defaultMaxFileSize  = 50 << 20
	defaultWorkers      = 1
	maxWorkers          = 32
	defaultDateRange    = 30
	defaultRecentFiles  = 8
	defaultKeepJobs     = 50
)

type SourceConfig struct {
	// BaseURL is the origin prepended to relative hrefs.
	BaseURL      string        `yaml:"base_url"`
	CauseListURL string        `yaml:"cause_list_url"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	// DateParam, when set, is sent as ?<param>=DD-MM-YYYY with the page request.
	DateParam string `yaml:"date_param"`
}

type DownloaderConfig struct {
	OutputDir   string        `yaml:"output_dir"`
	Timeout     time.Duration `yaml:"timeout"`
	MinFileSize int64         `yaml:"min_file_size"`
	MaxFileSize int64         `yaml:"max_file_size"`
	Workers     int           `yaml:"workers"`
}

type UIConfig struct {
	DateRangeDays int    `yaml:"date_range_days"`
	RecentFiles   int    `yaml:"recent_files"`
	KeepJobs      int    `yaml:"keep_jobs"`
	TemplateFile  string `yaml:"template_file"` // Optional, its {{define}} blocks replace the built-in ones
}

type Config struct {
	Listen           string           `yaml:"listen"`
	LogLevel         string           `yaml:"log_level"`
	RedisURL         string           `yaml:"redis_url"`
	SourceConfig     SourceConfig     `yaml:"source"`
	DownloaderConfig DownloaderConfig `yaml:"downloader"`
	UIConfig         UIConfig         `yaml:"ui"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}

	s := &c.SourceConfig
	if s.BaseURL == "" {
		s.BaseURL = defaultBaseURL
	}
	if s.CauseListURL == "" {
		s.CauseListURL = defaultCauseListURL
	}
	if s.UserAgent == "" {
		s.UserAgent = defaultUserAgent
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultPageTimeout
	}

	d := &c.DownloaderConfig
	if d.OutputDir == "" {
		d.OutputDir = defaultOutputDir
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultFileTimeout
	}
	if d.MinFileSize <= 0 {
		d.MinFileSize = defaultMinFileSize
	}
	if d.MaxFileSize <= 0 {
		d.MaxFileSize = defaultMaxFileSize
	}
	if d.Workers <= 0 {
		d.Workers = defaultWorkers
	}
	if d.Workers > maxWorkers {
		d.Workers = maxWorkers
	}

	u := &c.UIConfig
	if u.DateRangeDays <= 0 {
		u.DateRangeDays = defaultDateRange
	}
	if u.RecentFiles <= 0 {
		u.RecentFiles = defaultRecentFiles
	}
	if u.KeepJobs <= 0 {
		u.KeepJobs = defaultKeepJobs
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	for name, raw := range map[string]string{
		"source.base_url":       c.SourceConfig.BaseURL,
		"source.cause_list_url": c.SourceConfig.CauseListURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%s must be an absolute http(s) url: %q", name, raw)
		}
	}

	if c.DownloaderConfig.MaxFileSize <= c.DownloaderConfig.MinFileSize {
		return fmt.Errorf("downloader.max_file_size must be greater than min_file_size")
	}

	return nil
}

// Load reads the yaml file (optional), the .env file (optional) and the
// CAUSELIST_* environment, in that order of precedence from lowest to highest.
func Load(cfgPath, envPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", cfgPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config file %s: %w", cfgPath, err)
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot load env file %s: %w", envPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(cfgPath, envPath string) *Config {
	cfg, err := Load(cfgPath, envPath)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() error {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString("LISTEN", &c.Listen)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("REDIS_URL", &c.RedisURL)
	setString("OUTPUT_DIR", &c.DownloaderConfig.OutputDir)
	setString("CAUSELIST_URL", &c.SourceConfig.CauseListURL)
	setString("DATE_PARAM", &c.SourceConfig.DateParam)

	if v, ok := os.LookupEnv(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("cannot parse %sWORKERS: %w", EnvPrefix, err)
		}
		c.DownloaderConfig.Workers = n
	}

	return nil
}
