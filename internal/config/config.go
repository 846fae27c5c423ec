// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/naka-gawa/drucred/internal/store"
)

// Keys understood by the configuration layer. Environment variables use the
// DRUCRED_ prefix with dots replaced by underscores, e.g. DRUCRED_API_TOKEN.
const (
	KeyAPIBaseURL     = "api.base_url"
	KeyAPIUserAgent   = "api.user_agent"
	KeyAPIToken       = "api.token"
	KeyAPIStatusFixed = "api.status_fixed"
	KeyAPIPageLimit   = "api.page_limit"
	KeyAPIRetries     = "api.retries"
	KeyAPIBackoffStep = "api.backoff_step"
	KeyAPIErrorDelay  = "api.error_delay"
	KeyAPIPageDelay   = "api.page_delay"
	KeyAPIIssueDelay  = "api.issue_delay"
	KeyCacheDir       = "cache.dir"
	KeyCacheStore     = "cache.store"
	KeyCacheRefresh   = "cache.refresh"
	KeyReportOutput   = "report.output_dir"
	KeyReportTopN     = "report.top_n"
	KeyLogLevel       = "log.level"
)

// Config holds all configuration parameters for the application.
type Config struct {
	API      APIConfig
	Cache    CacheConfig
	Report   ReportConfig
	LogLevel string
}

// APIConfig holds the issue tracker settings.
type APIConfig struct {
	BaseURL     string
	UserAgent   string
	Token       string
	StatusFixed int
	PageLimit   int
	Retries     int
	BackoffStep time.Duration
	ErrorDelay  time.Duration
	PageDelay   time.Duration
	IssueDelay  time.Duration
}

// CacheConfig holds the local cache settings.
type CacheConfig struct {
	Dir     string
	Store   string
	Refresh bool
}

// ReportConfig holds the report output settings.
type ReportConfig struct {
	OutputDir string
	TopN      int
}

// New returns a viper instance carrying the defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DRUCRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIBaseURL, "https://www.drupal.org/api-d7")
	v.SetDefault(KeyAPIUserAgent, "drucred/1.0")
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyAPIStatusFixed, 7)
	v.SetDefault(KeyAPIPageLimit, 50)
	v.SetDefault(KeyAPIRetries, 5)
	v.SetDefault(KeyAPIBackoffStep, 5*time.Second)
	v.SetDefault(KeyAPIErrorDelay, 3*time.Second)
	v.SetDefault(KeyAPIPageDelay, time.Second)
	v.SetDefault(KeyAPIIssueDelay, time.Second)
	v.SetDefault(KeyCacheDir, "data")
	v.SetDefault(KeyCacheStore, store.KindFile)
	v.SetDefault(KeyCacheRefresh, false)
	v.SetDefault(KeyReportOutput, "output")
	v.SetDefault(KeyReportTopN, 10)
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// Load reads the optional config file and builds a validated Config from v.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:     strings.TrimRight(v.GetString(KeyAPIBaseURL), "/"),
			UserAgent:   v.GetString(KeyAPIUserAgent),
			Token:       v.GetString(KeyAPIToken),
			StatusFixed: v.GetInt(KeyAPIStatusFixed),
			PageLimit:   v.GetInt(KeyAPIPageLimit),
			Retries:     v.GetInt(KeyAPIRetries),
			BackoffStep: v.GetDuration(KeyAPIBackoffStep),
			ErrorDelay:  v.GetDuration(KeyAPIErrorDelay),
			PageDelay:   v.GetDuration(KeyAPIPageDelay),
			IssueDelay:  v.GetDuration(KeyAPIIssueDelay),
		},
		Cache: CacheConfig{
			Dir:     v.GetString(KeyCacheDir),
			Store:   strings.ToLower(v.GetString(KeyCacheStore)),
			Refresh: v.GetBool(KeyCacheRefresh),
		},
		Report: ReportConfig{
			OutputDir: v.GetString(KeyReportOutput),
			TopN:      v.GetInt(KeyReportTopN),
		},
		LogLevel: v.GetString(KeyLogLevel),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig rejects values the pipeline cannot run with.
func validateConfig(cfg *Config) error {
	var problems []string

	if cfg.API.BaseURL == "" {
		problems = append(problems, KeyAPIBaseURL+" must not be empty")
	}
	if cfg.API.PageLimit <= 0 {
		problems = append(problems, KeyAPIPageLimit+" must be positive")
	}
	if cfg.API.Retries <= 0 {
		problems = append(problems, KeyAPIRetries+" must be positive")
	}
	if cfg.Report.TopN <= 0 {
		problems = append(problems, KeyReportTopN+" must be positive")
	}
	if cfg.Cache.Dir == "" {
		problems = append(problems, KeyCacheDir+" must not be empty")
	}
	if cfg.Report.OutputDir == "" {
		problems = append(problems, KeyReportOutput+" must not be empty")
	}
	switch cfg.Cache.Store {
	case store.KindFile, store.KindBolt:
	default:
		problems = append(problems, fmt.Sprintf("%s must be %q or %q, got %q", KeyCacheStore, store.KindFile, store.KindBolt, cfg.Cache.Store))
	}
	for key, d := range map[string]time.Duration{
		KeyAPIBackoffStep: cfg.API.BackoffStep,
		KeyAPIErrorDelay:  cfg.API.ErrorDelay,
		KeyAPIPageDelay:   cfg.API.PageDelay,
		KeyAPIIssueDelay:  cfg.API.IssueDelay,
	} {
		if d < 0 {
			problems = append(problems, key+" must not be negative")
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
