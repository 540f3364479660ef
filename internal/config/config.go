// Package config loads gmailpack settings through viper: defaults, an
// optional YAML file, GMAILPACK_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joshsymonds/gmailpack/internal/outbound"
)

const envPrefix = "GMAILPACK"

// Output formats understood by the render package.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	AuthDir          string        `mapstructure:"auth_dir"`
	AccessToken      string        `mapstructure:"access_token"`
	KeyringService   string        `mapstructure:"keyring_service"`
	RPS              int           `mapstructure:"rps"`
	Concurrency      int           `mapstructure:"concurrency"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	CacheSize        int           `mapstructure:"cache_size"`
	PageSize         int           `mapstructure:"page_size"`
	MaxResults       int           `mapstructure:"max_results"`
	IncludeSpamTrash bool          `mapstructure:"include_spam_trash"`
	Output           string        `mapstructure:"output"`
	LogLevel         string        `mapstructure:"log_level"`
	Branding         Branding      `mapstructure:"branding"`
}

// Branding configures the "Sent via" trailer on outgoing mail.
type Branding struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	DocID       string `mapstructure:"doc_id"`
	FallbackURL string `mapstructure:"fallback_url"`
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	home, _ := os.UserHomeDir()
	v.SetDefault("auth_dir", filepath.Join(home, ".gmailctl"))
	v.SetDefault("access_token", "")
	v.SetDefault("keyring_service", "")
	v.SetDefault("rps", 4)
	v.SetDefault("concurrency", 10)
	v.SetDefault("cache_ttl", 30*time.Minute)
	v.SetDefault("cache_size", 512)
	v.SetDefault("page_size", 40)
	v.SetDefault("max_results", 250)
	v.SetDefault("include_spam_trash", false)
	v.SetDefault("output", OutputJSON)
	v.SetDefault("log_level", "info")
	v.SetDefault("branding.enabled", true)
	v.SetDefault("branding.host", "")
	v.SetDefault("branding.doc_id", "")
	v.SetDefault("branding.fallback_url", outbound.DefaultFallbackURL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the YAML file at path into v. A missing file is not an
// error; the defaults stand.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	s.Output = strings.ToLower(strings.TrimSpace(s.Output))
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.Output {
	case OutputJSON, OutputYAML, OutputText:
	default:
		return fmt.Errorf("output must be one of json, yaml, text; got %q", s.Output)
	}
	if s.RPS <= 0 {
		return fmt.Errorf("rps must be positive, got %d", s.RPS)
	}
	if s.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}
	if s.PageSize <= 0 || s.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500, got %d", s.PageSize)
	}
	if s.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative, got %d", s.MaxResults)
	}
	if s.CacheTTL < 0 || s.CacheSize < 0 {
		return fmt.Errorf("cache settings must not be negative")
	}
	return nil
}

// OutboundBranding returns the trailer settings for sends, or nil when
// branding is disabled.
func (s Settings) OutboundBranding() *outbound.Branding {
	if !s.Branding.Enabled {
		return nil
	}
	return &outbound.Branding{
		Location:    &outbound.Location{ProtocolAndHost: s.Branding.Host, DocID: s.Branding.DocID},
		FallbackURL: s.Branding.FallbackURL,
	}
}
