package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// FileConfig is the config file structure. The format is chosen by file
// extension: .yaml/.yml or .toml.
type FileConfig struct {
	Panel   *FilePanelConfig   `yaml:"panel,omitempty" toml:"panel"`
	Record  *FileRecordConfig  `yaml:"record,omitempty" toml:"record"`
	Sync    *FileSyncConfig    `yaml:"sync,omitempty" toml:"sync"`
	Logging *FileLoggingConfig `yaml:"logging,omitempty" toml:"logging"`
	Server  *FileServerConfig  `yaml:"server,omitempty" toml:"server"`
	HTTP    *FileHTTPConfig    `yaml:"http,omitempty" toml:"http"`
	Verify  *FileVerifyConfig  `yaml:"verify,omitempty" toml:"verify"`
}

// FilePanelConfig holds the panel endpoint and account.
type FilePanelConfig struct {
	URL  string `yaml:"url,omitempty" toml:"url"`
	User string `yaml:"user,omitempty" toml:"user"`
	Pass string `yaml:"pass,omitempty" toml:"pass"`
}

// FileRecordConfig holds the desired record.
type FileRecordConfig struct {
	Name    string `yaml:"name,omitempty" toml:"name"` // fully-qualified, e.g. "home.example.com"
	Type    string `yaml:"type,omitempty" toml:"type"`
	TTL     int    `yaml:"ttl,omitempty" toml:"ttl"`
	IPv4    string `yaml:"ipv4,omitempty" toml:"ipv4"`
	IPv6    string `yaml:"ipv6,omitempty" toml:"ipv6"`
	Content string `yaml:"content,omitempty" toml:"content"`
}

// FileSyncConfig holds run-mode settings.
type FileSyncConfig struct {
	Interval string `yaml:"interval,omitempty" toml:"interval"` // Go duration format
	DryRun   *bool  `yaml:"dry_run,omitempty" toml:"dry_run"`   // pointer to distinguish unset from false
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format"` // json, text
}

// FileServerConfig holds the health/metrics server settings.
type FileServerConfig struct {
	HealthPort int `yaml:"health_port,omitempty" toml:"health_port"`
}

// FileHTTPConfig holds HTTP client settings.
type FileHTTPConfig struct {
	Timeout       string `yaml:"timeout,omitempty" toml:"timeout"`
	TLSSkipVerify *bool  `yaml:"tls_skip_verify,omitempty" toml:"tls_skip_verify"`
	UserAgent     string `yaml:"user_agent,omitempty" toml:"user_agent"`
}

// FileVerifyConfig holds post-sync verification settings.
type FileVerifyConfig struct {
	Nameserver string `yaml:"nameserver,omitempty" toml:"nameserver"`
}

// LoadFile parses a config file, selecting the format by extension.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (use .yaml, .yml or .toml)", ext)
	}

	return &cfg, nil
}

// apply overlays the file values onto cfg, leaving unset fields alone.
// Duration strings that fail to parse are ignored here; the corresponding
// environment variables remain the authoritative way to set them strictly.
func (f *FileConfig) apply(cfg *Config) {
	if f.Panel != nil {
		if f.Panel.URL != "" {
			cfg.APIURL = f.Panel.URL
		}
		if f.Panel.User != "" {
			cfg.User = f.Panel.User
		}
		if f.Panel.Pass != "" {
			cfg.Pass = f.Panel.Pass
		}
	}

	if f.Record != nil {
		if f.Record.Name != "" {
			cfg.Record = f.Record.Name
		}
		if f.Record.Type != "" {
			cfg.Type = record.Type(strings.ToUpper(f.Record.Type))
		}
		if f.Record.TTL != 0 {
			cfg.TTL = f.Record.TTL
		}
		if f.Record.IPv4 != "" {
			cfg.IPv4 = f.Record.IPv4
		}
		if f.Record.IPv6 != "" {
			cfg.IPv6 = f.Record.IPv6
		}
		if f.Record.Content != "" {
			cfg.Content = f.Record.Content
		}
	}

	if f.Sync != nil {
		if f.Sync.Interval != "" {
			if d, err := time.ParseDuration(f.Sync.Interval); err == nil {
				cfg.Interval = d
			}
		}
		if f.Sync.DryRun != nil {
			cfg.DryRun = *f.Sync.DryRun
		}
	}

	if f.Logging != nil {
		if f.Logging.Level != "" {
			cfg.LogLevel = f.Logging.Level
		}
		if f.Logging.Format != "" {
			cfg.LogFormat = f.Logging.Format
		}
	}

	if f.Server != nil && f.Server.HealthPort != 0 {
		cfg.HealthPort = f.Server.HealthPort
	}

	if f.HTTP != nil {
		if f.HTTP.Timeout != "" {
			if d, err := time.ParseDuration(f.HTTP.Timeout); err == nil {
				cfg.HTTPTimeout = d
			}
		}
		if f.HTTP.TLSSkipVerify != nil {
			cfg.TLSSkipVerify = *f.HTTP.TLSSkipVerify
		}
		if f.HTTP.UserAgent != "" {
			cfg.UserAgent = f.HTTP.UserAgent
		}
	}

	if f.Verify != nil && f.Verify.Nameserver != "" {
		cfg.VerifyNameserver = f.Verify.Nameserver
	}
}
