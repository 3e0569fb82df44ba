// Package config handles loading and validation of zonesync configuration
// from environment variables and an optional YAML or TOML file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Defaults applied when neither environment nor file set a value.
const (
	DefaultTTL         = 300
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the complete runtime configuration.
// Values are parsed from ZONESYNC_* environment variables, which override
// the optional config file named by ZONESYNC_CONFIG.
type Config struct {
	// Panel account and endpoint
	APIURL string
	User   string
	Pass   string

	// Desired record
	Record  string // fully-qualified record identifier, e.g. "home.example.com"
	Type    record.Type
	TTL     int
	IPv4    string // content for A records
	IPv6    string // content for AAAA records
	Content string // content for the configured type, overrides IPv4/IPv6

	// Run mode
	Interval time.Duration // 0 = one-shot
	DryRun   bool

	// Observability
	LogLevel   string
	LogFormat  string
	HealthPort int // 0 = no health/metrics server

	// HTTP client
	HTTPTimeout   time.Duration
	TLSSkipVerify bool
	UserAgent     string

	// Post-sync verification; empty disables it
	VerifyNameserver string
}

// ValidationError collects all configuration problems found during Load.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load builds the configuration from the optional config file and the
// environment, validates it and returns all problems at once.
func Load() (*Config, error) {
	cfg := &Config{
		Type:        record.TypeA,
		TTL:         DefaultTTL,
		HTTPTimeout: DefaultHTTPTimeout,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}

	var errs []string

	if path := getEnv("ZONESYNC_CONFIG"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			errs = append(errs, "config file: "+err.Error())
		} else {
			fileCfg.apply(cfg)
		}
	}

	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, validate(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// applyEnv overlays ZONESYNC_* environment variables onto cfg.
func applyEnv(cfg *Config) []string {
	var errs []string

	setString := func(key string, dst *string) {
		if v := getEnv(key); v != "" {
			*dst = v
		}
	}

	setString("ZONESYNC_API_URL", &cfg.APIURL)
	setString("ZONESYNC_USER", &cfg.User)
	if v := getEnvOrFile("ZONESYNC_PASS", "ZONESYNC_PASS_FILE"); v != "" {
		cfg.Pass = v
	}
	setString("ZONESYNC_RECORD", &cfg.Record)
	setString("ZONESYNC_IPV4", &cfg.IPv4)
	setString("ZONESYNC_IPV6", &cfg.IPv6)
	setString("ZONESYNC_CONTENT", &cfg.Content)
	setString("ZONESYNC_LOG_LEVEL", &cfg.LogLevel)
	setString("ZONESYNC_LOG_FORMAT", &cfg.LogFormat)
	setString("ZONESYNC_USER_AGENT", &cfg.UserAgent)
	setString("ZONESYNC_VERIFY_NS", &cfg.VerifyNameserver)

	if v := getEnv("ZONESYNC_TYPE"); v != "" {
		cfg.Type = record.Type(strings.ToUpper(v))
	}

	if v := getEnv("ZONESYNC_TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_TTL: invalid integer %q", v))
		} else {
			cfg.TTL = ttl
		}
	}

	if v := getEnv("ZONESYNC_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_INTERVAL: invalid duration %q (use format like 60s, 5m)", v))
		} else {
			cfg.Interval = interval
		}
	}

	if v := getEnv("ZONESYNC_HTTP_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_HTTP_TIMEOUT: invalid duration %q", v))
		} else {
			cfg.HTTPTimeout = timeout
		}
	}

	if v := getEnv("ZONESYNC_HEALTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_HEALTH_PORT: invalid integer %q", v))
		} else {
			cfg.HealthPort = port
		}
	}

	if v := getEnv("ZONESYNC_DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, cfg.DryRun)
	}
	if v := getEnv("ZONESYNC_TLS_SKIP_VERIFY"); v != "" {
		cfg.TLSSkipVerify = parseBool(v, cfg.TLSSkipVerify)
	}

	return errs
}

// validate checks the assembled configuration.
func validate(cfg *Config) []string {
	var errs []string

	if cfg.APIURL == "" {
		errs = append(errs, "ZONESYNC_API_URL is required")
	}
	if cfg.User == "" {
		errs = append(errs, "ZONESYNC_USER is required")
	}
	if cfg.Pass == "" {
		errs = append(errs, "ZONESYNC_PASS is required")
	}
	if cfg.Record == "" {
		errs = append(errs, "ZONESYNC_RECORD is required")
	}

	if !record.ValidType(cfg.Type) {
		errs = append(errs, fmt.Sprintf("ZONESYNC_TYPE: unsupported record type %q", cfg.Type))
	}

	if cfg.TTL < 1 {
		errs = append(errs, "ZONESYNC_TTL: must be at least 1")
	}

	if cfg.Interval < 0 {
		errs = append(errs, "ZONESYNC_INTERVAL: must not be negative")
	}
	if cfg.HealthPort < 0 || cfg.HealthPort > 65535 {
		errs = append(errs, fmt.Sprintf("ZONESYNC_HEALTH_PORT: invalid port %d", cfg.HealthPort))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("ZONESYNC_LOG_LEVEL: invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel))
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("ZONESYNC_LOG_FORMAT: invalid value %q (must be json or text)", cfg.LogFormat))
	}

	if cfg.IPv4 != "" {
		if ip := net.ParseIP(cfg.IPv4); ip == nil || ip.To4() == nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_IPV4: not an IPv4 address: %q", cfg.IPv4))
		}
	}
	if cfg.IPv6 != "" {
		if ip := net.ParseIP(cfg.IPv6); ip == nil || ip.To4() != nil {
			errs = append(errs, fmt.Sprintf("ZONESYNC_IPV6: not an IPv6 address: %q", cfg.IPv6))
		}
	}

	if _, ok := cfg.Addresses()[cfg.Type]; record.ValidType(cfg.Type) && !ok {
		errs = append(errs, fmt.Sprintf("no content configured for record type %s (set ZONESYNC_CONTENT, ZONESYNC_IPV4 or ZONESYNC_IPV6)", cfg.Type))
	}

	return errs
}

// Addresses returns the resolved record content keyed by record type, the
// shape the syncer consumes. Content wins over the per-family IP settings
// for the configured type.
func (c *Config) Addresses() map[record.Type]string {
	addrs := make(map[record.Type]string)
	if c.IPv4 != "" {
		addrs[record.TypeA] = c.IPv4
	}
	if c.IPv6 != "" {
		addrs[record.TypeAAAA] = c.IPv6
	}
	if c.Content != "" {
		addrs[c.Type] = c.Content
	}
	return addrs
}
