package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// setMinimalEnv sets the required variables for a valid configuration.
func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ZONESYNC_API_URL", "https://panel.example.net")
	t.Setenv("ZONESYNC_USER", "example.com")
	t.Setenv("ZONESYNC_PASS", "hunter2")
	t.Setenv("ZONESYNC_RECORD", "home.example.com")
	t.Setenv("ZONESYNC_IPV4", "1.2.3.4")
}

func TestLoad_Minimal(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Type != record.TypeA {
		t.Errorf("expected default type A, got %s", cfg.Type)
	}
	if cfg.TTL != DefaultTTL {
		t.Errorf("expected default TTL %d, got %d", DefaultTTL, cfg.TTL)
	}
	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("expected default timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.Interval != 0 {
		t.Errorf("expected one-shot mode by default, got interval %v", cfg.Interval)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected logging defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ZONESYNC_API_URL", "")
	t.Setenv("ZONESYNC_USER", "")
	t.Setenv("ZONESYNC_PASS", "")
	t.Setenv("ZONESYNC_RECORD", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for empty configuration")
	}

	msg := err.Error()
	for _, want := range []string{"ZONESYNC_API_URL", "ZONESYNC_USER", "ZONESYNC_PASS", "ZONESYNC_RECORD"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %s in error, got: %s", want, msg)
		}
	}
}

func TestLoad_PassFromSecretFile(t *testing.T) {
	setMinimalEnv(t)

	secretPath := filepath.Join(t.TempDir(), "pass")
	if err := os.WriteFile(secretPath, []byte("  s3cret\n"), 0600); err != nil {
		t.Fatalf("writing secret: %v", err)
	}
	t.Setenv("ZONESYNC_PASS", "")
	t.Setenv("ZONESYNC_PASS_FILE", secretPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pass != "s3cret" {
		t.Errorf("expected trimmed secret file content, got %q", cfg.Pass)
	}
}

func TestLoad_SecretFileTakesPrecedence(t *testing.T) {
	setMinimalEnv(t)

	secretPath := filepath.Join(t.TempDir(), "pass")
	if err := os.WriteFile(secretPath, []byte("from-file"), 0600); err != nil {
		t.Fatalf("writing secret: %v", err)
	}
	t.Setenv("ZONESYNC_PASS_FILE", secretPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pass != "from-file" {
		t.Errorf("expected file to win over direct value, got %q", cfg.Pass)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ZONESYNC_TTL", "abc")
	t.Setenv("ZONESYNC_INTERVAL", "5 minutes")
	t.Setenv("ZONESYNC_LOG_LEVEL", "loud")
	t.Setenv("ZONESYNC_TYPE", "SRV")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msg := err.Error()
	for _, want := range []string{"ZONESYNC_TTL", "ZONESYNC_INTERVAL", "ZONESYNC_LOG_LEVEL", "ZONESYNC_TYPE"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %s in error, got: %s", want, msg)
		}
	}
}

func TestLoad_TypeIsCaseFolded(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ZONESYNC_TYPE", "aaaa")
	t.Setenv("ZONESYNC_IPV6", "2001:db8::1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != record.TypeAAAA {
		t.Errorf("expected AAAA, got %s", cfg.Type)
	}
}

func TestLoad_ContentRequiredForType(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ZONESYNC_IPV4", "")
	t.Setenv("ZONESYNC_IPV6", "2001:db8::1") // wrong family for type A

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when no content matches the record type")
	}
	if !strings.Contains(err.Error(), "no content configured for record type A") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_BadIPAddresses(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ZONESYNC_IPV4", "2001:db8::1")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "ZONESYNC_IPV4") {
		t.Errorf("expected IPv4 validation error, got %v", err)
	}
}

func TestAddresses(t *testing.T) {
	cfg := &Config{
		Type:    record.TypeCNAME,
		IPv4:    "1.2.3.4",
		IPv6:    "2001:db8::1",
		Content: "target.example.net",
	}

	addrs := cfg.Addresses()
	if addrs[record.TypeA] != "1.2.3.4" {
		t.Errorf("expected A content, got %q", addrs[record.TypeA])
	}
	if addrs[record.TypeAAAA] != "2001:db8::1" {
		t.Errorf("expected AAAA content, got %q", addrs[record.TypeAAAA])
	}
	if addrs[record.TypeCNAME] != "target.example.net" {
		t.Errorf("expected CNAME content, got %q", addrs[record.TypeCNAME])
	}
}

func TestAddresses_ContentOverridesIPForType(t *testing.T) {
	cfg := &Config{
		Type:    record.TypeA,
		IPv4:    "1.2.3.4",
		Content: "9.9.9.9",
	}

	if got := cfg.Addresses()[record.TypeA]; got != "9.9.9.9" {
		t.Errorf("expected explicit content to win, got %q", got)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonesync.yaml")
	content := `
panel:
  url: https://panel.example.net
  user: example.com
  pass: hunter2
record:
  name: home.example.com
  type: a
  ttl: 120
  ipv4: 1.2.3.4
sync:
  interval: 5m
  dry_run: true
logging:
  level: debug
  format: json
server:
  health_port: 9090
http:
  timeout: 10s
  tls_skip_verify: true
verify:
  nameserver: 9.9.9.9:53
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ZONESYNC_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://panel.example.net" || cfg.User != "example.com" || cfg.Pass != "hunter2" {
		t.Errorf("panel section not applied: %+v", cfg)
	}
	if cfg.Record != "home.example.com" || cfg.Type != record.TypeA || cfg.TTL != 120 {
		t.Errorf("record section not applied: %+v", cfg)
	}
	if cfg.Interval != 5*time.Minute || !cfg.DryRun {
		t.Errorf("sync section not applied: interval=%v dry_run=%v", cfg.Interval, cfg.DryRun)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging section not applied: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.HealthPort != 9090 {
		t.Errorf("server section not applied: %d", cfg.HealthPort)
	}
	if cfg.HTTPTimeout != 10*time.Second || !cfg.TLSSkipVerify {
		t.Errorf("http section not applied: %v/%v", cfg.HTTPTimeout, cfg.TLSSkipVerify)
	}
	if cfg.VerifyNameserver != "9.9.9.9:53" {
		t.Errorf("verify section not applied: %s", cfg.VerifyNameserver)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonesync.toml")
	content := `
[panel]
url = "https://panel.example.net"
user = "example.com"
pass = "hunter2"

[record]
name = "home.example.com"
ipv4 = "1.2.3.4"
ttl = 60
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ZONESYNC_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Record != "home.example.com" || cfg.TTL != 60 || cfg.IPv4 != "1.2.3.4" {
		t.Errorf("TOML config not applied: %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonesync.yaml")
	content := `
panel:
  url: https://panel.example.net
  user: example.com
  pass: from-file
record:
  name: home.example.com
  ipv4: 1.2.3.4
  ttl: 60
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("ZONESYNC_CONFIG", path)
	t.Setenv("ZONESYNC_PASS", "from-env")
	t.Setenv("ZONESYNC_TTL", "600")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pass != "from-env" {
		t.Errorf("expected env to override file, got %q", cfg.Pass)
	}
	if cfg.TTL != 600 {
		t.Errorf("expected env TTL 600, got %d", cfg.TTL)
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonesync.ini")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported config file extension") {
		t.Errorf("expected extension error, got %v", err)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBool(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
