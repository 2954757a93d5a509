package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mailgate.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
gateway:
  url: https://outlook.office365.com
  timeout_seconds: 45
imap:
  enabled: true
  port: 2143
pop3:
  enabled: true
oauth2:
  tenant_id: tenant
  client_id: client
  client_secret: secret
  scope: https://outlook.office365.com/.default
log_level: debug
`)

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	if cfg.Gateway.URL != "https://outlook.office365.com" {
		t.Errorf("Gateway.URL = %q", cfg.Gateway.URL)
	}
	if cfg.RemoteTimeout() != 45*time.Second {
		t.Errorf("RemoteTimeout = %v, want 45s", cfg.RemoteTimeout())
	}
	if !cfg.IMAP.Enabled || cfg.IMAP.Port != 2143 {
		t.Errorf("IMAP = %+v", cfg.IMAP)
	}
	// pop3 block enables the protocol but inherits the default port
	if !cfg.POP3.Enabled || cfg.POP3.Port != 1110 {
		t.Errorf("POP3 = %+v", cfg.POP3)
	}
	if !cfg.OAuth2.Configured() {
		t.Error("OAuth2.Configured() = false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "gateway:\n  url: https://example.test\n"))
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	if cfg.RemoteTimeout() != 30*time.Second {
		t.Errorf("RemoteTimeout default = %v", cfg.RemoteTimeout())
	}
	if !cfg.IMAP.Enabled || cfg.IMAP.Port != 1143 {
		t.Errorf("IMAP default = %+v", cfg.IMAP)
	}
	if cfg.SMTP.Enabled {
		t.Error("SMTP enabled by default")
	}
	if cfg.LDAP.Port != 1389 {
		t.Errorf("LDAP default port = %d", cfg.LDAP.Port)
	}
	if cfg.OAuth2.Configured() {
		t.Error("OAuth2.Configured() = true with no registration")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigFileMalformed(t *testing.T) {
	if _, err := LoadConfigFile(writeConfig(t, "gateway: [oops")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
