package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// ProtocolConfig enables one gateway protocol listener.
type ProtocolConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// OAuth2Config is the static app registration used for bearer authentication
// against the remote groupware API. Loaded once at process start and shared
// read-only.
type OAuth2Config struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	Scope        string `yaml:"scope"`
	Authority    string `yaml:"authority"`
	// AuthCode is an authorization code obtained out-of-band; when set the
	// first token acquisition uses the authorization-code grant.
	AuthCode string `yaml:"auth_code"`
	// TokenStore is an optional sqlite file persisting refresh tokens across
	// gateway restarts.
	TokenStore string `yaml:"token_store"`
}

// Configured reports whether an OAuth2 registration is present at all.
func (c OAuth2Config) Configured() bool {
	return c.TenantID != "" || c.ClientID != ""
}

// Config is the gateway configuration, loaded once at startup.
type Config struct {
	Gateway struct {
		// URL is the remote groupware endpoint, e.g.
		// https://outlook.office365.com
		URL string `yaml:"url"`
		// TimeoutSeconds bounds every remote HTTP call.
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"gateway"`

	IMAP   ProtocolConfig `yaml:"imap"`
	POP3   ProtocolConfig `yaml:"pop3"`
	SMTP   ProtocolConfig `yaml:"smtp"`
	CalDAV ProtocolConfig `yaml:"caldav"`
	LDAP   ProtocolConfig `yaml:"ldap"`

	OAuth2 OAuth2Config `yaml:"oauth2"`

	LogLevel string `yaml:"log_level"`
}

// RemoteTimeout returns the per-call timeout for remote API requests.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Gateway.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// Default ports match the legacy gateway's conventions.
func defaults() *Config {
	cfg := &Config{}
	cfg.Gateway.TimeoutSeconds = 30
	cfg.IMAP = ProtocolConfig{Enabled: true, Port: 1143}
	cfg.POP3 = ProtocolConfig{Port: 1110}
	cfg.SMTP = ProtocolConfig{Port: 1025}
	cfg.CalDAV = ProtocolConfig{Port: 1080}
	cfg.LDAP = ProtocolConfig{Port: 1389}
	cfg.LogLevel = "info"
	return cfg
}

// LoadConfig reads the first config file found on the search path.
func LoadConfig() (*Config, error) {
	configPaths := []string{
		"/etc/mailgate/mailgate.yaml",
		"./config/mailgate.yaml",
		"./mailgate.yaml",
	}

	var data []byte
	var err error
	for _, path := range configPaths {
		data, err = os.ReadFile(filepath.Clean(path))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return parse(data)
}

// LoadConfigFile reads a specific config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
