// Package config loads the proxy's YAML configuration file: one record
// per listener plus ambient knobs (metrics, admin feed, whitelist,
// MOTD).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document.
type Config struct {
	Listeners []ListenerConfig `yaml:"listeners"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Admin     AdminConfig      `yaml:"admin"`
}

// ListenerConfig describes one proxied frontend/backend pair.
type ListenerConfig struct {
	Name string `yaml:"name"`

	ListenAddr string `yaml:"listen_addr"`

	BackendAddr string `yaml:"backend_addr"`
	BackendPort uint16 `yaml:"backend_port"`

	// OnlineStatus selects "online" (encrypted, session-server or no
	// attestation) or "offline" (no encryption subprotocol).
	OnlineStatus string `yaml:"online_status"`

	// Auth selects "session_server" or "none". Only meaningful when
	// OnlineStatus is "online".
	Auth             string `yaml:"auth"`
	SessionServerURL string `yaml:"session_server_url"`

	// Whitelist selects "open" or "file". WhitelistPath is required for
	// "file".
	Whitelist     string `yaml:"whitelist"`
	WhitelistPath string `yaml:"whitelist_path"`

	MOTDPath    string `yaml:"motd_path"`
	FaviconPath string `yaml:"favicon_path"`
}

// MetricsConfig controls the optional Prometheus-text exporter.
type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

// AdminConfig controls the optional admin WebSocket event feed.
type AdminConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

const (
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultAdminAddr   = "127.0.0.1:9101"
	defaultOnline      = "online"
	defaultAuth        = "session_server"
	defaultWhitelist   = "open"
)

// Load reads and validates the YAML configuration at path, filling in
// defaults the same way the rest of the proxy expects.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if len(c.Listeners) == 0 {
		return nil, fmt.Errorf("config: no listeners configured")
	}
	for i := range c.Listeners {
		l := &c.Listeners[i]
		if l.Name == "" {
			return nil, fmt.Errorf("config: listener %d: name is required", i)
		}
		if l.ListenAddr == "" {
			return nil, fmt.Errorf("config: listener %q: listen_addr is required", l.Name)
		}
		if l.BackendAddr == "" {
			return nil, fmt.Errorf("config: listener %q: backend_addr is required", l.Name)
		}
		if l.BackendPort == 0 {
			return nil, fmt.Errorf("config: listener %q: backend_port is required", l.Name)
		}
		if l.OnlineStatus == "" {
			l.OnlineStatus = defaultOnline
		}
		if l.OnlineStatus != "online" && l.OnlineStatus != "offline" {
			return nil, fmt.Errorf("config: listener %q: online_status must be online or offline", l.Name)
		}
		if l.Auth == "" {
			l.Auth = defaultAuth
		}
		if l.Auth != "session_server" && l.Auth != "none" {
			return nil, fmt.Errorf("config: listener %q: auth must be session_server or none", l.Name)
		}
		if l.Whitelist == "" {
			l.Whitelist = defaultWhitelist
		}
		if l.Whitelist != "open" && l.Whitelist != "file" {
			return nil, fmt.Errorf("config: listener %q: whitelist must be open or file", l.Name)
		}
		if l.Whitelist == "file" && l.WhitelistPath == "" {
			return nil, fmt.Errorf("config: listener %q: whitelist_path is required for whitelist=file", l.Name)
		}
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = defaultMetricsAddr
	}
	if c.Admin.Addr == "" {
		c.Admin.Addr = defaultAdminAddr
	}

	return &c, nil
}

// BackendHostPort renders a listener's backend address as host:port.
func (l ListenerConfig) BackendHostPort() string {
	return fmt.Sprintf("%s:%d", l.BackendAddr, l.BackendPort)
}
