// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the filehost server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - StorageRoot: directory holding the user journal and per-user file
//     subtrees.
//   - SessionTTL: idle timeout for live sessions; 0 disables expiry.
//   - MaxUploadBytes: cap on a single multipart upload.
//   - TemplateDir / StaticDir: locations of HTML templates and static assets.
//   - LogFormat: "json" for slog JSON output, "text" for the colored
//     development handler.
//   - CookieSecure: set the Secure attribute on the session cookie.
type Config struct {
	ListenAddr     string
	StorageRoot    string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	TemplateDir    string
	StaticDir      string
	LogFormat      string
	CookieSecure   bool
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.StorageRoot = "database"
	c.SessionTTL = 24 * time.Hour
	c.MaxUploadBytes = 1024 << 20
	c.TemplateDir = "web/html"
	c.StaticDir = "web/static"
	c.LogFormat = "json"
	c.CookieSecure = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
