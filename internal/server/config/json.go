package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/filehost/internal/flagx"
	"github.com/dmitrijs2005/filehost/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	StorageRoot    string         `json:"storage_root"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	MaxUploadBytes int64          `json:"max_upload_bytes"`
	TemplateDir    string         `json:"template_dir"`
	StaticDir      string         `json:"static_dir"`
	LogFormat      string         `json:"log_format"`
	CookieSecure   bool           `json:"cookie_secure"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a half-applied configuration
// is worse than refusing to start.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ListenAddr = c.ListenAddr
	config.StorageRoot = c.StorageRoot
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.MaxUploadBytes = c.MaxUploadBytes
	config.TemplateDir = c.TemplateDir
	config.StaticDir = c.StaticDir
	config.LogFormat = c.LogFormat
	config.CookieSecure = c.CookieSecure
}
