package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/filehost/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   storage root directory
//	-t int      session idle timeout, minutes (0 disables expiry)
//	-m int      max upload size, megabytes
//	-w string   HTML template directory
//	-s string   static assets directory
//	-l string   log format ("json" or "text")
//	-k          mark the session cookie Secure
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags consumed
// by the JSON loader.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-m", "-w", "-s", "-l", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.StorageRoot, "d", config.StorageRoot, "storage root directory")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session idle timeout (in minutes, 0 disables)")
	maxUpload := fs.Int64("m", config.MaxUploadBytes>>20, "max upload size (in megabytes)")

	fs.StringVar(&config.TemplateDir, "w", config.TemplateDir, "HTML template directory")
	fs.StringVar(&config.StaticDir, "s", config.StaticDir, "static assets directory")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json or text)")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "set Secure on the session cookie")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.MaxUploadBytes = *maxUpload << 20
}
