package config

import (
	"flag"
	"os"

	"github.com/voicetasker/voicetasker/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   path of the local metadata database
//	-f string   audio file used as the capture source
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL to access server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path of the local metadata database")
	fs.StringVar(&cfg.AudioSourcePath, "f", cfg.AudioSourcePath, "audio file used as the capture source")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
