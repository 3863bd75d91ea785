package config

// Config holds runtime settings for the VoiceTasker CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP endpoint.
//   - DatabaseDSN: path of the local SQLite metadata store. Empty disables
//     local storage and the client falls back to the guest sentinel.
//   - AudioSourcePath: audio file the capture source reads from.
type Config struct {
	ServerBaseURL   string
	DatabaseDSN     string
	AudioSourcePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "voicetasker.db"
	c.AudioSourcePath = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
