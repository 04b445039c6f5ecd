package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the sealnote CLI.
type Config struct {
	BackendURL        string
	PublicOrigin      string
	RequestTimeout    time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerSecond float64
	HistoryDB         string
	DownloadDir       string
	LogLevel          string
	CipherScheme      string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:5001"
	c.PublicOrigin = ""
	c.RequestTimeout = 10 * time.Second
	c.MaxRetries = 3
	c.RetryBaseDelay = time.Second
	c.RequestsPerSecond = 5
	c.HistoryDB = "links.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.CipherScheme = "openssl"
}

// Origin returns the origin used in share links.
func (c *Config) Origin() string {
	if c.PublicOrigin != "" {
		return c.PublicOrigin
	}
	return c.BackendURL
}

// Load applies defaults, then the JSON file named by -c/-config in args, then
// the flags in args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments. It panics on bad input.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
