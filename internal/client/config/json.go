package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealnote/internal/flagx"
	"github.com/dmitrijs2005/sealnote/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Durations use
// timex.Duration, so "10s" and integer nanoseconds are both accepted.
// Absent keys leave the current value untouched.
type JsonConfig struct {
	BackendURL        string          `json:"backend_url"`
	PublicOrigin      string          `json:"public_origin"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	MaxRetries        *int            `json:"max_retries"`
	RetryBaseDelay    *timex.Duration `json:"retry_base_delay"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	HistoryDB         string          `json:"history_db"`
	DownloadDir       string          `json:"download_dir"`
	LogLevel          string          `json:"log_level"`
	CipherScheme      string          `json:"cipher_scheme"`
}

// parseJson overlays cfg with the JSON file selected by -c or -config.
// Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.PublicOrigin, jc.PublicOrigin)
	setString(&cfg.HistoryDB, jc.HistoryDB)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.CipherScheme, jc.CipherScheme)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
