package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/sealnote/internal/flagx"
)

var knownFlags = []string{"-a", "-o", "-t", "-r", "-d", "-l", "-s"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string   store base URL
//	-o string   public origin for share links
//	-t int      request timeout in seconds
//	-r int      retries on transient failures
//	-d string   link history database file
//	-l string   log level (debug|info|warn|error)
//	-s string   cipher scheme for new content (openssl|sealed)
//
// Unknown arguments are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("sealnote", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "store base URL")
	fs.StringVar(&cfg.PublicOrigin, "o", cfg.PublicOrigin, "public origin for share links")
	timeout := fs.Int("t", int(cfg.RequestTimeout/time.Second), "request timeout (in seconds)")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "retries on transient failures")
	fs.StringVar(&cfg.HistoryDB, "d", cfg.HistoryDB, "link history database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.CipherScheme, "s", cfg.CipherScheme, "cipher scheme for new content")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
