// Package config loads runtime configuration for the sealnote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   store base URL (default http://127.0.0.1:5001)
//	-o string   public origin for share links (default: store URL)
//	-t int      request timeout in seconds (default 10)
//	-r int      retries on transient failures (default 3)
//	-d string   link history database (default links.db)
//	-l string   log level (default info)
//	-s string   cipher scheme for new content (default openssl)
//
// # JSON schema
//
// Durations may be strings like "10s" or integer nanoseconds:
//
//	{
//	  "backend_url": "https://notes.example.com",
//	  "public_origin": "https://notes.example.com",
//	  "request_timeout": "10s",
//	  "max_retries": 3,
//	  "retry_base_delay": "1s",
//	  "requests_per_second": 5,
//	  "history_db": "links.db",
//	  "download_dir": "downloads",
//	  "log_level": "info",
//	  "cipher_scheme": "openssl"
//	}
package config
