// Package config loads the pager configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/pager/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	api_bind = "127.0.0.1:7487"    # Spindle API host:port
//	page_size = 50                 # items per page, 1..500
//	prefetch_distance = 5          # rows from the end that trigger an append
//	log_level = "info"             # any logrus level
//	log_format = "text"            # text or json
//	log_file = "~/.local/state/pager/pager.log"
//	metrics_addr = ""              # e.g. "127.0.0.1:9464"; empty disables /metrics
//
//	[logs]
//	component = ""                 # filter for the log feed
//	level = ""
//	follow = "2s"                  # poll for new events; "0s" disables
//
//	[demo]
//	listen = "127.0.0.1:7487"
//	items = 120
//	latency = "150ms"
//	fail_every = 0                 # answer every Nth request with 503
//
// Tilde expansion is performed for the config path and log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Values outside their valid range (see Validate)
//
// Missing config files are NOT an error.
package config
