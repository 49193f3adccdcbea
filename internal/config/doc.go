// Package config loads the solo client and caching agent configuration.
//
// # Overview
//
// Configuration lives in a TOML file. Every field has a default, so a
// missing file is not an error. SOLO_* environment variables override
// file values, and LoadEnvFile can seed them from a .env file first.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/solo/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply SOLO_* environment overrides
//
// # Default Values
//
//   - Server: 127.0.0.1:8000
//   - Log file: ~/.local/share/solo/solo.log
//   - Scan interval: 30s
//   - Request timeout: 8s
//   - Agent strategy: stale-while-populate, listening on 127.0.0.1:8080
//   - Agent cache: memory driver, ~/.cache/solo for fs and sqlite
//
// # TOML Format
//
//	server = "127.0.0.1:8000"
//	log_file = "~/.local/share/solo/solo.log"
//	scan_interval = "30s"
//
//	[agent]
//	strategy = "network-first"
//	cache_driver = "sqlite"
//	version = "v3"
//	assets = ["/", "/static/app.js?v"]
//	nats_url = "nats://127.0.0.1:4222"
//	watch_config = true
//
// # Environment Overrides
//
//	SOLO_SERVER, SOLO_LOG_FILE, SOLO_SCAN_INTERVAL,
//	SOLO_AGENT_STRATEGY, SOLO_AGENT_LISTEN,
//	SOLO_CACHE_DRIVER, SOLO_CACHE_PATH, SOLO_NATS_URL
//
// # Path Expansion
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute. If expansion fails, the original path is used unchanged.
package config
