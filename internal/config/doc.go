// Package config handles configuration loading for voicegate.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${VOICEGATE_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	challenge:
//	  expiry: "60s"
//	controller:
//	  timeout: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:5000"
//
// Database:
//
//	database:
//	  path: "/var/lib/voicegate/voicegate.db"
//
// Authentication (admin API):
//
//	auth:
//	  jwt_secret: "${VOICEGATE_JWT_SECRET}"
//	  token_ttl: "24h"
//
// Challenge behavior:
//
//	challenge:
//	  expiry: "60s"
//	  max_attempts: 3
//	  words: [apple, banana]    # optional, defaults built in
//	  numbers: [one, two]       # optional, defaults built in
//
// Tenancy:
//
//	tenancy:
//	  default_home_id: "home_1"  # fallback for unmapped callers
//
// Home controller (seeds the default home's registry entry):
//
//	controller:
//	  url: "http://homeassistant.local:8123"
//	  webhook_id: "night_scene_trigger"
//	  timeout: "10s"
//	  test_mode: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/voicegate/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
