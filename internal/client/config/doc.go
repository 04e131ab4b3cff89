// Package config loads runtime configuration for the mediagate operator CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. MEDIAGATE_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the command service
//	-u string   caller identity to act as
//	-s string   service secret shared with the command service
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "caller_id": "123456",
//	  "service_secret": "secretKey",
//	  "caller_token_validity": "5m"
//	}
package config
