// Package config loads runtime configuration for the agentdesk terminal
// front-end and its launcher.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-p string   pipeline: email, planner or research
//	-d          launcher only: start the CLI detached
//	-x string   launcher only: CLI executable
//	-v string   log level of the front-end
//
// # JSON schema
//
//	{
//	  "pipeline": "planner",
//	  "detached": false,
//	  "cli_binary": "agentdesk-cli",
//	  "client_log_level": "warn"
//	}
//
// Service settings (storage, model keys, S3) come from the server config
// package; both read the same -c file.
package config
