// Package config loads the ColdKeys daemon configuration.
//
// Configuration comes from three layers, later layers winning:
//   - built-in defaults (Default)
//   - an optional YAML file (config.yaml under the user config dir, or --config)
//   - COLDKEYS_* environment variables
//
// Command line flags are applied on top by the caller.
package config
