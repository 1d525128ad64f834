// Package config handles loading and validating the gateway fleet service
// configuration.
//
// This package manages:
//   - Loading an optional .env file into the process environment
//   - Loading configuration from YAML files
//   - Overriding with GATEWAYFLEET_* environment variables
//   - Validation of required fields
//
// Sensitive values (database URL, broker passwords, InfluxDB token, JWT
// secret) should be supplied through the environment rather than the file.
//
// Usage:
//
//	if err := config.LoadDotEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
