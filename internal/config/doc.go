// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and TUTORGEN_ environment variables.
// It provides type-safe access to the settings each component needs while
// keeping configuration details out of business logic.
package config
