package ciutil

import (
	"log/slog"
	"os"
)

// Environment variables consulted by this package.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"

	// Database connection environment variables
	EnvTestDBURL      = "TUTORGEN_TEST_DB_URL" // Preferred
	EnvDatabaseURL    = "DATABASE_URL"
	EnvAppDatabaseURL = "TUTORGEN_DATABASE_URL"
)

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment
// variable in envVars, or defaultValue. Using any but the first name logs a
// warning naming the preferred variable.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				"used_var", envVar,
				"preferred_var", envVars[0])
		}
		return val
	}
	return defaultValue
}

// TestDatabaseURL returns the database URL for integration tests, or "" if
// none is configured.
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestDBURL, EnvDatabaseURL, EnvAppDatabaseURL}, "", logger)
}
