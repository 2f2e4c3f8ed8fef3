// Package ciutil detects CI environments and resolves the settings
// integration tests read from the environment.
package ciutil
