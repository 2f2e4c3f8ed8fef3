package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
	Registry   RegistryConfig   `mapstructure:"registry" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LogConfig controls where logs are written. An empty File logs to stdout.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL disables the task archive.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
// An empty JWTSecret disables bearer authentication.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// TokenLifetime returns the token lifetime as a duration.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=gemini ollama"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	OllamaURL         string  `mapstructure:"ollama_url" validate:"omitempty,url"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" validate:"gte=0"`
	Temperature       float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// GenerationConfig tunes generation sessions.
type GenerationConfig struct {
	MaxAttempts  int `mapstructure:"max_attempts" validate:"gt=0,lte=10"`
	RetryDelayMS int `mapstructure:"retry_delay_ms" validate:"gte=0"`
	// PromptsDir overrides the embedded prompt templates when set.
	PromptsDir string `mapstructure:"prompts_dir"`
}

// RetryDelay returns the pause between attempts.
func (g GenerationConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelayMS) * time.Millisecond
}

// TaskConfig sizes the feedback queue and its housekeeping.
type TaskConfig struct {
	QueueSize              int `mapstructure:"queue_size" validate:"gt=0"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"gt=0"`
	MaxAgeHours            int `mapstructure:"max_age_hours" validate:"gt=0"`
}

// CleanupInterval returns the sweep period.
func (t TaskConfig) CleanupInterval() time.Duration {
	return time.Duration(t.CleanupIntervalMinutes) * time.Minute
}

// MaxAge returns how long finished tasks are retained.
func (t TaskConfig) MaxAge() time.Duration {
	return time.Duration(t.MaxAgeHours) * time.Hour
}

// RegistryConfig locates the content registries.
type RegistryConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
	// ContentsDir holds study material files named by content id.
	ContentsDir string `mapstructure:"contents_dir" validate:"required"`
}
