package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	MediaHost   MediaHostConfig  `mapstructure:"media_host"`
	AI          AIConfig         `mapstructure:"ai"`
	Processing  ProcessingConfig `mapstructure:"processing"`
	Events      EventsConfig     `mapstructure:"events"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// AuthConfig contains JWT validation settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	SkipAuth  bool   `mapstructure:"skip_auth"`
}

// MediaHostConfig contains settings for the external media host
// (Cloudinary-compatible upload API and webhook signatures)
type MediaHostConfig struct {
	CloudName       string        `mapstructure:"cloud_name"`
	APIKey          string        `mapstructure:"api_key"`
	APISecret       string        `mapstructure:"api_secret"`
	BaseURL         string        `mapstructure:"base_url"`
	NotificationURL string        `mapstructure:"notification_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	WebhookMaxAge   time.Duration `mapstructure:"webhook_max_age"`
}

// AIConfig contains settings for the speech-to-text and language model APIs
type AIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	TranscriptionModel string        `mapstructure:"transcription_model"`
	ChatModel          string        `mapstructure:"chat_model"`
	GrammarMaxChars    int           `mapstructure:"grammar_max_chars"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// ProcessingConfig contains background worker settings
type ProcessingConfig struct {
	Workers           int           `mapstructure:"workers"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
	JobRetentionDays  int           `mapstructure:"job_retention_days"`
	RetentionInterval time.Duration `mapstructure:"retention_interval"`
}

// EventsConfig contains optional AMQP event publishing settings
type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange"`
}
