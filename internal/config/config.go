package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server             ServerConfig             `mapstructure:"server"`
	Auth               AuthConfig               `mapstructure:"auth"`
	Email              EmailConfig              `mapstructure:"email"`
	Templates          TemplatesConfig          `mapstructure:"templates"`
	Dispatch           DispatchConfig           `mapstructure:"dispatch"`
	CORS               CORSConfig               `mapstructure:"cors"`
	RateLimit          RateLimitConfig          `mapstructure:"rate_limit"`
	Redis              RedisConfig              `mapstructure:"redis"`
	Supabase           SupabaseConfig           `mapstructure:"supabase"`
	Queue              QueueConfig              `mapstructure:"queue"`
	RecipientRateLimit RecipientRateLimitConfig `mapstructure:"recipient_rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// EmailConfig selects and configures the single active delivery provider.
// Provider is one of smtp, console, resend, postmark or sendgrid.
type EmailConfig struct {
	Provider             string     `mapstructure:"provider"`
	APIKey               string     `mapstructure:"api_key"`
	APIBaseURL           string     `mapstructure:"api_base_url"`
	PostmarkAccountToken string     `mapstructure:"postmark_account_token"`
	FromAddress          string     `mapstructure:"from_address"`
	FromName             string     `mapstructure:"from_name"`
	SMTP                 SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Secure     bool   `mapstructure:"secure"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// Missing lists the required SMTP fields that are empty.
func (c SMTPConfig) Missing() []string {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.User == "" {
		missing = append(missing, "user")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Timeout returns the SMTP dial/IO timeout.
func (c SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// TemplatesConfig locates notification templates.
// An empty Dir uses the templates embedded in the binary.
type TemplatesConfig struct {
	Dir       string `mapstructure:"dir"`
	InlineCSS bool   `mapstructure:"inline_css"`
	Preload   bool   `mapstructure:"preload"`
}

// DispatchConfig holds per-dispatch deadlines and the delivery log size.
type DispatchConfig struct {
	RenderTimeoutSec int `mapstructure:"render_timeout_sec"`
	SendTimeoutSec   int `mapstructure:"send_timeout_sec"`
	LogCapacity      int `mapstructure:"log_capacity"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds settings for the durable delivery log mirror.
// Leaving URL empty disables the mirror.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
	Table      string `mapstructure:"table"`
}

// Enabled reports whether the mirror is configured.
func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.ServiceKey != ""
}

// QueueConfig holds async queue settings.
type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
	MaxRetry    int  `mapstructure:"max_retry"`
}

// RecipientRateLimitConfig holds per-recipient rate limiting settings.
// Zero disables the limit.
type RecipientRateLimitConfig struct {
	MaxPerHour int `mapstructure:"max_per_hour"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the SLOTNOTIFY_ prefix and underscore separators.
// Example: SLOTNOTIFY_EMAIL_SMTP_HOST overrides email.smtp.host in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	// Environment variable settings
	v.SetEnvPrefix("SLOTNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional, env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("email.provider", "console")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.api_base_url", "")
	v.SetDefault("email.postmark_account_token", "")
	v.SetDefault("email.from_address", "no-reply@slotwise.app")
	v.SetDefault("email.from_name", "Slotwise")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.secure", false)
	v.SetDefault("email.smtp.user", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.timeout_sec", 15)
	v.SetDefault("templates.dir", "")
	v.SetDefault("templates.inline_css", true)
	v.SetDefault("templates.preload", true)
	v.SetDefault("dispatch.render_timeout_sec", 5)
	v.SetDefault("dispatch.send_timeout_sec", 30)
	v.SetDefault("dispatch.log_capacity", 1000)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("supabase.table", "delivery_logs")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("recipient_rate_limit.max_per_hour", 0)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated API keys from env var
	if apiKeysStr := v.GetString("auth.api_keys"); apiKeysStr != "" && len(cfg.Auth.APIKeys) == 0 {
		keys := strings.Split(apiKeysStr, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.Auth.APIKeys = keys
	}

	return &cfg, nil
}

// RenderTimeout returns the template render deadline.
func (c DispatchConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSec) * time.Second
}

// SendTimeout returns the provider send deadline.
func (c DispatchConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSec) * time.Second
}
