package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains settings for the Redis cache used by list endpoints.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" validate:"required,hostname_port"`
	ListTTL  time.Duration `mapstructure:"list_ttl"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
}

// MailConfig contains settings for the notification mail sender.
// In the local stack these point at the mail-capture service, so sent
// messages show up in its UI instead of leaving the machine.
// Notifications are disabled when To is empty.
type MailConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	From string `mapstructure:"from" validate:"omitempty,email"`
	To   string `mapstructure:"to"   validate:"omitempty,email"`
}

// Enabled reports whether notification mail should be sent.
func (m MailConfig) Enabled() bool {
	return m.To != "" && m.Host != ""
}
