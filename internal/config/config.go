package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Voucher  VoucherConfig  `mapstructure:"voucher"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AdminToken   string        `mapstructure:"admin_token"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// EmailConfig holds SMTP delivery configuration
type EmailConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Sender      string        `mapstructure:"sender"`
	SenderName  string        `mapstructure:"sender_name"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	Links       LinksConfig   `mapstructure:"links"`
}

// LinksConfig holds the social links rendered in email footers
type LinksConfig struct {
	Facebook  string `mapstructure:"facebook"`
	Instagram string `mapstructure:"instagram"`
	Twitter   string `mapstructure:"twitter"`
	YouTube   string `mapstructure:"youtube"`
}

// VoucherConfig holds voucher issuance configuration
type VoucherConfig struct {
	CompanyName string `mapstructure:"company_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// A .env file in the working directory, if present, is loaded first so
// local credentials can stay out of the YAML.
func Load(configPath string) (*Config, error) {
	_ = gotenv.Load(".env")

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/backoffice.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Email defaults
	viper.SetDefault("email.port", 587)
	viper.SetDefault("email.sender_name", "LearnHub")
	viper.SetDefault("email.send_timeout", 30*time.Second)

	// Voucher defaults
	viper.SetDefault("voucher.company_name", "LearnHub")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("server.admin_token", "ADMIN_TOKEN")
	viper.BindEnv("email.host", "SMTP_HOST")
	viper.BindEnv("email.port", "SMTP_PORT")
	viper.BindEnv("email.username", "SMTP_USERNAME")
	viper.BindEnv("email.password", "SMTP_PASSWORD")
	viper.BindEnv("email.sender", "SMTP_SENDER")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// SMTP credentials are required together: a host without a sender
	// address cannot deliver anything.
	if c.Email.Host != "" && c.Email.Sender == "" {
		return fmt.Errorf("email.sender is required when email.host is set")
	}

	return nil
}
