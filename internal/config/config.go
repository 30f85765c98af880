package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Account     Account     `mapstructure:"account"`
	Leaderboard Leaderboard `mapstructure:"leaderboard"`
	Webhook     Webhook     `mapstructure:"webhook"`
	Logger      Logger      `mapstructure:"logger"`
	Server      Server      `mapstructure:"server"`
	Database    Database    `mapstructure:"database"`
}

// Account holds the per-user identity and journal defaults.
type Account struct {
	UserID          string  `mapstructure:"user_id"`
	StartingCapital float64 `mapstructure:"starting_capital"`
	RiskPercent     float64 `mapstructure:"risk_percent"`
}

// Leaderboard holds the configuration for the hosted leaderboard service.
type Leaderboard struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Webhook holds the shared key the trade copier authenticates with.
type Webhook struct {
	ApiKey string `mapstructure:"api_key"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("account.starting_capital", 1000)
	viper.SetDefault("account.risk_percent", 5)
	viper.SetDefault("leaderboard.timeout_seconds", 10)
	viper.SetDefault("leaderboard.rate_limit", 5) // requests per second
	viper.SetDefault("leaderboard.rate_limit_burst", 2)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
