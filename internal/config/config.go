package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	customerrors "github.com/axellelanca/visitorpulse/internal/errors"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML keys and environment variables to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port                   int      `mapstructure:"port"`                     // HTTP server port (default: 8080)
		Mode                   string   `mapstructure:"mode"`                     // Gin mode: debug, release or test
		TrustedProxies         []string `mapstructure:"trusted_proxies"`          // Proxies allowed to set X-Forwarded-For
		ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"` // Grace period for in-flight requests
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name          string `mapstructure:"name"`            // SQLite database file name
		BusyTimeoutMs int    `mapstructure:"busy_timeout_ms"` // How long a writer waits on a locked database
	} `mapstructure:"database"`

	// Cookie configuration for the visitor identity cookie
	Cookie struct {
		Name          string `mapstructure:"name"`
		MaxAgeSeconds int    `mapstructure:"max_age_seconds"`
		Secure        bool   `mapstructure:"secure"`
		Domain        string `mapstructure:"domain"`
	} `mapstructure:"cookie"`

	// Geo configuration for best-effort IP geolocation
	Geo struct {
		Providers      []string `mapstructure:"providers"`       // Ordered list: ipapi, maxmind, none
		BaseURL        string   `mapstructure:"base_url"`        // Base URL of the HTTP geolocation service
		TimeoutSeconds int      `mapstructure:"timeout_seconds"` // Upper bound for one lookup
		MMDBPath       string   `mapstructure:"mmdb_path"`       // GeoLite2/GeoIP2 City database for the maxmind provider
	} `mapstructure:"geo"`

	// Sessions configuration for the session expiry monitor
	Sessions struct {
		TimeoutMinutes       int `mapstructure:"timeout_minutes"`        // Inactivity after which a session is deactivated
		CheckIntervalSeconds int `mapstructure:"check_interval_seconds"` // Interval between two expiry scans
	} `mapstructure:"sessions"`
}

// LoadConfig loads the application configuration using Viper.
// Values from a .env file are exported first, then read through environment variable overrides
// and the YAML configuration file. Returns a populated Config struct or an error.
func LoadConfig() (*Config, error) {
	// A missing .env file is the normal case outside local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AddConfigPath("./configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// This is not a fatal error - we'll use default values
			log.Println("Config file not found, using default values")
		} else {
			return nil, customerrors.ErrConfigLoad{Path: "./configs/config.yaml", Reason: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, Geo Providers=%v, Session Timeout=%dmin",
		cfg.Server.Port, cfg.Database.Name, cfg.Geo.Providers, cfg.Sessions.TimeoutMinutes)

	return &cfg, nil
}

// SetDefaults registers a default for every configuration key.
// Every key needs a default so that AutomaticEnv can override it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("database.name", "visitorpulse.db")
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("cookie.name", "visitor_id")
	v.SetDefault("cookie.max_age_seconds", 31536000) // 1 year
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cookie.domain", "")
	v.SetDefault("geo.providers", []string{"ipapi"})
	v.SetDefault("geo.base_url", "https://ipapi.co")
	v.SetDefault("geo.timeout_seconds", 3)
	v.SetDefault("geo.mmdb_path", "GeoLite2-City.mmdb")
	v.SetDefault("sessions.timeout_minutes", 30)
	v.SetDefault("sessions.check_interval_seconds", 60)
}
