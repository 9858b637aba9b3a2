package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
)

// Config holds the configuration for the Cinetro server and its dependencies.
type Config struct {
	// Listen is the address the Cinetro server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL forces the origin used for absolute media URLs.
	// When empty, the origin is derived from each request.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SiteName is used in outgoing emails.
	SiteName string `yaml:"site_name" mapstructure:"site_name"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Cache holds the catalog cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Media holds the configuration for locally stored media files.
	Media *MediaConfig `yaml:"media" mapstructure:"media"`
	// CORS holds the cross origin configuration for the API.
	CORS *CORSConfig `yaml:"cors" mapstructure:"cors"`
	// Email holds the contact form email configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or mysql.
	Driver DatabaseDriver `yaml:"driver" mapstructure:"driver"`
	// Path is the path to the database file (sqlite only).
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the connection string for postgres and mysql.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// CacheConfig holds the configuration for the catalog cache.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the Redis server if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is how long catalog reads are cached. Zero disables the cache.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// MediaConfig holds the configuration for uploaded media files.
type MediaConfig struct {
	// URL is the URL prefix under which media files are served.
	URL string `yaml:"url" mapstructure:"url"`
	// Root is the directory holding the media files.
	Root string `yaml:"root" mapstructure:"root"`
}

// CORSConfig holds the cross origin configuration.
type CORSConfig struct {
	// AllowedOrigins is the list of origins allowed to call the API.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether contact emails are sent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// OperatorEmail receives a copy of every contact form submission.
	OperatorEmail string `yaml:"operator_email" mapstructure:"operator_email"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit TLS for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("CINETRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cinetro")
		v.AddConfigPath("/etc/cinetro")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the CINETRO_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8000")
	v.SetDefault("server_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("site_name", "Cinetro")

	// Database defaults
	v.SetDefault("database.driver", DatabaseDriverSQLite)
	v.SetDefault("database.path", "./data/cinetro.db")
	v.SetDefault("database.dsn", "")

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 30*time.Second)

	// Media defaults
	v.SetDefault("media.url", "/media/")
	v.SetDefault("media.root", "./data/media")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Cinetro")
	v.SetDefault("email.operator_email", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing cinetro config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DatabaseDriverPostgres, DatabaseDriverMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for the %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required when cache is enabled")
		}
		if c.Cache.Type != CacheTypeMemory && c.Cache.Type != CacheTypeRedis {
			return fmt.Errorf("unsupported cache type %q", c.Cache.Type)
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
		if c.Cache.TTL < 0 {
			return fmt.Errorf("cache ttl must not be negative")
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
		}
	}

	if c.Media == nil {
		return fmt.Errorf("missing media config")
	}
	if c.Media.URL == "" || c.Media.URL == "/" {
		return fmt.Errorf("media URL prefix is required and must not be the site root")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.SMTPPort <= 0 {
			return fmt.Errorf("SMTP port must be greater than 0 when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
		if c.Email.OperatorEmail == "" {
			return fmt.Errorf("operator email is required when email is enabled")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}

	if c.Media != nil {
		c.Media.URL = mediaURLSanitize(c.Media.URL)
	}

	if c.Database != nil {
		c.Database.Driver = DatabaseDriver(strings.ToLower(strings.TrimSpace(string(c.Database.Driver))))
	}

	if c.CORS != nil {
		origins := make([]string, 0, len(c.CORS.AllowedOrigins))
		for _, o := range c.CORS.AllowedOrigins {
			if o = urlSanitize(o); o != "" && !slices.Contains(origins, o) {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// mediaURLSanitize makes sure the media prefix starts and ends with a slash.
func mediaURLSanitize(url string) string {
	url = strings.Trim(strings.TrimSpace(url), "/")
	if url == "" {
		return "/"
	}
	return "/" + url + "/"
}

// AllowsAllOrigins reports whether the CORS config accepts any origin.
func (c *CORSConfig) AllowsAllOrigins() bool {
	return c == nil || len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*")
}

// CacheEnabled reports whether catalog reads should be cached.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.Cache != nil && c.Cache.TTL > 0
}

// GetSiteName returns the site name with proper defaults.
func (c *Config) GetSiteName() string {
	if c == nil || c.SiteName == "" {
		return "Cinetro"
	}
	return c.SiteName
}
