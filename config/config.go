package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values. Sensitive data
// has no in-code defaults and must come from the environment or a config
// file.
type AppConfig struct {
	AppPort string `mapstructure:"app_port"`
	GinMode string `mapstructure:"gin_mode"`

	JWTSecret    string `mapstructure:"jwt_secret"`
	CookieSecure bool   `mapstructure:"cookie_secure"`

	DatabaseURI string `mapstructure:"database_uri"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`

	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     int    `mapstructure:"redis_port"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPassword string `mapstructure:"redis_password"`

	ModerationURL       string  `mapstructure:"moderation_url"`
	ModerationThreshold float64 `mapstructure:"moderation_threshold"`
	ModerationTimeoutMS int     `mapstructure:"moderation_timeout_ms"`

	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`

	LogLevel      string `mapstructure:"log_level"`
	LogPath       string `mapstructure:"log_path"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

// ModerationTimeout returns the bounded classifier call timeout.
func (c AppConfig) ModerationTimeout() time.Duration {
	return time.Duration(c.ModerationTimeoutMS) * time.Millisecond
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot. Precedence: environment
// variables over config.yaml over defaults.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("app_port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("cookie_secure", true)
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "haven")
	v.SetDefault("db_name", "haven")
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_db", 0)
	v.SetDefault("moderation_url", "http://127.0.0.1:9090/classify")
	v.SetDefault("moderation_threshold", 0.5)
	v.SetDefault("moderation_timeout_ms", 2000)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_path", "logs/haven.log")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
	v.SetDefault("log_compress", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal under AutomaticEnv
	// alone; bind them so environment-only deployments work.
	for _, key := range []string{"jwt_secret", "database_uri", "db_password", "redis_password"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("failed to read config file: %v", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting overrides the loaded configuration. Tests only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}
