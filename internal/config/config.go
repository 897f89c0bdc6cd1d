package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	RateLimit RateLimitConfig
	Sync      SyncConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MongoDBConfig configures the optional snapshot collaborator. The sync core
// never touches Mongo directly; an empty URI disables snapshotting entirely.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// SyncConfig tunes the synchronization engine: the deferred save
// acknowledgment delay, the autosave sweep interval, and the seeded
// default document.
type SyncConfig struct {
	SaveAckDelay      time.Duration
	AutosaveInterval  time.Duration
	DefaultDocTitle   string
	DefaultDocContent string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "4000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "syncpad")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("SYNC_SAVE_ACK_DELAY_MS", 2000)
	viper.SetDefault("SYNC_AUTOSAVE_INTERVAL", 30)
	viper.SetDefault("SYNC_DEFAULT_DOC_TITLE", "Welcome Document")
	viper.SetDefault("SYNC_DEFAULT_DOC_CONTENT",
		"Welcome to the collaborative document editor!\n\nStart typing to see real-time collaboration in action.")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   viper.GetInt("RATE_LIMIT_BURST"),
		},
		Sync: SyncConfig{
			SaveAckDelay:      time.Duration(viper.GetInt("SYNC_SAVE_ACK_DELAY_MS")) * time.Millisecond,
			AutosaveInterval:  time.Duration(viper.GetInt("SYNC_AUTOSAVE_INTERVAL")) * time.Second,
			DefaultDocTitle:   viper.GetString("SYNC_DEFAULT_DOC_TITLE"),
			DefaultDocContent: viper.GetString("SYNC_DEFAULT_DOC_CONTENT"),
		},
	}

	return cfg, nil
}
