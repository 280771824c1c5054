package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Beacon    BeaconConfig
	Listener  ListenerConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type BeaconConfig struct {
	Enabled     bool
	BaseURL     string
	ReaderProxy string
	TimeoutSec  int
	IntervalMin int
	MaxRetries  int
}

type ListenerConfig struct {
	Enabled     bool
	Platform    string
	IntervalMin int
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type SecurityConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ghi-core")

	viper.SetEnvPrefix("GHI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/ghi.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("beacon.enabled", true)
	viper.SetDefault("beacon.baseURL", "https://beaconbio.org")
	viper.SetDefault("beacon.readerProxy", "https://r.jina.ai")
	viper.SetDefault("beacon.timeoutSec", 30)
	viper.SetDefault("beacon.intervalMin", 30)
	viper.SetDefault("beacon.maxRetries", 3)

	viper.SetDefault("listener.enabled", true)
	viper.SetDefault("listener.platform", "twitter")
	viper.SetDefault("listener.intervalMin", 15)

	viper.SetDefault("rateLimit.maxRequestsPerMinute", 120)

	viper.SetDefault("security.isDevelopment", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
