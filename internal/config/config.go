package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Backend Backend `mapstructure:"backend"`
	Server  Server  `mapstructure:"server"`
	Speech  Speech  `mapstructure:"speech"`
	Export  Export  `mapstructure:"export"`
	History History `mapstructure:"history"`
	Logging Logging `mapstructure:"logging"`
}

// Backend configures the HTTP client side: where the query backend lives.
type Backend struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ExportTimeout  time.Duration `mapstructure:"export_timeout"`
}

// Server configures the bundled demo backend.
type Server struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Speech holds the optional speech-service credentials.
type Speech struct {
	Key    string `mapstructure:"key"`
	Region string `mapstructure:"region"`
}

type Export struct {
	Dir string `mapstructure:"dir"`
}

type History struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

type Logging struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Backend client
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.request_timeout", "30s")
	v.SetDefault("backend.export_timeout", "60s")

	// Demo server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.middleware_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.database_path", "querybot-demo.db")

	// Export
	v.SetDefault("export.dir", ".")

	// History
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "querybot-history.db")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("backend.base_url", "API_URL")

	v.BindEnv("speech.key", "SPEECH_KEY")
	v.BindEnv("speech.region", "SPEECH_REGION")

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.database_path", "DEMO_DATABASE_PATH")

	v.BindEnv("history.path", "HISTORY_PATH")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")
}
