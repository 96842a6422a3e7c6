package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		LogLevel     string        `yaml:"log_level"`
		// FulfillTimeout bounds one whole /get_flights answer, provider
		// calls included. Zero disables it.
		FulfillTimeout time.Duration `yaml:"fulfill_timeout"`
	} `yaml:"server"`

	Providers struct {
		AviationStackAPIKey string `yaml:"aviationstack_api_key"`
		AviationStackURL    string `yaml:"aviationstack_url"`
		OpenWeatherAPIKey   string `yaml:"openweather_api_key"`
		OpenWeatherURL      string `yaml:"openweather_url"`
	} `yaml:"providers"`

	Chat struct {
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		Model        string `yaml:"model"`
		MaxTokens    int    `yaml:"max_tokens"`
		SystemPrompt string `yaml:"system_prompt"`
	} `yaml:"chat"`

	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http_client"`

	CircuitBreaker struct {
		Threshold int           `yaml:"threshold"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"circuit_breaker"`

	Cache struct {
		Duration      time.Duration `yaml:"duration"`
		MaxSize       int           `yaml:"max_size"`
		SweepSchedule string        `yaml:"sweep_schedule"`
	} `yaml:"cache"`

	Scheduler struct {
		WarmAirports []string `yaml:"warm_airports"`
		WarmSchedule string   `yaml:"warm_schedule"`
	} `yaml:"scheduler"`

	Shell struct {
		FlightServerURL     string        `yaml:"flight_server_url"`
		FlightServerTimeout time.Duration `yaml:"flight_server_timeout"`
		FileStore           string        `yaml:"file_store"`
		GitPath             string        `yaml:"git_path"`
		GitWorkdir          string        `yaml:"git_workdir"`
		GitTimeout          time.Duration `yaml:"git_timeout"`
		StockfishPath       string        `yaml:"stockfish_path"`
		AnalysisTimeout     time.Duration `yaml:"analysis_timeout"`
		AnalysisDepth       int           `yaml:"analysis_depth"`
	} `yaml:"shell"`
}

// LoadConfig reads .env, then the optional YAML file at path, then lets
// environment variables override both.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", ""), cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", ""), cfg.Server.WriteTimeout)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Server.FulfillTimeout = parseDuration(getEnv("FULFILL_TIMEOUT", ""), cfg.Server.FulfillTimeout)

	// Provider configuration
	cfg.Providers.AviationStackAPIKey = getEnv("AVIATIONSTACK_API_KEY", cfg.Providers.AviationStackAPIKey)
	cfg.Providers.AviationStackURL = getEnv("AVIATIONSTACK_URL", cfg.Providers.AviationStackURL)
	cfg.Providers.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", cfg.Providers.OpenWeatherAPIKey)
	cfg.Providers.OpenWeatherURL = getEnv("OPENWEATHER_URL", cfg.Providers.OpenWeatherURL)

	// Chat completion configuration
	cfg.Chat.APIKey = getEnv("OPENAI_API_KEY", cfg.Chat.APIKey)
	cfg.Chat.BaseURL = getEnv("OPENAI_BASE_URL", cfg.Chat.BaseURL)
	cfg.Chat.Model = getEnv("OPENAI_MODEL", cfg.Chat.Model)
	cfg.Chat.MaxTokens = parseInt(getEnv("OPENAI_MAX_TOKENS", ""), cfg.Chat.MaxTokens)
	cfg.Chat.SystemPrompt = getEnv("CHAT_SYSTEM_PROMPT", cfg.Chat.SystemPrompt)

	// Outbound HTTP configuration
	cfg.HTTPClient.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", ""), cfg.HTTPClient.Timeout)
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", ""), cfg.CircuitBreaker.Threshold)
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", ""), cfg.CircuitBreaker.Timeout)

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("WEATHER_CACHE_DURATION", ""), cfg.Cache.Duration)
	cfg.Cache.MaxSize = parseInt(getEnv("WEATHER_CACHE_MAX_SIZE", ""), cfg.Cache.MaxSize)
	cfg.Cache.SweepSchedule = getEnv("CACHE_SWEEP_SCHEDULE", cfg.Cache.SweepSchedule)

	// Scheduler configuration
	if airports := getEnv("WARM_AIRPORTS", ""); airports != "" {
		cfg.Scheduler.WarmAirports = splitList(airports)
	}
	cfg.Scheduler.WarmSchedule = getEnv("WARM_SCHEDULE", cfg.Scheduler.WarmSchedule)

	// Shell configuration
	cfg.Shell.FlightServerURL = getEnv("FLIGHT_SERVER_URL", cfg.Shell.FlightServerURL)
	cfg.Shell.FlightServerTimeout = parseDuration(getEnv("FLIGHT_SERVER_TIMEOUT", ""), cfg.Shell.FlightServerTimeout)
	cfg.Shell.FileStore = getEnv("FILE_STORE", cfg.Shell.FileStore)
	cfg.Shell.GitPath = getEnv("GIT_PATH", cfg.Shell.GitPath)
	cfg.Shell.GitWorkdir = getEnv("GIT_WORKDIR", cfg.Shell.GitWorkdir)
	cfg.Shell.GitTimeout = parseDuration(getEnv("GIT_TIMEOUT", ""), cfg.Shell.GitTimeout)
	cfg.Shell.StockfishPath = getEnv("STOCKFISH_PATH", cfg.Shell.StockfishPath)
	cfg.Shell.AnalysisTimeout = parseDuration(getEnv("ANALYSIS_TIMEOUT", ""), cfg.Shell.AnalysisTimeout)
	cfg.Shell.AnalysisDepth = parseInt(getEnv("ANALYSIS_DEPTH", ""), cfg.Shell.AnalysisDepth)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) SetDefaults() {
	c.Server.Port = "8000"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.LogLevel = "info"
	c.Server.FulfillTimeout = 8 * time.Second

	c.Providers.AviationStackURL = "http://api.aviationstack.com/v1"
	c.Providers.OpenWeatherURL = "https://api.openweathermap.org/data/2.5"

	c.Chat.BaseURL = "https://api.openai.com/v1"
	c.Chat.Model = "gpt-3.5-turbo"
	c.Chat.MaxTokens = 200
	c.Chat.SystemPrompt = "Eres un asistente inteligente y servicial."

	c.HTTPClient.Timeout = 5 * time.Second
	c.CircuitBreaker.Threshold = 3
	c.CircuitBreaker.Timeout = 30 * time.Second

	c.Cache.Duration = 10 * time.Minute
	c.Cache.MaxSize = 100
	c.Cache.SweepSchedule = "@every 1m"

	c.Scheduler.WarmSchedule = "@every 15m"

	c.Shell.FlightServerURL = "http://127.0.0.1:8000"
	c.Shell.FlightServerTimeout = 15 * time.Second
	c.Shell.FileStore = "memory"
	c.Shell.GitPath = "git"
	c.Shell.GitWorkdir = "."
	c.Shell.GitTimeout = 10 * time.Second
	c.Shell.StockfishPath = "stockfish"
	c.Shell.AnalysisTimeout = 3 * time.Second
	c.Shell.AnalysisDepth = 12
}

// Validate only rejects settings that cannot work at all; missing provider
// credentials are allowed and degrade to defaults at lookup time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server port cannot be empty")
	}
	if c.HTTPClient.Timeout <= 0 {
		return errors.New("http client timeout must be positive")
	}
	if c.Server.FulfillTimeout < 0 {
		return errors.New("fulfill timeout cannot be negative")
	}
	// The shell must outwait the server, or it never sees the fallback flights.
	if c.Shell.FlightServerTimeout <= c.Server.FulfillTimeout {
		return fmt.Errorf("flight server timeout %s must exceed fulfill timeout %s",
			c.Shell.FlightServerTimeout, c.Server.FulfillTimeout)
	}
	switch c.Shell.FileStore {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown file store %q", c.Shell.FileStore)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return fallback
	}
	return duration
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return fallback
	}
	return intValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
