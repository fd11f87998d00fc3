package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	ListenPort        int
	MetricsPort       int
	HealthAPIURL      string
	RESTTimeout       time.Duration
	ModelsPath        string
	Models            []string
	DataPath          string
	DefaultCollection string
	LogLevel          string
}

type ConfigFile struct {
	Server struct {
		ListenPort  int `yaml:"listenPort"`
		MetricsPort int `yaml:"metricsPort"`
	} `yaml:"server"`

	Upstream struct {
		HealthAPIURL string `yaml:"healthAPIURL"`
		RESTTimeout  string `yaml:"restTimeout"`
	} `yaml:"upstream"`

	ML struct {
		ModelsPath string   `yaml:"modelsPath"`
		Models     []string `yaml:"models"`
	} `yaml:"ml"`

	Storage struct {
		DataPath          string `yaml:"dataPath"`
		DefaultCollection string `yaml:"defaultCollection"`
	} `yaml:"storage"`

	LogLevel string `yaml:"logLevel"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	restTimeout, err := time.ParseDuration(config.Upstream.RESTTimeout)
	if err != nil {
		restTimeout = 5 * time.Second
	}

	settings := Settings{
		ListenPort:        getIntFromEnvOrConfig("LISTEN_PORT", config.Server.ListenPort, 8000),
		MetricsPort:       getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort, 9090),
		HealthAPIURL:      getEnvOrDefault("HEALTH_API_URL", config.Upstream.HealthAPIURL),
		RESTTimeout:       restTimeout,
		ModelsPath:        getEnvOrDefault("MODELS_PATH", config.ML.ModelsPath),
		Models:            getModelsFromEnvOrConfig(config.ML.Models),
		DataPath:          getEnvOrDefault("DATA_PATH", config.Storage.DataPath),
		DefaultCollection: getEnvOrDefault("DEFAULT_COLLECTION", config.Storage.DefaultCollection),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", config.LogLevel),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenPort:        getIntOrDefault("LISTEN_PORT", 8000),
		MetricsPort:       getIntOrDefault("METRICS_PORT", 9090),
		HealthAPIURL:      getEnvOrDefault("HEALTH_API_URL", "http://localhost:3001"),
		RESTTimeout:       getDurationOrDefault("REST_TIMEOUT", 5*time.Second),
		ModelsPath:        getEnvOrDefault("MODELS_PATH", "saved_models"),
		Models:            splitOrDefault(os.Getenv("MODELS"), defaultModels()),
		DataPath:          getEnvOrDefault("DATA_PATH", "data"),
		DefaultCollection: getEnvOrDefault("DEFAULT_COLLECTION", "predictions_analysis"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func defaultModels() []string {
	return []string{"Logistic_Regression", "Random_Forest"}
}

func applyDefaults(s *Settings) {
	if s.HealthAPIURL == "" {
		s.HealthAPIURL = "http://localhost:3001"
	}
	if s.ModelsPath == "" {
		s.ModelsPath = "saved_models"
	}
	if len(s.Models) == 0 {
		s.Models = defaultModels()
	}
	if s.DataPath == "" {
		s.DataPath = "data"
	}
	if s.DefaultCollection == "" {
		s.DefaultCollection = "predictions_analysis"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	return strings.Split(v, ",")
}

func getModelsFromEnvOrConfig(configModels []string) []string {
	if env := os.Getenv("MODELS"); env != "" {
		return strings.Split(env, ",")
	}
	if len(configModels) > 0 {
		return configModels
	}
	return defaultModels()
}

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.ListenPort < 1 || settings.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1 and 65535, got %d", settings.ListenPort)
	}
	if settings.MetricsPort < 1024 || settings.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.ListenPort == settings.MetricsPort {
		return fmt.Errorf("listen port and metrics port must differ, both are %d", settings.ListenPort)
	}
	if settings.HealthAPIURL == "" {
		return fmt.Errorf("health API URL cannot be empty")
	}
	if settings.RESTTimeout < time.Second || settings.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", settings.RESTTimeout)
	}
	if settings.ModelsPath == "" {
		return fmt.Errorf("models path cannot be empty")
	}
	if len(settings.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	for _, m := range settings.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("model ids cannot be blank")
		}
	}
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if settings.DefaultCollection == "" {
		return fmt.Errorf("default collection cannot be empty")
	}
	return nil
}
