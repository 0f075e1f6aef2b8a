package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/goimagine/internal/backend/relay"
)

const (
	defaultPort    = 8080
	defaultBaseURL = "https://oi-server.onrender.com"
)

type Storage struct {
	Type             string `yaml:"type" validate:"omitempty,oneof=memory file sqlite redis s3"`
	ConnectionString string `yaml:"connectionString"`
}

type Generator struct {
	BaseURL string            `yaml:"baseURL" env:"GENERATOR_BASE_URL" validate:"required,url"`
	Model   string            `yaml:"model" env:"GENERATOR_MODEL" validate:"required"`
	APIKey  string            `yaml:"apiKey" env:"GENERATOR_API_KEY"`
	Timeout time.Duration     `yaml:"timeout" validate:"min=0"`
	Headers map[string]string `yaml:"headers"`
}

type ServiceConfig struct {
	Port      int       `yaml:"port" validate:"min=0,max=65535"`
	LogLevel  string    `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	Storage   Storage   `yaml:"storage"`
	Generator Generator `yaml:"generator"`
}

// LoadConfig loads configuration from the specified YAML file, overlays
// generator secrets from the environment and an optional .env file next to
// the config file, then applies defaults and validates the result.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	variables, err := environment(filepath.Join(filepath.Dir(configPath), ".env"))
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&config, env.Options{Environment: variables}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	config.applyDefaults()
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Generator.BaseURL == "" {
		c.Generator.BaseURL = defaultBaseURL
	}
	if c.Generator.Model == "" {
		c.Generator.Model = relay.DefaultModel
	}
	if c.Generator.Timeout <= 0 || c.Generator.Timeout > relay.MaxTimeout {
		c.Generator.Timeout = relay.MaxTimeout
	}
}

// environment merges the process environment over the values of an optional
// dotenv file. The process environment is not modified.
func environment(dotEnvPath string) (map[string]string, error) {
	values, err := godotenv.Read(dotEnvPath)
	if errors.Is(err, fs.ErrNotExist) {
		values = map[string]string{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dotEnvPath, err)
	}

	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			values[key] = value
		}
	}
	return values, nil
}
