package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	SourceStdin = "stdin"
	SourceHTTP  = "http"
)

type Config struct {
	Model       ModelConfig       `yaml:"model"`
	SmartThings SmartThingsConfig `yaml:"smartthings"`
	Topology    TopologyConfig    `yaml:"topology"`
	Planner     PlannerConfig     `yaml:"planner"`
	Input       InputConfig       `yaml:"input"`
	Pushover    PushoverConfig    `yaml:"pushover"`
	Log         LogConfig         `yaml:"log"`
}

type ModelConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type SmartThingsConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

type TopologyConfig struct {
	Path   string     `yaml:"path"`
	Layout [][]string `yaml:"layout"`
}

type PlannerConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	// MaxTurns of 0 means the default; a negative value removes the cap.
	MaxTurns int `yaml:"max_turns"`
}

type InputConfig struct {
	Source    string `yaml:"source"`
	Once      bool   `yaml:"once"`
	HTTPAddr  string `yaml:"http_addr"`
	AuthToken string `yaml:"auth_token"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Title   string `yaml:"title"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment. Variables from a .env file in the working directory are
// loaded first. A missing config file yields defaults plus environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Model.Provider == "" {
		c.Model.Provider = ProviderOpenAI
	}
	if c.Model.APIKey == "" {
		switch c.Model.Provider {
		case ProviderOpenAI:
			c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderAnthropic:
			c.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.Model.Model == "" && c.Model.Provider == ProviderOpenAI {
		c.Model.Model = "gpt-4o-mini"
	}
	if c.Model.MaxAttempts == 0 {
		c.Model.MaxAttempts = 1
	}
	if c.SmartThings.Token == "" {
		c.SmartThings.Token = os.Getenv("SMARTTHINGS_TOKEN")
	}
	if c.Topology.Path == "" {
		c.Topology.Path = "./devices.json"
	}
	if c.Topology.Layout == nil {
		c.Topology.Layout = [][]string{
			{"I1", "I2", "I3"},
			{"I4", "I5", "I6"},
		}
	}
	if c.Planner.MaxTurns == 0 {
		c.Planner.MaxTurns = 10
	}
	if c.Input.Source == "" {
		c.Input.Source = SourceStdin
	}
	if c.Input.HTTPAddr == "" {
		c.Input.HTTPAddr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}

	switch c.Input.Source {
	case SourceStdin, SourceHTTP:
	default:
		return fmt.Errorf("unknown input source %q", c.Input.Source)
	}

	names := 0
	for _, row := range c.Topology.Layout {
		names += len(row)
	}
	if names == 0 {
		return errors.New("topology layout names no lights")
	}

	return nil
}
