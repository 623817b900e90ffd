package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds Jira connection settings.
type Config struct {
	URL      string `yaml:"url"      mapstructure:"url"`
	Project  string `yaml:"project"  mapstructure:"project"`
	Username string `yaml:"username" mapstructure:"username"`
	Token    string `yaml:"token"    mapstructure:"token"`
}

// DefaultPath returns the default config file path (~/.ground-control.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ground-control.yaml"
	}
	return filepath.Join(home, ".ground-control.yaml")
}

// Load reads config from the YAML file and applies env var overrides.
// A .env file in the working directory is loaded into the environment
// first, so its values participate as ordinary env vars.
// configPath may be empty to use the default path.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath == "" {
		configPath = DefaultPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Env var overrides
	v.BindEnv("url", "JIRA_URL")
	v.BindEnv("project", "JIRA_PROJECT")
	v.BindEnv("username", "JIRA_USERNAME")
	v.BindEnv("token", "JIRA_API_TOKEN")

	// Read the config file (ignore "not found" errors so env vars still work)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only ignore file-not-found; other errors (e.g. parse) are real
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields required for any Jira call.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("Jira URL is required (set in config file or JIRA_URL env var)")
	}
	if c.Username == "" {
		return fmt.Errorf("Jira username is required (set in config file or JIRA_USERNAME env var)")
	}
	if c.Token == "" {
		return fmt.Errorf("Jira API token is required (set in config file or JIRA_API_TOKEN env var)")
	}
	return nil
}

// ValidateProject checks the fields required for a whole-project export.
func (c Config) ValidateProject() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Project == "" {
		return fmt.Errorf("Jira project key is required (set in config file or JIRA_PROJECT env var)")
	}
	return nil
}

// Save writes the config to the given path (or default path if empty).
func Save(cfg Config, configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
