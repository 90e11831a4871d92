package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"spot-optimizer/internal/data"
	"spot-optimizer/internal/optimizer"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). Environment variables
// override file values so deployments can keep credentials out of the file.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

type APIConfig struct {
	ClientID             string `yaml:"client_id"`
	ClientSecret         string `yaml:"client_secret"`
	TokenURL             string `yaml:"token_url"`
	BaseURL              string `yaml:"base_url"`
	TokenLifetimeSeconds int    `yaml:"token_lifetime_seconds"`
	UseTestDataByDefault bool   `yaml:"use_test_data_by_default"`
}

type OptimizerConfig struct {
	BatchSizeKWh     float64 `yaml:"batch_size_kwh"`
	EfficiencyFactor float64 `yaml:"efficiency_factor"`
	Threshold        float64 `yaml:"threshold"`
	AlternatePair    bool    `yaml:"alternate_pair"`
}

// Default returns the built-in configuration before env overrides.
func Default() *Config {
	return &Config{
		API: APIConfig{
			TokenURL:             data.DefaultTokenURL,
			BaseURL:              data.DefaultBaseURL,
			TokenLifetimeSeconds: 3500,
		},
		Optimizer: OptimizerConfig{
			BatchSizeKWh:     optimizer.DefaultBatchSizeKWh,
			EfficiencyFactor: optimizer.DefaultEfficiencyFactor,
		},
	}
}

// Load reads a YAML config file, applies env overrides, and validates.
func Load(path string) (*Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromEnv builds a config from defaults plus env overrides, for deployments
// that run without a config file.
func FromEnv() (*Config, error) {
	c := Default()
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CLIENT_ID"); v != "" {
		c.API.ClientID = v
	}
	if v := os.Getenv("CLIENT_SECRET"); v != "" {
		c.API.ClientSecret = v
	}
	if v := os.Getenv("TOKEN_URL"); v != "" {
		c.API.TokenURL = v
	}
	if v := os.Getenv("MARKET_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("USE_TEST_DATA_BY_DEFAULT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.API.UseTestDataByDefault = b
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Optimizer.BatchSizeKWh <= 0 {
		return errors.New("optimizer.batch_size_kwh must be > 0")
	}
	if c.Optimizer.EfficiencyFactor <= 0 || c.Optimizer.EfficiencyFactor > 1 {
		return errors.New("optimizer.efficiency_factor must be in (0, 1]")
	}
	if c.Optimizer.Threshold < 0 {
		return errors.New("optimizer.threshold must be >= 0")
	}
	if c.API.TokenLifetimeSeconds <= 0 {
		return fmt.Errorf("api.token_lifetime_seconds must be > 0, got %d", c.API.TokenLifetimeSeconds)
	}
	return nil
}

// OptimizerOptions converts the config into optimizer options.
func (c *Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		BatchSizeKWh:     c.Optimizer.BatchSizeKWh,
		EfficiencyFactor: c.Optimizer.EfficiencyFactor,
		AlternatePair:    c.Optimizer.AlternatePair,
	}
}

// NewMarketClient builds the Netztransparenz client described by the config.
func (c *Config) NewMarketClient() *data.Client {
	client := data.NewClient(c.API.ClientID, c.API.ClientSecret, c.API.TokenURL, c.API.BaseURL)
	client.TokenLifetime = time.Duration(c.API.TokenLifetimeSeconds) * time.Second
	return client
}
