package ferrochat

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ferro-labs/ferrochat/providers"
)

//go:embed config.schema.json
var configSchemaJSON []byte

var (
	configSchemaOnce sync.Once
	configSchema     *jsonschema.Schema
	configSchemaErr  error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", bytes.NewReader(configSchemaJSON)); err != nil {
			configSchemaErr = err
			return
		}
		configSchema, configSchemaErr = c.Compile("config.schema.json")
	})
	return configSchema, configSchemaErr
}

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml), TOML (.toml).
// The result is validated with ValidateConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, .yml, or .toml", ext)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// ValidateConfig validates a Config for correctness: first against the
// embedded JSON Schema, then against the provider registry.
func ValidateConfig(cfg Config) error {
	schema, err := compiledConfigSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	// Validate the normalized document so all input formats share one schema.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if providers.EnvKey(p.Name) == "" {
			return fmt.Errorf("unknown provider in overrides: %q", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider override: %q", p.Name)
		}
		seen[p.Name] = true
	}

	if cfg.RequestLog.Driver == "postgres" && cfg.RequestLog.DSN == "" {
		return fmt.Errorf("request_log: postgres driver requires a dsn")
	}
	return nil
}

// overrides returns the provider base URL overrides keyed by name.
func (c Config) overrides() map[string]string {
	out := make(map[string]string, len(c.Providers))
	for _, p := range c.Providers {
		out[p.Name] = p.BaseURL
	}
	return out
}
