// Package config loads runtime configuration: tunables via environment
// variables and an optional pricing override file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the runtime's environment-tunable inputs.
type ServerConfig struct {
	MaxStoredPlans       int    `mapstructure:"max_stored_plans"`
	MaxCostEntries       int    `mapstructure:"max_cost_entries"`
	ExampleMaxLen        int    `mapstructure:"example_max_len"`
	LogLevel             string `mapstructure:"log_level"`
	ListenAddr           string `mapstructure:"listen_addr"`
	PricingFile          string `mapstructure:"pricing_file"`
	AuditDir             string `mapstructure:"audit_dir"`
	PlanRetentionSeconds int    `mapstructure:"plan_retention_seconds"`

	// Providers maps a provider name to its base URL and API key, read from
	// SWARMRUN_PROVIDER_<NAME>_BASE_URL / _API_KEY.
	Providers map[string]ProviderConfig
}

// ProviderConfig is one provider's connection details, read at startup.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
}

// Loader reads a ServerConfig from the environment (and an optional config
// file), keeping the loader and validator as separate structs so defaults
// and validation rules stay independently testable.
type Loader struct {
	v *viper.Viper
}

// NewLoader constructs a Loader bound to the SWARMRUN_ environment prefix.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("SWARMRUN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("max_stored_plans", 100)
	v.SetDefault("max_cost_entries", 10000)
	v.SetDefault("example_max_len", 1200)
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("plan_retention_seconds", 3600)
	// Keys without a default are invisible to Unmarshal's env lookup, so the
	// optional string settings get empty defaults too.
	v.SetDefault("pricing_file", "")
	v.SetDefault("audit_dir", "")

	return &Loader{v: v}
}

// WithConfigFile makes the loader also read a YAML/JSON config file at path
// before falling back to defaults; missing files are not an error.
func (l *Loader) WithConfigFile(path string) *Loader {
	if path == "" {
		return l
	}
	l.v.SetConfigFile(path)
	_ = l.v.ReadInConfig()
	return l
}

// Load reads the ServerConfig, then scans the environment for
// SWARMRUN_PROVIDER_<NAME>_BASE_URL / _API_KEY pairs.
func (l *Loader) Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	validator := NewValidator()
	if err := validator.Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Providers = loadProviders(l.v)
	return &cfg, nil
}

func loadProviders(v *viper.Viper) map[string]ProviderConfig {
	providers := make(map[string]ProviderConfig)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		const prefix = "SWARMRUN_PROVIDER_"
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		switch {
		case strings.HasSuffix(rest, "_BASE_URL"):
			name := strings.ToLower(strings.TrimSuffix(rest, "_BASE_URL"))
			p := providers[name]
			p.BaseURL = value
			providers[name] = p
		case strings.HasSuffix(rest, "_API_KEY"):
			name := strings.ToLower(strings.TrimSuffix(rest, "_API_KEY"))
			p := providers[name]
			p.APIKey = value
			providers[name] = p
		}
	}
	_ = v // kept for symmetry with Load's signature; viper itself doesn't
	// expose a provider-name-agnostic prefix scan, so this walks os.Environ directly.
	return providers
}
