package cmd

import (
	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"
)

// Config holds the environment-configurable options of the retrace service.
type Config struct {
	Address null.String `json:"address" envconfig:"RETRACE_ADDRESS"`
	MapsDir null.String `json:"mapsDir" envconfig:"RETRACE_MAPS_DIR"`
}

// NewConfig creates a new Config instance with default values for some fields.
func NewConfig() Config {
	return Config{
		Address: null.NewString("localhost:6565", false),
	}
}

// Apply merges the provided config on top of the current one, returning the
// result.
func (c Config) Apply(cfg Config) Config {
	if cfg.Address.Valid {
		c.Address = cfg.Address
	}
	if cfg.MapsDir.Valid {
		c.MapsDir = cfg.MapsDir
	}
	return c
}

// readEnvConfig reads the service configuration from the environment on top
// of the defaults.
func readEnvConfig(environ []string) (Config, error) {
	env := buildEnvMap(environ)
	envCfg := Config{}
	err := envconfig.Process("", &envCfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		return Config{}, err
	}
	return NewConfig().Apply(envCfg), nil
}
