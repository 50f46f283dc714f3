package config

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml"
)

// Parse reads TOML config, fills defaults-free Config and validates it.
func Parse(rawData []byte) (*Config, error) {
	tree, err := toml.LoadBytes(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse toml config: %w", err)
	}

	marshalledData, err := json.Marshal(tree.ToMap())
	if err != nil {
		return nil, fmt.Errorf("cannot convert config to json: %w", err)
	}

	conf := &Config{}

	if err := json.Unmarshal(marshalledData, conf); err != nil {
		return nil, fmt.Errorf("cannot parse a config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}
