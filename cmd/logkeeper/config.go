package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

var ErrConfParamMissing = fmt.Errorf("missing config parameter")

type Config struct {
	LogLevel     string   `toml:"logLevel"`
	KafkaBrokers []string `toml:"kafkaBrokers"`
	KafkaTopic   string   `toml:"kafkaTopic"`
	KafkaGroupID string   `toml:"kafkaGroupID"`

	ElasticSearchIndex string   `toml:"elasticSearchIndex"`
	ElasticSearchNodes []string `toml:"elasticSearchNodes"`

	NumWorkers int `toml:"numWorkers"`
}

// loadConfig reads path on top of the defaults and checks that the
// broker and index settings are present.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogLevel:           "info",
		KafkaGroupID:       "logkeeper",
		ElasticSearchIndex: "access-logs",
		NumWorkers:         4,
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	switch {
	case len(cfg.KafkaBrokers) == 0:
		return nil, fmt.Errorf("%w: kafkaBrokers", ErrConfParamMissing)
	case cfg.KafkaTopic == "":
		return nil, fmt.Errorf("%w: kafkaTopic", ErrConfParamMissing)
	case len(cfg.ElasticSearchNodes) == 0:
		return nil, fmt.Errorf("%w: elasticSearchNodes", ErrConfParamMissing)
	}
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}
	return cfg, nil
}
