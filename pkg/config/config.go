// Package config loads the server configuration from a TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"blog/pkg/storage/mongo"
)

var ErrConfParamMissing = fmt.Errorf("configuration parameter missing")

// Duration reads values such as "24h" or "5s" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	ServiceName string   `toml:"serviceName"`
	HTTPAddr    string   `toml:"httpAddr"`
	LogLevel    string   `toml:"logLevel"`
	JWTSecret   string   `toml:"jwtSecret"`
	TokenTTL    Duration `toml:"tokenTTL"`

	Mongo  mongo.Config `toml:"mongo"`
	Kafka  Kafka        `toml:"kafka"`
	Censor Censor       `toml:"censor"`
}

type Kafka struct {
	Addr  string `toml:"addr"`
	Topic string `toml:"topic"`
	Batch int    `toml:"batch"`
}

func (k Kafka) Enabled() bool {
	return k.Addr != "" && k.Topic != ""
}

// Censor enables comment moderation. WordsPath selects the local word list,
// ServiceURL a remote censorship service; WordsPath wins when both are set.
type Censor struct {
	WordsPath  string   `toml:"wordsPath"`
	ServiceURL string   `toml:"serviceURL"`
	Timeout    Duration `toml:"timeout"`
}

func Default() *Config {
	return &Config{
		ServiceName: "blog",
		HTTPAddr:    ":8080",
		LogLevel:    "info",
		TokenTTL:    Duration{24 * time.Hour},
		Censor:      Censor{Timeout: Duration{5 * time.Second}},
	}
}

// Load reads the file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)

	return cfg, nil
}

// applyEnv lets secrets and deployment specific values come from the
// environment instead of the file.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Mongo.Host, "MONGO_HOST")
	set(&c.Mongo.Port, "MONGO_PORT")
	set(&c.Mongo.DBName, "MONGO_DB_NAME")
	set(&c.Mongo.User, "MONGO_USER")
	set(&c.Mongo.Pass, "MONGO_PASS")
	set(&c.JWTSecret, "JWT_SECRET")
	set(&c.Kafka.Addr, "KAFKA_ADDR")
}

// Validate checks the parameters the server cannot start without. Mongo
// settings are validated separately since the in-memory store needs none.
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return fmt.Errorf("%w: httpAddr", ErrConfParamMissing)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: JWT_SECRET", ErrConfParamMissing)
	case c.TokenTTL.Duration <= 0:
		return fmt.Errorf("%w: tokenTTL", ErrConfParamMissing)
	}
	return nil
}
