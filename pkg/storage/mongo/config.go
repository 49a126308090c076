package mongo

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrConfParamMissing = fmt.Errorf("configuration parameter missing")

type Config struct {
	Host   string `toml:"host"`
	Port   string `toml:"port"`
	DBName string `toml:"dbName"`
	User   string `toml:"user"`
	Pass   string `toml:"pass"`
}

// Validate reports the first required parameter that is not set.
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: MONGO_HOST", ErrConfParamMissing)
	case c.Port == "":
		return fmt.Errorf("%w: MONGO_PORT", ErrConfParamMissing)
	case c.DBName == "":
		return fmt.Errorf("%w: MONGO_DB_NAME", ErrConfParamMissing)
	}
	return nil
}

func (c *Config) conString() string {
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(c.Host, c.Port), Path: "/"}
	if c.User != "" && c.Pass != "" {
		u.User = url.UserPassword(c.User, c.Pass)
	}
	return u.String()
}

func (c *Config) Options() *options.ClientOptions {
	return options.Client().ApplyURI(c.conString())
}

// String masks the password so the config can be logged.
func (c Config) String() string {
	c.Pass = strings.Repeat("*", len([]rune(c.Pass)))
	return fmt.Sprintf("%#v", c)
}
