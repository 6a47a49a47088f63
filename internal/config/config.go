package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Connection represents a saved database connection profile. Passwords are
// kept in the system keyring, never in the config file; the Password field
// only carries a value in memory.
type Connection struct {
	Name      string `mapstructure:"name" yaml:"name" validate:"required"`
	Host      string `mapstructure:"host" yaml:"host" validate:"required"`
	Port      int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Database  string `mapstructure:"database" yaml:"database"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"-" yaml:"-"`
	Collation string `mapstructure:"collation" yaml:"collation,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme             string `mapstructure:"theme" yaml:"theme"`
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
}

var validate = validator.New()

// Validate checks every connection profile.
func (cfg *Config) Validate() error {
	for i := range cfg.Connections {
		if err := validate.Struct(&cfg.Connections[i]); err != nil {
			return fmt.Errorf("connection %q: %w", cfg.Connections[i].Name, err)
		}
	}
	return nil
}

// DSN builds a mysql:// connection string from the profile.
func (c Connection) DSN() string {
	dsn := "mysql://"
	if c.Username != "" {
		if c.Password != "" {
			dsn += url.UserPassword(c.Username, c.Password).String()
		} else {
			dsn += url.User(c.Username).String()
		}
		dsn += "@"
	}
	dsn += c.Host
	if c.Port > 0 {
		dsn += ":" + strconv.Itoa(c.Port)
	}
	dsn += "/" + c.Database
	return dsn
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a mysql:// connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "" && u.Scheme != "mysql" {
		return Connection{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 3306
	}

	// Auto-generate a name
	conn.Name = fmt.Sprintf("mysql-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}
