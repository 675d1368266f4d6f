package clickhouse

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds connection settings plus the bootstrap the client runs
// before it is handed out: database creation and schema DDL.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	UseHTTP         bool
	AsyncInsert     bool
	WaitForAsync    bool

	// CreateDatabase issues CREATE DATABASE IF NOT EXISTS through the
	// default database before connecting to Database.
	CreateDatabase bool
	// Schema statements run in order once connected. They must be idempotent.
	Schema        []string
	SchemaTimeout time.Duration
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		SchemaTimeout:   30 * time.Second,
	}
}

func (c *ClientConfig) validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	// The name is interpolated into CREATE DATABASE.
	if !identRe.MatchString(c.Database) {
		return fmt.Errorf("invalid database name %q", c.Database)
	}
	return nil
}

// bootstrap is a single-connection config bound to the default database.
func (c ClientConfig) bootstrap() ClientConfig {
	c.Database = "default"
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	c.AsyncInsert = false
	c.CreateDatabase = false
	c.Schema = nil
	return c
}

// WithHost sets database host.
func WithHost(host string) ClientOption {
	return func(c *ClientConfig) {
		c.Host = host
	}
}

// WithPort sets database port.
func WithPort(port int) ClientOption {
	return func(c *ClientConfig) {
		c.Port = port
	}
}

// WithDatabase sets database name.
func WithDatabase(database string) ClientOption {
	return func(c *ClientConfig) {
		c.Database = database
	}
}

// WithCredentials sets username and password.
func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) {
		c.User = user
		c.Password = password
	}
}

// WithMaxConnections sets max open and idle connections.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithTimeouts sets dial/read/write timeouts.
func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// WithHTTP enables HTTP protocol instead of native.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *ClientConfig) {
		c.UseHTTP = useHTTP
	}
}

// WithAsyncInsert configures async_insert and wait behavior.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = enabled
		c.WaitForAsync = wait
	}
}

// WithCreateDatabase creates the configured database if it is missing.
func WithCreateDatabase(create bool) ClientOption {
	return func(c *ClientConfig) {
		c.CreateDatabase = create
	}
}

// WithSchema sets DDL statements run after connecting, bounded by timeout.
func WithSchema(timeout time.Duration, stmts ...string) ClientOption {
	return func(c *ClientConfig) {
		c.Schema = stmts
		if timeout > 0 {
			c.SchemaTimeout = timeout
		}
	}
}
