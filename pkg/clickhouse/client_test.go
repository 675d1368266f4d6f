package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:         "ch.local",
		Port:         9000,
		Database:     "cpireg",
		User:         "default",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9000", u.Host)
	assert.Equal(t, "/cpireg", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "5s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "1", u.Query().Get("async_insert"))
	assert.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
}

func TestBuildDSNHTTP(t *testing.T) {
	dsn := buildDSN(ClientConfig{Host: "ch.local", Port: 8123, Database: "db", UseHTTP: true})
	assert.Equal(t, "http://ch.local:8123/db", dsn)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	assert.EqualError(t, err, "host is required")
}

func TestNewClientRejectsBadDatabaseName(t *testing.T) {
	_, err := NewClient(context.Background(),
		WithHost("ch.local"),
		WithDatabase("cpireg; DROP TABLE runs"),
		WithCreateDatabase(true),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database name")
}

func TestClientOptions(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("cpireg"),
		WithCreateDatabase(true),
		WithSchema(time.Minute, "CREATE TABLE a", "CREATE TABLE b"),
	} {
		opt(cfg)
	}
	require.NoError(t, cfg.validate())
	assert.True(t, cfg.CreateDatabase)
	assert.Equal(t, []string{"CREATE TABLE a", "CREATE TABLE b"}, cfg.Schema)
	assert.Equal(t, time.Minute, cfg.SchemaTimeout)

	WithSchema(0)(cfg)
	assert.Equal(t, time.Minute, cfg.SchemaTimeout)
	assert.Empty(t, cfg.Schema)
}

func TestBootstrapConfig(t *testing.T) {
	cfg := defaultClientConfig()
	cfg.Host = "ch.local"
	cfg.Database = "cpireg"
	cfg.AsyncInsert = true
	cfg.CreateDatabase = true
	cfg.Schema = []string{"CREATE TABLE a"}

	boot := cfg.bootstrap()
	assert.Equal(t, "default", boot.Database)
	assert.Equal(t, 1, boot.MaxOpenConns)
	assert.False(t, boot.AsyncInsert)
	assert.False(t, boot.CreateDatabase)
	assert.Nil(t, boot.Schema)
	assert.Equal(t, "ch.local", boot.Host)

	assert.Equal(t, "cpireg", cfg.Database)
	assert.Equal(t, "clickhouse://default:@ch.local:9000/default?dial_timeout=5s&read_timeout=10s", buildDSN(boot))
}
