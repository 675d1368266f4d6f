package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Logging     struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout" validate:"required"`
		TimeFormat string `yaml:"time_format"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100" validate:"min=1"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes" default:"10485760" validate:"min=1024"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Provider struct {
		URL       string        `yaml:"url" default:"https://api.bls.gov/publicAPI/v2/timeseries/data/" validate:"required,url"`
		SeriesID  string        `yaml:"series_id" default:"CUUR0000SA0" validate:"required"`
		APIKey    string        `yaml:"api_key"`
		Timeout   time.Duration `yaml:"timeout" default:"20s"`
		UserAgent string        `yaml:"user_agent" default:"cpireg/1.0"`
		StartYear int           `yaml:"start_year" default:"2020" validate:"gte=1913"`
		EndYear   int           `yaml:"end_year" default:"2024" validate:"gtefield=StartYear"`
	} `yaml:"provider"`
	Pipeline struct {
		MinRows int `yaml:"min_rows" default:"2" validate:"min=2"`
	} `yaml:"pipeline"`
	Performance struct {
		Path              string `yaml:"path" default:"division_performance.csv"`
		DateColumn        string `yaml:"date_column"`
		ValueColumn       string `yaml:"value_column"`
		SyntheticFallback bool   `yaml:"synthetic_fallback" default:"true"`
	} `yaml:"performance"`
	Report struct {
		OutputPath       string `yaml:"output_path" default:"cpi_vs_division.png" validate:"required"`
		Decimals         int    `yaml:"decimals" default:"4" validate:"min=0,max=10"`
		Title            string `yaml:"title" default:"CPI vs Division Performance"`
		IndexLabel       string `yaml:"index_label" default:"CPI (Consumer Price Index)"`
		PerformanceLabel string `yaml:"performance_label" default:"Division performance"`
		Width            int    `yaml:"width" default:"1000" validate:"min=200,max=4000"`
		Height           int    `yaml:"height" default:"600" validate:"min=150,max=4000"`
	} `yaml:"report"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		Rate    float64 `yaml:"rate" default:"0.2" validate:"gt=0"`
		Burst   int     `yaml:"burst" default:"3" validate:"min=1"`
	} `yaml:"ratelimit"`
	Cache struct {
		TTL      time.Duration `yaml:"ttl" default:"1h"`
		MaxItems int           `yaml:"max_items" default:"256" validate:"min=1"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"cpireg:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Archive struct {
		Enabled    bool `yaml:"enabled"`
		ClickHouse struct {
			Host          string        `yaml:"host" default:"localhost"`
			Port          int           `yaml:"port" default:"9000"`
			Database      string        `yaml:"database" default:"cpireg"`
			User          string        `yaml:"user" default:"default"`
			Password      string        `yaml:"password"`
			UseHTTP       bool          `yaml:"use_http"`
			AsyncInsert   bool          `yaml:"async_insert"`
			WaitForAsync  bool          `yaml:"wait_for_async_insert"`
			DialTimeout   time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout   time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout  time.Duration `yaml:"write_timeout" default:"10s"`
			SchemaTimeout time.Duration `yaml:"schema_timeout" default:"30s"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Events struct {
		Enabled bool `yaml:"enabled"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers" default:"[\"localhost:9092\"]"`
			Topic        string        `yaml:"topic" default:"cpireg.runs"`
			LogTopic     string        `yaml:"log_topic" default:"cpireg.logs"`
			RequiredAcks int           `yaml:"required_acks" default:"1" validate:"oneof=-1 0 1"`
			Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
	} `yaml:"events"`
}

var validate = validator.New()

// Default returns a configuration built only from default tags.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env files into the process environment, reads the
// YAML file and overrides it with environment variables.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BLS_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("CPIREG_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CPIREG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CPIREG_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CPIREG_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Archive.ClickHouse.Host = v
	}
	return nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Events.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers cannot be empty when events are enabled")
	}
	return nil
}

// HasAPIKey reports whether a provider key is configured.
func (c *Config) HasAPIKey() bool {
	return c.Provider.APIKey != ""
}
