package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "GRAYLOGIC_ETS_"

// Config is the exporter configuration. Each section maps to one YAML key.
type Config struct {
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExportConfig contains defaults for generated ETS files.
type ExportConfig struct {
	// ProjectName names the output file when a request does not supply one.
	ProjectName string `yaml:"project_name"`

	// OutputDir is where the CLI writes files.
	OutputDir string `yaml:"output_dir"`

	// Locale is recorded with every export. It never changes the CSV bytes.
	Locale string `yaml:"locale"`

	// History enables the SQLite export history.
	History bool `yaml:"history"`
}

// DatabaseConfig locates the SQLite export history. BusyTimeout is in
// seconds.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig enables export events on the broker.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig bounds the reconnect backoff, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig configures the serve command.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// MaxBodyBytes limits the size of an export request body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig holds HTTP server timeouts in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig lists allowed origins; empty allows all.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig enables export metrics. FlushInterval is in seconds.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the YAML file at path over the defaults, then applies
// GRAYLOGIC_ETS_* environment overrides and validates the result. Keys
// absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return finish(cfg)
}

// Default is Load without a file, for commands run with no config.
func Default() (*Config, error) {
	return finish(defaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			ProjectName: "Project",
			OutputDir:   ".",
			Locale:      "en",
			History:     true,
		},
		Database: DatabaseConfig{
			Path:        "./data/graylogic-ets.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "graylogic-ets"},
			QoS:    1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host:         "0.0.0.0",
			Port:         8090,
			Timeouts:     APITimeoutConfig{Read: 30, Write: 30, Idle: 60},
			MaxBodyBytes: 10 << 20,
		},
		InfluxDB: InfluxDBConfig{BatchSize: 100, FlushInterval: 10},
		Logging:  LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// envString and envBool bind one GRAYLOGIC_ETS_<key> variable to a field.
// Unset or unparsable variables leave the field alone.
type envBinding func(cfg *Config, value string)

func envString(field func(*Config) *string) envBinding {
	return func(cfg *Config, v string) { *field(cfg) = v }
}

func envBool(field func(*Config) *bool) envBinding {
	return func(cfg *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			*field(cfg) = b
		}
	}
}

func envInt(field func(*Config) *int) envBinding {
	return func(cfg *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(cfg) = n
		}
	}
}

var envBindings = map[string]envBinding{
	"EXPORT_PROJECT_NAME": envString(func(c *Config) *string { return &c.Export.ProjectName }),
	"EXPORT_OUTPUT_DIR":   envString(func(c *Config) *string { return &c.Export.OutputDir }),
	"EXPORT_LOCALE":       envString(func(c *Config) *string { return &c.Export.Locale }),
	"EXPORT_HISTORY":      envBool(func(c *Config) *bool { return &c.Export.History }),
	"DATABASE_PATH":       envString(func(c *Config) *string { return &c.Database.Path }),
	"MQTT_ENABLED":        envBool(func(c *Config) *bool { return &c.MQTT.Enabled }),
	"MQTT_HOST":           envString(func(c *Config) *string { return &c.MQTT.Broker.Host }),
	"MQTT_PORT":           envInt(func(c *Config) *int { return &c.MQTT.Broker.Port }),
	"MQTT_USERNAME":       envString(func(c *Config) *string { return &c.MQTT.Auth.Username }),
	"MQTT_PASSWORD":       envString(func(c *Config) *string { return &c.MQTT.Auth.Password }),
	"API_HOST":            envString(func(c *Config) *string { return &c.API.Host }),
	"API_PORT":            envInt(func(c *Config) *int { return &c.API.Port }),
	"INFLUXDB_ENABLED":    envBool(func(c *Config) *bool { return &c.InfluxDB.Enabled }),
	"INFLUXDB_URL":        envString(func(c *Config) *string { return &c.InfluxDB.URL }),
	"INFLUXDB_TOKEN":      envString(func(c *Config) *string { return &c.InfluxDB.Token }),
	"INFLUXDB_ORG":        envString(func(c *Config) *string { return &c.InfluxDB.Org }),
	"INFLUXDB_BUCKET":     envString(func(c *Config) *string { return &c.InfluxDB.Bucket }),
	"LOG_LEVEL":           envString(func(c *Config) *string { return &c.Logging.Level }),
	"LOG_FORMAT":          envString(func(c *Config) *string { return &c.Logging.Format }),
}

func applyEnvOverrides(cfg *Config) {
	for key, bind := range envBindings {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			bind(cfg, v)
		}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	check(strings.TrimSpace(c.Export.ProjectName) == "", "export.project_name is required")
	check(c.Export.History && c.Database.Path == "", "database.path is required when export.history is enabled")
	check(c.MQTT.QoS < 0 || c.MQTT.QoS > 2, "mqtt.qos must be 0, 1, or 2")
	check(c.API.Port < 1 || c.API.Port > 65535, "api.port must be between 1 and 65535")
	check(c.API.MaxBodyBytes < 0, "api.max_body_bytes must not be negative")
	if c.InfluxDB.Enabled {
		check(c.InfluxDB.URL == "", "influxdb.url is required when influxdb is enabled")
		check(c.InfluxDB.Bucket == "", "influxdb.bucket is required when influxdb is enabled")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		check(true, "logging.format must be json or text")
	}

	return errors.Join(errs...)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// ReadTimeout is also used as the header read timeout.
func (t APITimeoutConfig) ReadTimeout() time.Duration { return seconds(t.Read) }

func (t APITimeoutConfig) WriteTimeout() time.Duration { return seconds(t.Write) }

func (t APITimeoutConfig) IdleTimeout() time.Duration { return seconds(t.Idle) }
