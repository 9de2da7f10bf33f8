package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ThiefMaster/mqtt-alert/internal/topic"
)

// Broker identities. These are the labels used in logs and telemetry.
const (
	BrokerLocal = "local"
	BrokerTTN   = "ttn"
)

// defaultBrokerPort is the standard unencrypted MQTT port.
const defaultBrokerPort = 1883

// ErrNoBrokers is returned when neither mqtt.local nor mqtt.ttn is configured.
var ErrNoBrokers = errors.New("config: no MQTT broker configured")

// Config is the root configuration structure for mqtt-alert.
// All configuration is loaded from YAML and secrets can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig     `yaml:"mqtt"`
	Flood     *SensorConfig  `yaml:"flood"`
	Mailbox   *SensorConfig  `yaml:"mailbox"`
	Appliance *SensorConfig  `yaml:"appliance"`
	Pushover  PushoverConfig `yaml:"pushover"`
	Notify    NotifyConfig   `yaml:"notify"`
	InfluxDB  InfluxDBConfig `yaml:"influxdb"`
	API       APIConfig      `yaml:"api"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains the broker connections. A nil broker is not started.
type MQTTConfig struct {
	// Local is the home broker carrying flood and appliance sensors.
	Local *BrokerConfig `yaml:"local"`

	// TTN is The Things Network broker carrying the mailbox sensor.
	TTN *BrokerConfig `yaml:"ttn"`

	// RetryBackoff is the pause after an event-loop error, in seconds.
	RetryBackoff int `yaml:"retry_backoff"`

	// Reconnect controls paho's own reconnect timing.
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// BrokerConfig contains MQTT broker connection details.
type BrokerConfig struct {
	Host     string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// SensorConfig lists the topic patterns a logical sensor listens on.
type SensorConfig struct {
	Topics []string `yaml:"topics"`
}

// PushoverConfig contains notification credentials.
type PushoverConfig struct {
	// User is the recipient (user or group) key.
	User string `yaml:"user"`

	// Token is the application API token.
	Token string `yaml:"token"`

	// APIURL is the Pushover API base URL. Tests point it at a local server.
	APIURL string `yaml:"api_url"`

	// Timeout is the HTTP timeout for one delivery, in seconds.
	Timeout int `yaml:"timeout"`
}

// NotifyConfig contains delivery guard settings.
type NotifyConfig struct {
	// RateLimit is the maximum sustained notifications per minute. 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`

	// Burst is the number of notifications allowed back to back.
	Burst int `yaml:"burst"`

	// BreakerFailures opens the circuit after this many consecutive failures. 0 disables the breaker.
	BreakerFailures int `yaml:"breaker_failures"`

	// BreakerReset is how long the circuit stays open, in seconds.
	BreakerReset int `yaml:"breaker_reset"`
}

// InfluxDBConfig contains InfluxDB connection settings for operational telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the local status server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MQTTALERT_SECTION_KEY
// For example: MQTTALERT_PUSHOVER_TOKEN, MQTTALERT_MQTT_TTN_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyBrokerDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			RetryBackoff: 2,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Pushover: PushoverConfig{
			APIURL:  "https://api.pushover.net",
			Timeout: 10,
		},
		Notify: NotifyConfig{
			RateLimit:       30,
			Burst:           5,
			BreakerFailures: 5,
			BreakerReset:    60,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 9464,
			Timeouts: APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyBrokerDefaults fills per-broker defaults. Brokers are optional
// pointers, so yaml cannot merge them over a pre-populated default.
func (c *Config) applyBrokerDefaults() {
	for _, b := range []*BrokerConfig{c.MQTT.Local, c.MQTT.TTN} {
		if b != nil && b.Port == 0 {
			b.Port = defaultBrokerPort
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Only secrets are overridable; they should not live in the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MQTTALERT_PUSHOVER_TOKEN"); v != "" {
		cfg.Pushover.Token = v
	}
	if v := os.Getenv("MQTTALERT_PUSHOVER_USER"); v != "" {
		cfg.Pushover.User = v
	}

	if v := os.Getenv("MQTTALERT_MQTT_LOCAL_PASSWORD"); v != "" && cfg.MQTT.Local != nil {
		cfg.MQTT.Local.Password = v
	}
	if v := os.Getenv("MQTTALERT_MQTT_TTN_PASSWORD"); v != "" && cfg.MQTT.TTN != nil {
		cfg.MQTT.TTN.Password = v
	}

	if v := os.Getenv("MQTTALERT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Every problem is collected so a single run reports all of them.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	if c.MQTT.Local == nil && c.MQTT.TTN == nil {
		return ErrNoBrokers
	}

	var errs []string

	if c.MQTT.Local != nil {
		errs = append(errs, c.MQTT.Local.validate("mqtt.local")...)
		if c.Flood == nil && c.Appliance == nil {
			errs = append(errs, "mqtt.local requires a flood or appliance section")
		}
	}
	if c.MQTT.TTN != nil {
		errs = append(errs, c.MQTT.TTN.validate("mqtt.ttn")...)
		if c.Mailbox == nil {
			errs = append(errs, "mqtt.ttn requires a mailbox section")
		}
	}
	if c.MQTT.RetryBackoff <= 0 {
		errs = append(errs, "mqtt.retry_backoff must be positive")
	}

	errs = append(errs, c.Flood.validate("flood")...)
	errs = append(errs, c.Mailbox.validate("mailbox")...)
	errs = append(errs, c.Appliance.validate("appliance")...)

	if c.Pushover.Token == "" {
		errs = append(errs, "pushover.token is required (set MQTTALERT_PUSHOVER_TOKEN environment variable)")
	}
	if c.Pushover.User == "" {
		errs = append(errs, "pushover.user is required (set MQTTALERT_PUSHOVER_USER environment variable)")
	}
	if c.Pushover.APIURL == "" {
		errs = append(errs, "pushover.api_url cannot be empty")
	}

	if c.Notify.RateLimit < 0 || c.Notify.Burst < 0 {
		errs = append(errs, "notify.rate_limit and notify.burst cannot be negative")
	}
	if c.Notify.RateLimit > 0 && c.Notify.Burst == 0 {
		errs = append(errs, "notify.burst must be positive when notify.rate_limit is set")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (b *BrokerConfig) validate(section string) []string {
	var errs []string
	if b.Host == "" {
		errs = append(errs, section+".hostname is required")
	}
	if b.Port < 1 || b.Port > 65535 {
		errs = append(errs, section+".port must be between 1 and 65535")
	}
	if b.ClientID == "" {
		errs = append(errs, section+".client_id is required")
	}
	return errs
}

// validate is nil-safe: an absent sensor section is valid.
func (s *SensorConfig) validate(section string) []string {
	if s == nil {
		return nil
	}
	if len(s.Topics) == 0 {
		return []string{section + ".topics must list at least one topic"}
	}

	var errs []string
	for _, t := range s.Topics {
		if err := topic.ValidatePattern(t); err != nil {
			errs = append(errs, fmt.Sprintf("%s.topics: %v", section, err))
		}
	}
	return errs
}

// RetryBackoffDuration returns mqtt.retry_backoff as a Duration.
func (c *Config) RetryBackoffDuration() time.Duration {
	return time.Duration(c.MQTT.RetryBackoff) * time.Second
}

// PushoverTimeout returns pushover.timeout as a Duration.
func (c *Config) PushoverTimeout() time.Duration {
	return time.Duration(c.Pushover.Timeout) * time.Second
}

// BreakerResetDuration returns notify.breaker_reset as a Duration.
func (c *Config) BreakerResetDuration() time.Duration {
	return time.Duration(c.Notify.BreakerReset) * time.Second
}
