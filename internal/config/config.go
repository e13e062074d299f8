package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kode4food/nebula/pkg/api"
)

type (
	// Config holds configuration settings for the workflow engine
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Run observers
		Events  EventsConfig
		Archive ArchiveConfig

		// Startup content
		CatalogPath  string
		AuroraEnable bool

		ShutdownTimeout time.Duration
	}

	// EventsConfig configures the Redis stream that receives run events.
	// An empty Addr disables publishing and empty Types publishes every
	// event type
	EventsConfig struct {
		Addr     string
		Password string
		DB       int
		Stream   string
		MaxLen   int64
		Types    []api.EventType
	}

	// ArchiveConfig configures the bucket that receives finished runs. An
	// empty BucketURL disables archiving
	ArchiveConfig struct {
		BucketURL string
		Prefix    string
	}
)

const (
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535
	DefaultRedisDB = 0
	MaxRedisDB     = 15

	DefaultEventStream    = "nebula:events"
	DefaultEventStreamLen = 10_000
	MaxEventStreamLen     = 100_000_000
	DefaultArchivePrefix  = "runs/"

	defaultLogLevel = "info"
)

var (
	ErrInvalidAPIPort         = errors.New("invalid API port")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidEventStream     = errors.New("event stream name is required")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidEventType       = errors.New("invalid event type")
)

var eventTypes = map[api.EventType]bool{
	api.EventTypeStepCompleted: true,
	api.EventTypeRunFinished:   true,
	api.EventTypeRunFailed:     true,
}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// NewDefaultConfig creates a configuration with sensible defaults. Event
// publishing and archiving are disabled until addresses are provided
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:  DefaultAPIPort,
		APIHost:  DefaultAPIHost,
		LogLevel: defaultLogLevel,
		Events: EventsConfig{
			DB:     DefaultRedisDB,
			Stream: DefaultEventStream,
			MaxLen: DefaultEventStreamLen,
		},
		Archive: ArchiveConfig{
			Prefix: DefaultArchivePrefix,
		},
		AuroraEnable:    true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		c.CatalogPath = path
	}
	if url := os.Getenv("ARCHIVE_BUCKET_URL"); url != "" {
		c.Archive.BucketURL = url
	}
	if prefix := os.Getenv("ARCHIVE_PREFIX"); prefix != "" {
		c.Archive.Prefix = prefix
	}
	if addr := os.Getenv("EVENTS_REDIS_ADDR"); addr != "" {
		c.Events.Addr = addr
	}
	if password := os.Getenv("EVENTS_REDIS_PASSWORD"); password != "" {
		c.Events.Password = password
	}
	if stream := os.Getenv("EVENTS_REDIS_STREAM"); stream != "" {
		c.Events.Stream = stream
	}
	if types := os.Getenv("EVENTS_TYPES"); types != "" {
		c.Events.Types = parseEventTypes(types)
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"EVENTS_REDIS_DB", &c.Events.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"EVENTS_REDIS_MAXLEN", &c.Events.MaxLen, -1, MaxEventStreamLen,
	); err != nil {
		return err
	}
	if err := loadEnvBool("AURORA_ENABLED", &c.AuroraEnable); err != nil {
		return err
	}
	return loadEnvDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if !logLevels[c.LogLevel] {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Events.Enabled() && c.Events.Stream == "" {
		return ErrInvalidEventStream
	}

	for _, et := range c.Events.Types {
		if !eventTypes[et] {
			return fmt.Errorf("%w: %s", ErrInvalidEventType, et)
		}
	}

	return nil
}

// Enabled reports whether run events should be published
func (c EventsConfig) Enabled() bool {
	return c.Addr != ""
}

// Enabled reports whether finished runs should be archived
func (c ArchiveConfig) Enabled() bool {
	return c.BucketURL != ""
}

func parseEventTypes(s string) []api.EventType {
	var res []api.EventType
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, api.EventType(part))
		}
	}
	return res
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

func loadEnvBool(key string, dst *bool) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = v
	return nil
}

func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = d
	return nil
}
