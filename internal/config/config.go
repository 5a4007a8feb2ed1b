package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "iterdiff.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultSessionTTL is how long an idle session survives.
	DefaultSessionTTL = 15 * time.Minute

	// DefaultMaxSessions bounds concurrent sessions.
	DefaultMaxSessions = 10000
)

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatBinary  = "binary"
)

// Config represents the complete iterdiff.json configuration.
type Config struct {
	TrackBy TrackByConfig `json:"trackBy,omitempty"`
	Output  OutputConfig  `json:"output,omitempty"`
	Server  ServerConfig  `json:"server,omitempty"`
	S3      S3Config      `json:"s3,omitempty"`
	Log     LogConfig     `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// TrackByConfig selects how items are matched across snapshots. At most one
// of Field and Lua may be set; with neither, items are tracked by identity.
type TrackByConfig struct {
	// Field is a gjson path read from every item, e.g. "id" or "user.id".
	Field string `json:"field,omitempty"`

	// Lua is the body of function(index, item) returning the key.
	Lua string `json:"lua,omitempty"`

	// Index tracks items by position.
	Index bool `json:"index,omitempty"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	// Format is one of text, json, msgpack or binary.
	Format string `json:"format,omitempty"`
}

// ServerConfig contains diff server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// SessionTTL is a Go duration string, e.g. "15m".
	SessionTTL string `json:"sessionTTL,omitempty"`

	MaxSessions int `json:"maxSessions,omitempty"`

	// Metrics exposes /metrics.
	Metrics bool `json:"metrics"`
}

// S3Config configures snapshot loading from S3.
type S3Config struct {
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.Server.Metrics = true
	c.applyDefaults()
	return c
}

// Load reads iterdiff.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithSource(path).
				WithSuggestion("Run 'iterdiff init' to create one")
		}
		return nil, errors.New("E142").WithSource(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E142").
			WithSource(path).
			Wrap(err).
			WithSuggestion("Check that iterdiff.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithSource(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = FormatText
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = DefaultSessionTTL.String()
	}
	if c.Server.MaxSessions == 0 {
		c.Server.MaxSessions = DefaultMaxSessions
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks value ranges and mutually exclusive settings.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E120").WithSource(c.configPath).WithDetail(detail)
	}

	set := 0
	for _, on := range []bool{c.TrackBy.Field != "", c.TrackBy.Lua != "", c.TrackBy.Index} {
		if on {
			set++
		}
	}
	if set > 1 {
		return invalid("trackBy: only one of field, lua and index may be set")
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatMsgpack, FormatBinary:
	default:
		return errors.New("E150").WithSource(c.configPath).
			WithDetail("output.format " + strconv.Quote(c.Output.Format) + " is not one of text, json, msgpack, binary")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port must be between 1 and 65535")
	}
	if ttl, err := time.ParseDuration(c.Server.SessionTTL); err != nil || ttl <= 0 {
		return invalid("server.sessionTTL must be a positive duration such as \"15m\"")
	}
	if c.Server.MaxSessions < 0 {
		return invalid("server.maxSessions must not be negative")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level must be debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json")
	}
	return nil
}

// Address returns host:port for the server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SessionTTL returns the parsed session TTL, or the default when invalid.
func (c *Config) SessionTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil || ttl <= 0 {
		return DefaultSessionTTL
	}
	return ttl
}

// LogLevel returns the configured slog level, or Info when invalid.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(s)))
	return level, err
}

// Exists reports whether dir contains iterdiff.json.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Find walks up from startDir looking for iterdiff.json and returns the
// directory that contains it.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").WithSource(startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest iterdiff.json above the working
// directory. When none exists it returns the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := Find(wd)
	if err != nil {
		return New(), nil
	}
	return Load(dir)
}
