package config

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/common/model"
	"github.com/spf13/viper"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/render"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "canopy.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CANOPY"

	// DefaultPort is the default dev server port.
	DefaultPort = 3000

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"
)

// Config represents canopy.json.
type Config struct {
	Render    RenderConfig    `mapstructure:"render"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Dev       DevConfig       `mapstructure:"dev"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`

	// path stores where the config was loaded from; empty for defaults.
	path string
}

// RenderConfig maps onto render options.
type RenderConfig struct {
	// Sync drains invalidations immediately instead of once per frame.
	Sync bool `mapstructure:"sync"`

	// Merge adopts existing markup in the container on mount.
	Merge bool `mapstructure:"merge"`

	// Debug enables advisory warnings.
	Debug bool `mapstructure:"debug"`

	// BatchSize is the number of instructions processed per step.
	// Zero keeps the renderer default.
	BatchSize int `mapstructure:"batchSize"`
}

// TelemetryConfig configures pkg/telemetry.
type TelemetryConfig struct {
	Metrics    bool   `mapstructure:"metrics"`
	Namespace  string `mapstructure:"namespace"`
	TracerName string `mapstructure:"tracerName"`
}

// DevConfig contains dev server settings.
type DevConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SnapshotConfig selects the snapshot store. A non-empty Bucket selects S3,
// otherwise snapshots are written to Dir.
type SnapshotConfig struct {
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

func newViper() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("render.sync", false)
	v.SetDefault("render.merge", false)
	v.SetDefault("render.debug", false)
	v.SetDefault("render.batchSize", 0)
	v.SetDefault("telemetry.metrics", true)
	v.SetDefault("telemetry.namespace", "canopy")
	v.SetDefault("telemetry.tracerName", "canopy")
	v.SetDefault("dev.host", DefaultHost)
	v.SetDefault("dev.port", DefaultPort)
	v.SetDefault("snapshot.dir", "snapshots")
	v.SetDefault("snapshot.bucket", "")
	v.SetDefault("snapshot.prefix", "snapshots/")
	v.SetDefault("snapshot.region", "us-east-1")
	v.SetDefault("snapshot.endpoint", "")

	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper, path string) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.New(errors.ErrConfigInvalid).Wrap(err).
			WithSuggestion("Check the value types in " + ConfigFileName)
	}
	c.path = path
	return &c, nil
}

// New returns the defaults with environment overrides applied.
func New() *Config {
	c, err := decode(newViper(), "")
	if err != nil {
		// Defaults only fail to decode when an environment override has the
		// wrong type; fall back to the plain defaults.
		return &Config{
			Telemetry: TelemetryConfig{Metrics: true, Namespace: "canopy", TracerName: "canopy"},
			Dev:       DevConfig{Host: DefaultHost, Port: DefaultPort},
			Snapshot:  SnapshotConfig{Dir: "snapshots", Prefix: "snapshots/", Region: "us-east-1"},
		}
	}
	return c
}

// Load reads canopy.json from dir. A missing file is not an error: the
// defaults and environment overrides are returned. CANOPY_CONFIG names an
// explicit file instead, which must exist.
func Load(dir string) (*Config, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return LoadFile(path)
	}
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if errors.HasCode(err, errors.ErrConfigNotFound) {
		return New(), nil
	}
	return cfg, err
}

// LoadFile reads the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.ErrConfigNotFound).
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New(errors.ErrConfigRead).Wrap(err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.New(errors.ErrConfigParse).Wrap(err).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	return decode(v, path)
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Render.BatchSize < 0 {
		return errors.New(errors.ErrConfigInvalid).
			WithDetailf("render.batchSize must not be negative, got %d", c.Render.BatchSize)
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New(errors.ErrConfigInvalid).
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Telemetry.Metrics && !model.IsValidMetricName(model.LabelValue(c.Telemetry.Namespace)) {
		return errors.New(errors.ErrConfigInvalid).
			WithDetailf("telemetry.namespace %q is not a valid metric name prefix", c.Telemetry.Namespace).
			WithSuggestion("Use letters, digits and underscores only")
	}
	if c.Snapshot.Bucket == "" && c.Snapshot.Dir == "" {
		return errors.New(errors.ErrConfigInvalid).
			WithDetail("snapshot needs a dir or a bucket")
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Region == "" {
		return errors.New(errors.ErrConfigInvalid).
			WithDetail("snapshot.region is required with snapshot.bucket")
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// RenderOptions maps the render section onto renderer options.
func (c *Config) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithSync(c.Render.Sync),
		render.WithMerge(c.Render.Merge),
		render.WithDebug(c.Render.Debug),
	}
	if c.Render.BatchSize > 0 {
		opts = append(opts, render.WithBatchSize(c.Render.BatchSize))
	}
	return opts
}
