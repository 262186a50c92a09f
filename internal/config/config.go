package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/permalink"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "permalink.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "permalink.yaml"

	// YMLFileName is the alternative YAML configuration file name.
	YMLFileName = "permalink.yml"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultHref is the page the server's location starts at.
	DefaultHref = "/"

	// DefaultBackend is the default storage backend.
	DefaultBackend = "memory"
)

// FileNames lists the configuration file names Load looks for, in order.
var FileNames = []string{JSONFileName, YAMLFileName, YMLFileName}

// Positions lists the accepted control positions.
var Positions = []string{"topleft", "topright", "bottomleft", "bottomright"}

// Backends lists the accepted storage backends.
var Backends = []string{"memory", "redis", "badger", "s3"}

// Config represents the complete permalink configuration.
type Config struct {
	// Control configures the permalink control.
	Control ControlConfig `json:"control" yaml:"control"`

	// Storage selects and configures the storage backend.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Map configures the headless map the server drives.
	Map MapConfig `json:"map" yaml:"map"`

	// Server configures the HTTP server.
	Server ServerConfig `json:"server" yaml:"server"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ControlConfig mirrors permalink.Config.
type ControlConfig struct {
	Position        string `json:"position" yaml:"position"`
	UseLocation     bool   `json:"useLocation" yaml:"useLocation"`
	UseLocalStorage bool   `json:"useLocalStorage" yaml:"useLocalStorage"`
	LocalStorageID  string `json:"localStorageId" yaml:"localStorageId"`
	Postfix         string `json:"postfix" yaml:"postfix"`

	// URLParseOptions selects the coercions of incoming values. null turns
	// coercion off.
	URLParseOptions *urlcodec.ParseOptions `json:"urlParseOptions" yaml:"urlParseOptions"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	// Backend is one of memory, redis, badger or s3.
	Backend string `json:"backend" yaml:"backend"`

	// Timeout bounds every remote storage call (e.g., "5s").
	Timeout string `json:"timeout" yaml:"timeout"`

	Redis     RedisConfig     `json:"redis" yaml:"redis"`
	Badger    BadgerConfig    `json:"badger" yaml:"badger"`
	S3        S3Config        `json:"s3" yaml:"s3"`
	Broadcast BroadcastConfig `json:"broadcast" yaml:"broadcast"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`

	// TTL expires stored entries (e.g., "720h"). Empty keeps them forever.
	TTL string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// BadgerConfig configures the badger backend.
type BadgerConfig struct {
	// Dir is the database directory. Empty keeps the database in memory.
	Dir string `json:"dir" yaml:"dir"`
}

// S3Config configures the s3 backend.
type S3Config struct {
	Region   string `json:"region" yaml:"region"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Bucket   string `json:"bucket" yaml:"bucket"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// BroadcastConfig announces storage writes to other processes over NATS.
type BroadcastConfig struct {
	// NATSURL enables the broadcast when set.
	NATSURL string `json:"natsUrl,omitempty" yaml:"natsUrl,omitempty"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// LatLng is a position in degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// MapConfig configures the headless map.
type MapConfig struct {
	Center  LatLng  `json:"center" yaml:"center"`
	Zoom    float64 `json:"zoom" yaml:"zoom"`
	MinZoom float64 `json:"minZoom" yaml:"minZoom"`
	MaxZoom float64 `json:"maxZoom" yaml:"maxZoom"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`

	// MaxBounds holds two opposite corners limiting panning.
	MaxBounds []LatLng `json:"maxBounds,omitempty" yaml:"maxBounds,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	// Href is the initial page URL, fragment included.
	Href string `json:"href" yaml:"href"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// MetricsConfig names the control metrics served at /metrics. Empty fields
// keep the defaults (permalink_<name>).
type MetricsConfig struct {
	Namespace string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Subsystem string            `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
	Labels    map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	control := permalink.DefaultConfig()
	mapOpts := mapview.DefaultMapOptions()

	return &Config{
		Control: ControlConfig{
			Position:        control.Position,
			UseLocation:     control.UseLocation,
			UseLocalStorage: control.UseLocalStorage,
			LocalStorageID:  control.LocalStorageID,
			Postfix:         control.Postfix,
			URLParseOptions: control.URLParseOptions,
		},
		Storage: StorageConfig{
			Backend: DefaultBackend,
			Timeout: "5s",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "permalink:",
			},
		},
		Map: MapConfig{
			Zoom:    mapOpts.Zoom,
			MinZoom: mapOpts.MinZoom,
			MaxZoom: mapOpts.MaxZoom,
			Width:   mapOpts.Size.X,
			Height:  mapOpts.Size.Y,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			Href:            DefaultHref,
			ShutdownTimeout: "10s",
		},
	}
}

// Load reads configuration from the specified directory. It looks for the
// names in FileNames, in order.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E101").
		WithDetail("No " + strings.Join(FileNames, ", ") + " found in " + dir).
		WithSuggestion("Run 'permalink init' to write a default configuration")
}

// LoadFile reads configuration from the specified file path. Files ending in
// .yaml or .yml are YAML, everything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E102").
			Wrap(err).
			WithLocationFromError(path, err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid and every value has the right type")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path, as YAML or JSON depending on the
// file extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Control.Position == "" {
		c.Control.Position = "bottomright"
	}
	if c.Control.LocalStorageID == "" {
		c.Control.LocalStorageID = permalink.DefaultLocalStorageID
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultBackend
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Storage.Timeout == "" {
		c.Storage.Timeout = "5s"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "permalink:"
	}

	if c.Map.Width == 0 {
		c.Map.Width = 1024
	}
	if c.Map.Height == 0 {
		c.Map.Height = 768
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Href == "" {
		c.Server.Href = DefaultHref
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !contains(Positions, c.Control.Position) {
		return errors.New("E103").
			WithDetail("control.position is " + quote(c.Control.Position)).
			WithSuggestion("Use one of " + strings.Join(Positions, ", "))
	}
	if c.Control.UseLocalStorage && c.Control.LocalStorageID == "" {
		return errors.New("E103").
			WithDetail("control.localStorageId must be set when control.useLocalStorage is on")
	}

	if !contains(Backends, c.Storage.Backend) {
		return errors.New("E104").
			WithDetail("storage.backend is " + quote(c.Storage.Backend)).
			WithSuggestion("Use one of " + strings.Join(Backends, ", "))
	}
	for name, value := range map[string]string{
		"storage.timeout":        c.Storage.Timeout,
		"storage.redis.ttl":      c.Storage.Redis.TTL,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return errors.New("E103").
				WithDetail(name + " is not a duration: " + quote(value)).
				WithExample(name[strings.LastIndex(name, ".")+1:] + `: "5s"`)
		}
	}
	switch c.Storage.Backend {
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return errors.New("E103").WithDetail("storage.redis.addr is required for the redis backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("E103").WithDetail("storage.s3.bucket is required for the s3 backend")
		}
		if c.Storage.S3.Region == "" {
			return errors.New("E103").WithDetail("storage.s3.region is required for the s3 backend")
		}
	}

	m := c.Map
	if m.MinZoom > m.MaxZoom {
		return errors.New("E103").WithDetail("map.minZoom is greater than map.maxZoom")
	}
	if m.Zoom < m.MinZoom || m.Zoom > m.MaxZoom {
		return errors.New("E103").WithDetail("map.zoom is outside [map.minZoom, map.maxZoom]")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return errors.New("E103").WithDetail("map.width and map.height must be positive")
	}
	if m.Center.Lat < -90 || m.Center.Lat > 90 {
		return errors.New("E103").WithDetail("map.center.lat must be between -90 and 90")
	}
	if len(m.MaxBounds) != 0 && len(m.MaxBounds) != 2 {
		return errors.New("E103").
			WithDetail("map.maxBounds needs exactly two corners").
			WithExample("maxBounds:\n  - {lat: -60, lng: -180}\n  - {lat: 60, lng: 180}")
	}

	if c.Server.Addr == "" {
		return errors.New("E103").WithDetail("server.addr must not be empty")
	}
	return nil
}

// ControlSettings returns the control settings.
func (c *Config) ControlSettings() permalink.Config {
	return permalink.Config{
		Position:        c.Control.Position,
		UseLocation:     c.Control.UseLocation,
		UseLocalStorage: c.Control.UseLocalStorage,
		LocalStorageID:  c.Control.LocalStorageID,
		Postfix:         c.Control.Postfix,
		URLParseOptions: c.Control.URLParseOptions,
	}
}

// MapOptions returns the headless map options.
func (c *Config) MapOptions() mapview.MapOptions {
	opts := mapview.MapOptions{
		Center:  mapview.LatLng{Lat: c.Map.Center.Lat, Lng: c.Map.Center.Lng},
		Zoom:    c.Map.Zoom,
		MinZoom: c.Map.MinZoom,
		MaxZoom: c.Map.MaxZoom,
		Size:    mapview.Point{X: c.Map.Width, Y: c.Map.Height},
	}
	if len(c.Map.MaxBounds) == 2 {
		a, b := c.Map.MaxBounds[0], c.Map.MaxBounds[1]
		bounds := mapview.NewBounds(mapview.LatLng{Lat: a.Lat, Lng: a.Lng}, mapview.LatLng{Lat: b.Lat, Lng: b.Lng})
		opts.MaxBounds = &bounds
	}
	return opts
}

// ShutdownTimeout returns server.shutdownTimeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return `"` + s + `"`
}

// mustDuration parses a validated duration, falling back to def.
func mustDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
